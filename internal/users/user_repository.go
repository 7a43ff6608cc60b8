package users

import (
	"context"
	"fmt"
	"strings"

	"itinventory/internal/repository"
	custom_error "itinventory/pkg/errors"
	"itinventory/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
)

type UserRepository interface {
	PersistUser(ctx context.Context, req models.CreateUserRequest, hashedPassword []byte) (int, error)
	GetUser(ctx context.Context, id int) (*models.User, error)
	GetUsers(ctx context.Context, pagination *repository.Pagination) ([]models.User, int, error)
	SearchUsers(ctx context.Context, term string, pagination *repository.Pagination) ([]models.User, int, error)
	UpdateUser(ctx context.Context, id int, changes *models.UserChanges) error
	DeleteUser(ctx context.Context, id int) (bool, error)
}

var userColumns = []interface{}{"id", "username", "fullname", "email", "department", "role", "active", "created_at"}

type userRepositoryImpl struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) UserRepository {
	return &userRepositoryImpl{repository: r}
}

func (r *userRepositoryImpl) PersistUser(ctx context.Context, req models.CreateUserRequest, hashedPassword []byte) (int, error) {
	var id int
	_, err := r.repository.GoquDBWrapper.
		Insert("users").
		Rows(goqu.Record{
			"password_hash": string(hashedPassword),
			"username":      req.Username,
			"fullname":      req.Fullname,
			"email":         req.Email,
			"department":    req.Department,
			"role":          string(req.Role),
		}).
		Returning("id").
		Executor().ScanValContext(ctx, &id)
	if err != nil {
		return 0, repository.WrapError(err, "failed to insert user")
	}

	return id, nil
}

func (r *userRepositoryImpl) GetUsers(ctx context.Context, pagination *repository.Pagination) ([]models.User, int, error) {
	return r.list(ctx, nil, pagination)
}

// SearchUsers matches term against username, full name and email.
func (r *userRepositoryImpl) SearchUsers(ctx context.Context, term string, pagination *repository.Pagination) ([]models.User, int, error) {
	pattern := "%" + strings.TrimSpace(term) + "%"
	return r.list(ctx, goqu.Or(
		goqu.C("username").ILike(pattern),
		goqu.C("fullname").ILike(pattern),
		goqu.C("email").ILike(pattern),
	), pagination)
}

func (r *userRepositoryImpl) GetUser(ctx context.Context, id int) (*models.User, error) {
	var user models.User
	found, err := r.repository.GoquDBWrapper.
		From("users").
		Select(userColumns...).
		Where(goqu.Ex{"id": id}).
		Executor().ScanStructContext(ctx, &user)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !found {
		return nil, custom_error.NewNotFoundError("User", id)
	}

	return &user, nil
}

func (r *userRepositoryImpl) UpdateUser(ctx context.Context, id int, changes *models.UserChanges) error {
	record := goqu.Record{}
	if changes.Fullname != nil {
		record["fullname"] = *changes.Fullname
	}
	if changes.Email != nil {
		record["email"] = *changes.Email
	}
	if changes.Department != nil {
		record["department"] = *changes.Department
	}
	if changes.PasswordHash != nil {
		record["password_hash"] = *changes.PasswordHash
	}
	if changes.Role != nil {
		record["role"] = *changes.Role
	}
	if changes.Active != nil {
		record["active"] = *changes.Active
	}

	res, err := r.repository.GoquDBWrapper.
		Update("users").
		Set(record).
		Where(goqu.Ex{"id": id}).
		Executor().ExecContext(ctx)
	if err != nil {
		return repository.WrapError(err, "failed to update user")
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return custom_error.NewNotFoundError("User", id)
	}

	return nil
}

// DeleteUser removes the user. Assets held by the user lose their current
// user through the foreign key, history keeps the rows with a NULL user.
func (r *userRepositoryImpl) DeleteUser(ctx context.Context, id int) (bool, error) {
	res, err := r.repository.GoquDBWrapper.
		Delete("users").
		Where(goqu.Ex{"id": id}).
		Executor().ExecContext(ctx)
	if err != nil {
		return false, repository.WrapError(err, "failed to delete user")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return affected > 0, nil
}

func (r *userRepositoryImpl) list(ctx context.Context, where exp.Expression, pagination *repository.Pagination) ([]models.User, int, error) {
	count := r.repository.GoquDBWrapper.From("users").Select(goqu.COUNT("*"))
	query := r.repository.GoquDBWrapper.From("users").Select(userColumns...).Order(goqu.C("username").Asc())
	if where != nil {
		count = count.Where(where)
		query = query.Where(where)
	}

	var total int
	_, err := count.Executor().ScanValContext(ctx, &total)
	if err != nil {
		return nil, 0, fmt.Errorf("unable to count users: %w", err)
	}

	users := []models.User{}
	if err := pagination.Apply(query).Executor().ScanStructsContext(ctx, &users); err != nil {
		return nil, 0, fmt.Errorf("error executing SQL statement: %w", err)
	}

	return users, total, nil
}
