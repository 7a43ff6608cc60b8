package history

import (
	"context"
	"fmt"

	"itinventory/internal/repository"
	"itinventory/pkg/models"

	"github.com/doug-martin/goqu/v9"
)

const (
	statusTable     = "asset_status_history"
	assignmentTable = "asset_assignment_history"
)

// HistoryRepository stores the append-only status and assignment trails of assets.
type HistoryRepository struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) *HistoryRepository {
	return &HistoryRepository{repository: r}
}

func (r *HistoryRepository) AppendStatus(ctx context.Context, tx repository.Executor, entry models.AssetStatusHistory) error {
	_, err := r.repository.Executor(tx).
		Insert(statusTable).
		Rows(goqu.Record{
			"asset_id":   entry.AssetID,
			"old_status": entry.OldStatus,
			"new_status": entry.NewStatus,
			"changed_by": entry.ChangedBy,
			"reason":     entry.Reason,
		}).
		Executor().ExecContext(ctx)
	if err != nil {
		return repository.WrapError(err, "failed to append status history")
	}

	return nil
}

func (r *HistoryRepository) AppendAssignment(ctx context.Context, tx repository.Executor, entry models.AssetAssignmentHistory) error {
	_, err := r.repository.Executor(tx).
		Insert(assignmentTable).
		Rows(goqu.Record{
			"asset_id":         entry.AssetID,
			"previous_user_id": entry.PreviousUserID,
			"user_id":          entry.UserID,
			"assigned_by":      entry.AssignedBy,
			"notes":            entry.Notes,
		}).
		Executor().ExecContext(ctx)
	if err != nil {
		return repository.WrapError(err, "failed to append assignment history")
	}

	return nil
}

func (r *HistoryRepository) ListStatusHistory(ctx context.Context, assetID int) ([]models.AssetStatusHistory, error) {
	entries := []models.AssetStatusHistory{}
	err := r.repository.GoquDBWrapper.
		From(statusTable).
		Select("id", "asset_id", "old_status", "new_status", "changed_by", "reason", "changed_at").
		Where(goqu.Ex{"asset_id": assetID}).
		Order(goqu.C("changed_at").Desc(), goqu.C("id").Desc()).
		Executor().ScanStructsContext(ctx, &entries)
	if err != nil {
		return nil, fmt.Errorf("failed to list status history: %w", err)
	}

	return entries, nil
}

func (r *HistoryRepository) ListAssignmentHistory(ctx context.Context, assetID int) ([]models.AssetAssignmentHistory, error) {
	entries := []models.AssetAssignmentHistory{}
	err := r.repository.GoquDBWrapper.
		From(assignmentTable).
		Select("id", "asset_id", "previous_user_id", "user_id", "assigned_by", "notes", "assigned_at").
		Where(goqu.Ex{"asset_id": assetID}).
		Order(goqu.C("assigned_at").Desc(), goqu.C("id").Desc()).
		Executor().ScanStructsContext(ctx, &entries)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignment history: %w", err)
	}

	return entries, nil
}

func (r *HistoryRepository) DeleteStatusEntry(ctx context.Context, id int) (bool, error) {
	return r.deleteEntry(ctx, statusTable, id)
}

func (r *HistoryRepository) DeleteAssignmentEntry(ctx context.Context, id int) (bool, error) {
	return r.deleteEntry(ctx, assignmentTable, id)
}

func (r *HistoryRepository) deleteEntry(ctx context.Context, table string, id int) (bool, error) {
	res, err := r.repository.GoquDBWrapper.
		Delete(table).
		Where(goqu.Ex{"id": id}).
		Executor().ExecContext(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to delete %s entry: %w", table, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return affected > 0, nil
}
