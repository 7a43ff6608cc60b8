package auditlog

import (
	"context"
	"encoding/json"
	"fmt"

	"itinventory/internal/repository"
	"itinventory/pkg/models"

	"github.com/doug-martin/goqu/v9"
)

type AuditLogRepository struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) *AuditLogRepository {
	return &AuditLogRepository{repository: r}
}

func (r *AuditLogRepository) PersistLog(ctx context.Context, auditlog models.AuditLog, auditLogData interface{}) error {
	dataJSON, err := json.Marshal(auditLogData)
	if err != nil {
		return fmt.Errorf("failed to marshal audit log data: %w", err)
	}

	query := r.repository.GoquDBWrapper.Insert("audit_logs").
		Rows(goqu.Record{
			"resource_id":   auditlog.ResourceID,
			"resource_type": auditlog.ResourceType,
			"action":        auditlog.Action,
			"data":          string(dataJSON),
			"user_id":       auditlog.UserID,
		})

	if _, err = query.Executor().ExecContext(ctx); err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}

	return nil
}

func (r *AuditLogRepository) GetResourceLog(ctx context.Context, id int, resourceType string) ([]models.AuditLog, error) {
	query := r.repository.GoquDBWrapper.
		From(goqu.T("audit_logs").As("a")).
		Select(
			goqu.I("a.id"),
			goqu.I("a.resource_id"),
			goqu.I("a.resource_type"),
			goqu.I("a.action"),
			goqu.COALESCE(goqu.L("a.data::text"), "{}").As("data"),
			goqu.I("a.created_at"),
			goqu.I("a.user_id"),
		).
		Where(goqu.Ex{
			"a.resource_id":   id,
			"a.resource_type": resourceType,
		}).
		Order(goqu.I("a.created_at").Desc(), goqu.I("a.id").Desc())

	rows, err := query.Executor().QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("error executing SQL statement: %w", err)
	}
	defer rows.Close()

	auditLogs := []models.AuditLog{}
	for rows.Next() {
		var entry models.AuditLog
		if err := rows.Scan(
			&entry.ID,
			&entry.ResourceID,
			&entry.ResourceType,
			&entry.Action,
			&entry.DataRaw,
			&entry.CreatedAt,
			&entry.UserID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit log: %w", err)
		}
		entry.LoadFromDB()
		auditLogs = append(auditLogs, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read audit logs: %w", err)
	}

	return auditLogs, nil
}

// Delete removes one entry. Returns false when nothing matched.
func (r *AuditLogRepository) Delete(ctx context.Context, id int) (bool, error) {
	res, err := r.repository.GoquDBWrapper.Delete("audit_logs").
		Where(goqu.Ex{"id": id}).
		Executor().ExecContext(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to delete audit log: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return affected > 0, nil
}
