package repositories

import (
	"context"
	"errors"
	"fmt"

	"project-management/internal/entities"
	apperrors "project-management/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// HistoryRecord - запись истории с кодами департаментов для выдачи наружу.
type HistoryRecord struct {
	entities.ProjectDepartmentHistory
	FromDepartmentCode *string
	ToDepartmentCode   string
}

type DepartmentHistoryRepositoryInterface interface {
	CreateInTx(ctx context.Context, tx pgx.Tx, history *entities.ProjectDepartmentHistory) (uint64, error)
	FindHistory(ctx context.Context, id uint64) (*entities.ProjectDepartmentHistory, error)
	FindCurrentInTx(ctx context.Context, tx pgx.Tx, projectID uint64) (*entities.ProjectDepartmentHistory, error)
	FindCurrent(ctx context.Context, projectID uint64) (*entities.ProjectDepartmentHistory, error)
	UpdateWorkInTx(ctx context.Context, tx pgx.Tx, history *entities.ProjectDepartmentHistory) error
	IncrementCorrectionCountInTx(ctx context.Context, tx pgx.Tx, historyID uint64) error
	ListByProject(ctx context.Context, projectID uint64) ([]HistoryRecord, error)
}

type DepartmentHistoryRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewDepartmentHistoryRepository(storage *pgxpool.Pool, logger *zap.Logger) DepartmentHistoryRepositoryInterface {
	return &DepartmentHistoryRepository{storage: storage, logger: logger}
}

const historyColumns = `id, project_id, from_department_id, to_department_id, work_status, work_start_date,
       work_end_date, estimated_days, actual_days, correction_count, moved_by, permission_granted_by, notes, tx_id, created_at`

func scanHistory(row pgx.Row) (*entities.ProjectDepartmentHistory, error) {
	var h entities.ProjectDepartmentHistory
	err := row.Scan(&h.ID, &h.ProjectID, &h.FromDepartmentID, &h.ToDepartmentID, &h.WorkStatus,
		&h.WorkStartDate, &h.WorkEndDate, &h.EstimatedDays, &h.ActualDays, &h.CorrectionCount,
		&h.MovedBy, &h.PermissionGrantedBy, &h.Notes, &h.TxID, &h.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования history: %w", err)
	}
	return &h, nil
}

func (r *DepartmentHistoryRepository) CreateInTx(ctx context.Context, tx pgx.Tx, history *entities.ProjectDepartmentHistory) (uint64, error) {
	var id uint64
	err := tx.QueryRow(ctx, `INSERT INTO project_department_history
    (project_id, from_department_id, to_department_id, work_status, estimated_days, moved_by, permission_granted_by, notes, tx_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
		history.ProjectID, history.FromDepartmentID, history.ToDepartmentID, history.WorkStatus,
		history.EstimatedDays, history.MovedBy, history.PermissionGrantedBy, history.Notes, history.TxID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("не удалось создать запись истории: %w", err)
	}
	return id, nil
}

func (r *DepartmentHistoryRepository) FindHistory(ctx context.Context, id uint64) (*entities.ProjectDepartmentHistory, error) {
	query := fmt.Sprintf(`SELECT %s FROM project_department_history WHERE id = $1`, historyColumns)
	return scanHistory(r.storage.QueryRow(ctx, query, id))
}

func (r *DepartmentHistoryRepository) FindCurrentInTx(ctx context.Context, tx pgx.Tx, projectID uint64) (*entities.ProjectDepartmentHistory, error) {
	return r.findCurrent(ctx, tx, projectID)
}

func (r *DepartmentHistoryRepository) FindCurrent(ctx context.Context, projectID uint64) (*entities.ProjectDepartmentHistory, error) {
	return r.findCurrent(ctx, r.storage, projectID)
}

// findCurrent - последняя запись истории проекта, т.е. текущее пребывание.
func (r *DepartmentHistoryRepository) findCurrent(ctx context.Context, q querier, projectID uint64) (*entities.ProjectDepartmentHistory, error) {
	query := fmt.Sprintf(`SELECT %s FROM project_department_history WHERE project_id = $1 ORDER BY created_at DESC, id DESC LIMIT 1`, historyColumns)
	return scanHistory(q.QueryRow(ctx, query, projectID))
}

func (r *DepartmentHistoryRepository) UpdateWorkInTx(ctx context.Context, tx pgx.Tx, history *entities.ProjectDepartmentHistory) error {
	result, err := tx.Exec(ctx, `UPDATE project_department_history
SET work_status = $1, work_start_date = $2, work_end_date = $3, actual_days = $4, notes = $5
WHERE id = $6`,
		history.WorkStatus, history.WorkStartDate, history.WorkEndDate, history.ActualDays, history.Notes, history.ID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *DepartmentHistoryRepository) IncrementCorrectionCountInTx(ctx context.Context, tx pgx.Tx, historyID uint64) error {
	result, err := tx.Exec(ctx,
		`UPDATE project_department_history SET correction_count = correction_count + 1 WHERE id = $1`, historyID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *DepartmentHistoryRepository) ListByProject(ctx context.Context, projectID uint64) ([]HistoryRecord, error) {
	query := `SELECT h.id, h.project_id, h.from_department_id, h.to_department_id, h.work_status, h.work_start_date,
       h.work_end_date, h.estimated_days, h.actual_days, h.correction_count, h.moved_by, h.permission_granted_by,
       h.notes, h.tx_id, h.created_at, df.code, dt.code
FROM project_department_history h
LEFT JOIN departments df ON df.id = h.from_department_id
JOIN departments dt ON dt.id = h.to_department_id
WHERE h.project_id = $1
ORDER BY h.created_at ASC, h.id ASC`
	rows, err := r.storage.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]HistoryRecord, 0)
	for rows.Next() {
		var rec HistoryRecord
		err := rows.Scan(&rec.ID, &rec.ProjectID, &rec.FromDepartmentID, &rec.ToDepartmentID, &rec.WorkStatus,
			&rec.WorkStartDate, &rec.WorkEndDate, &rec.EstimatedDays, &rec.ActualDays, &rec.CorrectionCount,
			&rec.MovedBy, &rec.PermissionGrantedBy, &rec.Notes, &rec.TxID, &rec.CreatedAt,
			&rec.FromDepartmentCode, &rec.ToDepartmentCode)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
