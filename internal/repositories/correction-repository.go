package repositories

import (
	"context"
	"errors"
	"fmt"

	"project-management/internal/entities"
	apperrors "project-management/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// CorrectionRecord - замечание с привязкой к проекту и департаменту.
type CorrectionRecord struct {
	entities.DepartmentCorrection
	ProjectID      uint64
	DepartmentID   uint64
	DepartmentCode string
}

type CorrectionRepositoryInterface interface {
	CreateInTx(ctx context.Context, tx pgx.Tx, correction *entities.DepartmentCorrection) (uint64, error)
	FindCorrection(ctx context.Context, id uint64) (*CorrectionRecord, error)
	UpdateInTx(ctx context.Context, tx pgx.Tx, correction *entities.DepartmentCorrection) error
	ListForProject(ctx context.Context, projectID uint64, status string) ([]CorrectionRecord, error)
	CountOpenForHistoryInTx(ctx context.Context, tx pgx.Tx, historyID uint64) (uint64, error)
	AverageResolutionHoursByHistory(ctx context.Context, projectID uint64) (map[uint64]float64, error)
}

type CorrectionRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewCorrectionRepository(storage *pgxpool.Pool, logger *zap.Logger) CorrectionRepositoryInterface {
	return &CorrectionRepository{storage: storage, logger: logger}
}

const correctionColumns = `c.id, c.history_id, c.correction_type, c.description, c.requested_by, c.assigned_to,
       c.status, c.priority, c.estimated_hours, c.actual_hours, c.resolution_notes, c.resolved_at, c.created_at, c.updated_at`

func (r *CorrectionRepository) CreateInTx(ctx context.Context, tx pgx.Tx, correction *entities.DepartmentCorrection) (uint64, error) {
	var id uint64
	err := tx.QueryRow(ctx, `INSERT INTO department_corrections
    (history_id, correction_type, description, requested_by, assigned_to, status, priority, estimated_hours)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		correction.HistoryID, correction.CorrectionType, correction.Description, correction.RequestedBy,
		correction.AssignedTo, correction.Status, correction.Priority, correction.EstimatedHours).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return 0, apperrors.NewBadRequestError("Неверный ID записи истории или пользователя.")
		}
		return 0, fmt.Errorf("не удалось создать замечание: %w", err)
	}
	return id, nil
}

func scanCorrectionRecord(row pgx.Row) (*CorrectionRecord, error) {
	var rec CorrectionRecord
	err := row.Scan(&rec.ID, &rec.HistoryID, &rec.CorrectionType, &rec.Description, &rec.RequestedBy,
		&rec.AssignedTo, &rec.Status, &rec.Priority, &rec.EstimatedHours, &rec.ActualHours,
		&rec.ResolutionNotes, &rec.ResolvedAt, &rec.CreatedAt, &rec.UpdatedAt,
		&rec.ProjectID, &rec.DepartmentID, &rec.DepartmentCode)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования correction: %w", err)
	}
	return &rec, nil
}

func (r *CorrectionRepository) FindCorrection(ctx context.Context, id uint64) (*CorrectionRecord, error) {
	query := fmt.Sprintf(`SELECT %s, h.project_id, h.to_department_id, d.code
FROM department_corrections c
JOIN project_department_history h ON h.id = c.history_id
JOIN departments d ON d.id = h.to_department_id
WHERE c.id = $1`, correctionColumns)
	return scanCorrectionRecord(r.storage.QueryRow(ctx, query, id))
}

func (r *CorrectionRepository) UpdateInTx(ctx context.Context, tx pgx.Tx, correction *entities.DepartmentCorrection) error {
	result, err := tx.Exec(ctx, `UPDATE department_corrections
SET status = $1, priority = $2, assigned_to = $3, estimated_hours = $4, actual_hours = $5,
    resolution_notes = $6, resolved_at = $7, updated_at = NOW()
WHERE id = $8`,
		correction.Status, correction.Priority, correction.AssignedTo, correction.EstimatedHours,
		correction.ActualHours, correction.ResolutionNotes, correction.ResolvedAt, correction.ID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *CorrectionRepository) ListForProject(ctx context.Context, projectID uint64, status string) ([]CorrectionRecord, error) {
	args := []interface{}{projectID}
	query := fmt.Sprintf(`SELECT %s, h.project_id, h.to_department_id, d.code
FROM department_corrections c
JOIN project_department_history h ON h.id = c.history_id
JOIN departments d ON d.id = h.to_department_id
WHERE h.project_id = $1`, correctionColumns)
	if status != "" {
		query += ` AND c.status = $2`
		args = append(args, status)
	}
	query += ` ORDER BY c.created_at DESC, c.id DESC`

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]CorrectionRecord, 0)
	for rows.Next() {
		rec, err := scanCorrectionRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// CountOpenForHistoryInTx считает незакрытые замечания по записи истории.
// Используется гейтингом перехода внутри транзакции.
func (r *CorrectionRepository) CountOpenForHistoryInTx(ctx context.Context, tx pgx.Tx, historyID uint64) (uint64, error) {
	var total uint64
	query := `SELECT COUNT(*) FROM department_corrections WHERE history_id = $1 AND status IN ('OPEN', 'IN_PROGRESS')`
	if err := tx.QueryRow(ctx, query, historyID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *CorrectionRepository) AverageResolutionHoursByHistory(ctx context.Context, projectID uint64) (map[uint64]float64, error) {
	query := `SELECT c.history_id, AVG(EXTRACT(EPOCH FROM (c.resolved_at - c.created_at)) / 3600.0)
FROM department_corrections c
JOIN project_department_history h ON h.id = c.history_id
WHERE h.project_id = $1 AND c.status = 'RESOLVED' AND c.resolved_at IS NOT NULL
GROUP BY c.history_id`
	rows, err := r.storage.Query(ctx, query, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	averages := make(map[uint64]float64)
	for rows.Next() {
		var historyID uint64
		var avg float64
		if err := rows.Scan(&historyID, &avg); err != nil {
			return nil, err
		}
		averages[historyID] = avg
	}
	return averages, rows.Err()
}
