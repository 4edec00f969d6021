package repositories

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"project-management/internal/dto"
	"project-management/internal/entities"
	apperrors "project-management/pkg/errors"
	"project-management/pkg/types"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	categoryTable = "categories"
	mappingTable  = "category_department_mappings"
)

type CategoryWorkflowRepositoryInterface interface {
	GetCategories(ctx context.Context, filter types.Filter) ([]entities.Category, uint64, error)
	FindCategory(ctx context.Context, id uint64) (*entities.Category, error)
	CreateCategory(ctx context.Context, payload dto.CreateCategoryDTO) (*entities.Category, error)
	UpdateCategory(ctx context.Context, id uint64, payload dto.UpdateCategoryDTO) (*entities.Category, error)
	DeleteCategory(ctx context.Context, id uint64) error

	GetWorkflowSteps(ctx context.Context, categoryID uint64) ([]entities.CategoryDepartmentMapping, error)
	FindStep(ctx context.Context, stepID uint64) (*entities.CategoryDepartmentMapping, error)
	CreateStep(ctx context.Context, categoryID uint64, payload dto.CreateWorkflowStepDTO) (*entities.CategoryDepartmentMapping, error)
	UpdateStep(ctx context.Context, stepID uint64, payload dto.UpdateWorkflowStepDTO) (*entities.CategoryDepartmentMapping, error)
	DeleteStep(ctx context.Context, stepID uint64) error
	BulkReplaceStepsInTx(ctx context.Context, tx pgx.Tx, categoryID uint64, steps []dto.WorkflowStepInput) error
}

type CategoryWorkflowRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewCategoryWorkflowRepository(storage *pgxpool.Pool, logger *zap.Logger) CategoryWorkflowRepositoryInterface {
	return &CategoryWorkflowRepository{storage: storage, logger: logger}
}

func scanCategory(row pgx.Row) (*entities.Category, error) {
	var c entities.Category
	err := row.Scan(&c.ID, &c.Code, &c.Name, &c.DefaultStartDepartmentID, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования category: %w", err)
	}
	return &c, nil
}

func scanMapping(row pgx.Row) (*entities.CategoryDepartmentMapping, error) {
	var m entities.CategoryDepartmentMapping
	err := row.Scan(&m.ID, &m.CategoryID, &m.DepartmentID, &m.DepartmentCode, &m.Sequence,
		&m.IsRequired, &m.EstimatedHours, &m.EstimatedDays, &m.IsActive, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования workflow step: %w", err)
	}
	return &m, nil
}

const mappingSelect = `SELECT m.id, m.category_id, m.department_id, d.code, m.sequence,
       m.is_required, m.estimated_hours, m.estimated_days, m.is_active, m.created_at, m.updated_at
FROM category_department_mappings m
JOIN departments d ON d.id = m.department_id`

func (r *CategoryWorkflowRepository) GetCategories(ctx context.Context, filter types.Filter) ([]entities.Category, uint64, error) {
	args := []interface{}{}
	whereClause := ""
	if filter.Search != "" {
		whereClause = "WHERE (c.name ILIKE $1 OR c.code ILIKE $1)"
		args = append(args, "%"+filter.Search+"%")
	}

	var total uint64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s AS c %s", categoryTable, whereClause)
	if err := r.storage.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []entities.Category{}, 0, nil
	}

	limitClause := ""
	if filter.WithPagination {
		limitClause = fmt.Sprintf("LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, filter.Limit, filter.Offset)
	}

	query := fmt.Sprintf(`SELECT c.id, c.code, c.name, c.default_start_department_id, c.created_at, c.updated_at
FROM %s c %s ORDER BY c.id ASC %s`, categoryTable, whereClause, limitClause)
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	categories := make([]entities.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, 0, err
		}
		categories = append(categories, *c)
	}
	return categories, total, rows.Err()
}

func (r *CategoryWorkflowRepository) FindCategory(ctx context.Context, id uint64) (*entities.Category, error) {
	query := `SELECT id, code, name, default_start_department_id, created_at, updated_at FROM categories WHERE id = $1`
	return scanCategory(r.storage.QueryRow(ctx, query, id))
}

func (r *CategoryWorkflowRepository) CreateCategory(ctx context.Context, payload dto.CreateCategoryDTO) (*entities.Category, error) {
	query := `INSERT INTO categories (code, name, default_start_department_id) VALUES ($1, $2, $3)
RETURNING id, code, name, default_start_department_id, created_at, updated_at`
	created, err := scanCategory(r.storage.QueryRow(ctx, query, payload.Code, payload.Name, payload.DefaultStartDepartmentID))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperrors.NewConflictError("Категория с таким кодом уже существует.")
		}
		return nil, err
	}
	return created, nil
}

func (r *CategoryWorkflowRepository) UpdateCategory(ctx context.Context, id uint64, payload dto.UpdateCategoryDTO) (*entities.Category, error) {
	updateBuilder := sq.Update(categoryTable).
		PlaceholderFormat(sq.Dollar).
		Where(sq.Eq{"id": id}).
		Set("updated_at", sq.Expr("NOW()"))
	hasChanges := false
	if payload.Code != nil {
		updateBuilder = updateBuilder.Set("code", *payload.Code)
		hasChanges = true
	}
	if payload.Name != nil {
		updateBuilder = updateBuilder.Set("name", *payload.Name)
		hasChanges = true
	}
	if payload.DefaultStartDepartmentID != nil {
		updateBuilder = updateBuilder.Set("default_start_department_id", *payload.DefaultStartDepartmentID)
		hasChanges = true
	}
	if !hasChanges {
		return r.FindCategory(ctx, id)
	}
	query, args, err := updateBuilder.Suffix("RETURNING id, code, name, default_start_department_id, created_at, updated_at").ToSql()
	if err != nil {
		return nil, err
	}
	return scanCategory(r.storage.QueryRow(ctx, query, args...))
}

func (r *CategoryWorkflowRepository) DeleteCategory(ctx context.Context, id uint64) error {
	result, err := r.storage.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return apperrors.NewConflictError("Категория используется проектами и не может быть удалена.")
		}
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *CategoryWorkflowRepository) GetWorkflowSteps(ctx context.Context, categoryID uint64) ([]entities.CategoryDepartmentMapping, error) {
	query := mappingSelect + ` WHERE m.category_id = $1 AND m.is_active = TRUE ORDER BY m.sequence ASC`
	rows, err := r.storage.Query(ctx, query, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	steps := make([]entities.CategoryDepartmentMapping, 0)
	for rows.Next() {
		m, err := scanMapping(rows)
		if err != nil {
			return nil, err
		}
		steps = append(steps, *m)
	}
	return steps, rows.Err()
}

func (r *CategoryWorkflowRepository) FindStep(ctx context.Context, stepID uint64) (*entities.CategoryDepartmentMapping, error) {
	query := mappingSelect + ` WHERE m.id = $1`
	return scanMapping(r.storage.QueryRow(ctx, query, stepID))
}

func (r *CategoryWorkflowRepository) CreateStep(ctx context.Context, categoryID uint64, payload dto.CreateWorkflowStepDTO) (*entities.CategoryDepartmentMapping, error) {
	isRequired := true
	if payload.IsRequired != nil {
		isRequired = *payload.IsRequired
	}
	query := `INSERT INTO category_department_mappings
    (category_id, department_id, sequence, is_required, estimated_hours, estimated_days)
VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	var stepID uint64
	err := r.storage.QueryRow(ctx, query, categoryID, payload.DepartmentID, payload.Sequence,
		isRequired, payload.EstimatedHours, payload.EstimatedDays).Scan(&stepID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" {
				return nil, apperrors.NewConflictError("Департамент или позиция уже заняты в воркфлоу категории.")
			}
			if pgErr.Code == "23503" {
				return nil, apperrors.NewBadRequestError("Неверный ID категории или департамента.")
			}
		}
		return nil, err
	}
	return r.FindStep(ctx, stepID)
}

func (r *CategoryWorkflowRepository) UpdateStep(ctx context.Context, stepID uint64, payload dto.UpdateWorkflowStepDTO) (*entities.CategoryDepartmentMapping, error) {
	updateBuilder := sq.Update(mappingTable).
		PlaceholderFormat(sq.Dollar).
		Where(sq.Eq{"id": stepID}).
		Set("updated_at", sq.Expr("NOW()"))
	hasChanges := false
	if payload.Sequence != nil {
		updateBuilder = updateBuilder.Set("sequence", *payload.Sequence)
		hasChanges = true
	}
	if payload.IsRequired != nil {
		updateBuilder = updateBuilder.Set("is_required", *payload.IsRequired)
		hasChanges = true
	}
	if payload.EstimatedHours != nil {
		updateBuilder = updateBuilder.Set("estimated_hours", *payload.EstimatedHours)
		hasChanges = true
	}
	if payload.EstimatedDays != nil {
		updateBuilder = updateBuilder.Set("estimated_days", *payload.EstimatedDays)
		hasChanges = true
	}
	if payload.IsActive != nil {
		updateBuilder = updateBuilder.Set("is_active", *payload.IsActive)
		hasChanges = true
	}
	if !hasChanges {
		return r.FindStep(ctx, stepID)
	}
	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return nil, err
	}
	result, err := r.storage.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperrors.NewConflictError("Позиция уже занята другим шагом воркфлоу.")
		}
		return nil, err
	}
	if result.RowsAffected() == 0 {
		return nil, apperrors.ErrNotFound
	}
	return r.FindStep(ctx, stepID)
}

func (r *CategoryWorkflowRepository) DeleteStep(ctx context.Context, stepID uint64) error {
	result, err := r.storage.Exec(ctx, `DELETE FROM category_department_mappings WHERE id = $1`, stepID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return apperrors.ErrStepInUse
		}
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// BulkReplaceStepsInTx атомарно заменяет весь маршрут категории.
// Валидация непрерывности последовательности выполняется на уровне сервиса.
func (r *CategoryWorkflowRepository) BulkReplaceStepsInTx(ctx context.Context, tx pgx.Tx, categoryID uint64, steps []dto.WorkflowStepInput) error {
	if _, err := tx.Exec(ctx, `DELETE FROM category_department_mappings WHERE category_id = $1`, categoryID); err != nil {
		return fmt.Errorf("не удалось очистить воркфлоу категории: %w", err)
	}
	for _, step := range steps {
		_, err := tx.Exec(ctx, `INSERT INTO category_department_mappings
    (category_id, department_id, sequence, is_required, estimated_hours, estimated_days)
VALUES ($1, $2, $3, $4, $5, $6)`,
			categoryID, step.DepartmentID, step.Sequence, step.IsRequired, step.EstimatedHours, step.EstimatedDays)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) {
				if pgErr.Code == "23505" {
					return apperrors.NewConflictError("Дубликат департамента или позиции в новом воркфлоу.")
				}
				if pgErr.Code == "23503" {
					return apperrors.NewBadRequestError("Неверный ID департамента в новом воркфлоу.")
				}
			}
			return err
		}
	}
	return nil
}
