package repositories

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"project-management/internal/dto"
	"project-management/internal/entities"
	apperrors "project-management/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const checklistTemplateTable = "checklist_templates"

type ChecklistTemplateRepositoryInterface interface {
	GetTemplateItems(ctx context.Context, departmentID uint64, onlyActive bool) ([]entities.ChecklistTemplate, error)
	GetActiveTemplateItemsInTx(ctx context.Context, tx pgx.Tx, departmentID uint64) ([]entities.ChecklistTemplate, error)
	FindTemplateItem(ctx context.Context, id uint64) (*entities.ChecklistTemplate, error)
	CreateTemplateItem(ctx context.Context, payload dto.CreateTemplateItemDTO, sortOrder int) (*entities.ChecklistTemplate, error)
	NextSortOrder(ctx context.Context, departmentID uint64) (int, error)
	UpdateTemplateItem(ctx context.Context, id uint64, payload dto.UpdateTemplateItemDTO) (*entities.ChecklistTemplate, error)
	DeleteTemplateItem(ctx context.Context, id uint64) error
	ReorderInTx(ctx context.Context, tx pgx.Tx, departmentID uint64, orderedItemIDs []uint64) error
	CountProjectUsages(ctx context.Context, templateItemID uint64) (uint64, error)
}

type ChecklistTemplateRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewChecklistTemplateRepository(storage *pgxpool.Pool, logger *zap.Logger) ChecklistTemplateRepositoryInterface {
	return &ChecklistTemplateRepository{storage: storage, logger: logger}
}

func scanTemplateItem(row pgx.Row) (*entities.ChecklistTemplate, error) {
	var t entities.ChecklistTemplate
	err := row.Scan(&t.ID, &t.DepartmentID, &t.Title, &t.Description, &t.IsRequired,
		&t.SortOrder, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования checklist template: %w", err)
	}
	return &t, nil
}

const templateItemColumns = `id, department_id, title, description, is_required, sort_order, is_active, created_at, updated_at`

func collectTemplateItems(rows pgx.Rows) ([]entities.ChecklistTemplate, error) {
	defer rows.Close()
	items := make([]entities.ChecklistTemplate, 0)
	for rows.Next() {
		item, err := scanTemplateItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (r *ChecklistTemplateRepository) GetTemplateItems(ctx context.Context, departmentID uint64, onlyActive bool) ([]entities.ChecklistTemplate, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE department_id = $1`, templateItemColumns, checklistTemplateTable)
	if onlyActive {
		query += ` AND is_active = TRUE`
	}
	query += ` ORDER BY sort_order ASC`
	rows, err := r.storage.Query(ctx, query, departmentID)
	if err != nil {
		return nil, err
	}
	return collectTemplateItems(rows)
}

func (r *ChecklistTemplateRepository) GetActiveTemplateItemsInTx(ctx context.Context, tx pgx.Tx, departmentID uint64) ([]entities.ChecklistTemplate, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE department_id = $1 AND is_active = TRUE ORDER BY sort_order ASC`,
		templateItemColumns, checklistTemplateTable)
	rows, err := tx.Query(ctx, query, departmentID)
	if err != nil {
		return nil, err
	}
	return collectTemplateItems(rows)
}

func (r *ChecklistTemplateRepository) FindTemplateItem(ctx context.Context, id uint64) (*entities.ChecklistTemplate, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, templateItemColumns, checklistTemplateTable)
	return scanTemplateItem(r.storage.QueryRow(ctx, query, id))
}

func (r *ChecklistTemplateRepository) NextSortOrder(ctx context.Context, departmentID uint64) (int, error) {
	var next int
	query := `SELECT COALESCE(MAX(sort_order), 0) + 1 FROM checklist_templates WHERE department_id = $1 AND is_active = TRUE`
	if err := r.storage.QueryRow(ctx, query, departmentID).Scan(&next); err != nil {
		return 0, err
	}
	return next, nil
}

func (r *ChecklistTemplateRepository) CreateTemplateItem(ctx context.Context, payload dto.CreateTemplateItemDTO, sortOrder int) (*entities.ChecklistTemplate, error) {
	isRequired := true
	if payload.IsRequired != nil {
		isRequired = *payload.IsRequired
	}
	query := fmt.Sprintf(`INSERT INTO %s (department_id, title, description, is_required, sort_order)
VALUES ($1, $2, $3, $4, $5) RETURNING %s`, checklistTemplateTable, templateItemColumns)
	created, err := scanTemplateItem(r.storage.QueryRow(ctx, query,
		payload.DepartmentID, payload.Title, payload.Description, isRequired, sortOrder))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" {
				return nil, apperrors.NewConflictError("Позиция в чеклисте департамента уже занята.")
			}
			if pgErr.Code == "23503" {
				return nil, apperrors.NewBadRequestError("Неверный ID департамента.")
			}
		}
		return nil, err
	}
	return created, nil
}

func (r *ChecklistTemplateRepository) UpdateTemplateItem(ctx context.Context, id uint64, payload dto.UpdateTemplateItemDTO) (*entities.ChecklistTemplate, error) {
	updateBuilder := sq.Update(checklistTemplateTable).
		PlaceholderFormat(sq.Dollar).
		Where(sq.Eq{"id": id}).
		Set("updated_at", sq.Expr("NOW()"))
	hasChanges := false
	if payload.Title != nil {
		updateBuilder = updateBuilder.Set("title", *payload.Title)
		hasChanges = true
	}
	if payload.Description != nil {
		updateBuilder = updateBuilder.Set("description", *payload.Description)
		hasChanges = true
	}
	if payload.IsRequired != nil {
		updateBuilder = updateBuilder.Set("is_required", *payload.IsRequired)
		hasChanges = true
	}
	if payload.IsActive != nil {
		updateBuilder = updateBuilder.Set("is_active", *payload.IsActive)
		hasChanges = true
	}
	if !hasChanges {
		return r.FindTemplateItem(ctx, id)
	}
	query, args, err := updateBuilder.Suffix("RETURNING " + templateItemColumns).ToSql()
	if err != nil {
		return nil, err
	}
	return scanTemplateItem(r.storage.QueryRow(ctx, query, args...))
}

func (r *ChecklistTemplateRepository) DeleteTemplateItem(ctx context.Context, id uint64) error {
	result, err := r.storage.Exec(ctx, `DELETE FROM checklist_templates WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return apperrors.ErrTemplateItemInUse
		}
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ReorderInTx перенумеровывает активные пункты департамента по заданному порядку.
// Сначала уводим sort_order в отрицательные, чтобы не споткнуться об уникальный индекс.
func (r *ChecklistTemplateRepository) ReorderInTx(ctx context.Context, tx pgx.Tx, departmentID uint64, orderedItemIDs []uint64) error {
	for i, itemID := range orderedItemIDs {
		result, err := tx.Exec(ctx,
			`UPDATE checklist_templates SET sort_order = $1, updated_at = NOW() WHERE id = $2 AND department_id = $3 AND is_active = TRUE`,
			-(i + 1), itemID, departmentID)
		if err != nil {
			return err
		}
		if result.RowsAffected() == 0 {
			return apperrors.NewBadRequestError(fmt.Sprintf("Пункт %d не найден среди активных пунктов департамента.", itemID))
		}
	}
	_, err := tx.Exec(ctx,
		`UPDATE checklist_templates SET sort_order = -sort_order WHERE department_id = $1 AND sort_order < 0`,
		departmentID)
	return err
}

func (r *ChecklistTemplateRepository) CountProjectUsages(ctx context.Context, templateItemID uint64) (uint64, error) {
	var total uint64
	query := `SELECT COUNT(*) FROM project_checklist_items WHERE template_item_id = $1`
	if err := r.storage.QueryRow(ctx, query, templateItemID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
