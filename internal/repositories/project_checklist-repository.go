package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"project-management/internal/entities"
	apperrors "project-management/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type ProjectChecklistRepositoryInterface interface {
	GetProjectItems(ctx context.Context, projectID, departmentID uint64) ([]entities.ProjectChecklistItem, error)
	GetProjectItemsInTx(ctx context.Context, tx pgx.Tx, projectID, departmentID uint64) ([]entities.ProjectChecklistItem, error)
	InstantiateFromTemplateInTx(ctx context.Context, tx pgx.Tx, projectID uint64, templates []entities.ChecklistTemplate) error
	FindProjectItem(ctx context.Context, itemID uint64) (*entities.ProjectChecklistItem, error)
	UpdateItemInTx(ctx context.Context, tx pgx.Tx, item *entities.ProjectChecklistItem) error
	GetLinks(ctx context.Context, itemIDs []uint64) (map[uint64][]entities.ChecklistItemLink, error)
	ReplaceLinksInTx(ctx context.Context, tx pgx.Tx, itemID uint64, links []entities.ChecklistItemLink) error
	LogUpdateInTx(ctx context.Context, tx pgx.Tx, update entities.ChecklistItemUpdate) error
	GetItemUpdates(ctx context.Context, itemIDs []uint64) (map[uint64][]entities.ChecklistItemUpdate, error)
}

type ProjectChecklistRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewProjectChecklistRepository(storage *pgxpool.Pool, logger *zap.Logger) ProjectChecklistRepositoryInterface {
	return &ProjectChecklistRepository{storage: storage, logger: logger}
}

const projectItemColumns = `id, project_id, template_item_id, department_id, title, description, is_required,
       is_completed, completed_at, completed_by, notes, last_updated_at, last_updated_by, created_at`

func scanProjectItem(row pgx.Row) (*entities.ProjectChecklistItem, error) {
	var it entities.ProjectChecklistItem
	err := row.Scan(&it.ID, &it.ProjectID, &it.TemplateItemID, &it.DepartmentID, &it.Title, &it.Description,
		&it.IsRequired, &it.IsCompleted, &it.CompletedAt, &it.CompletedBy, &it.Notes,
		&it.LastUpdatedAt, &it.LastUpdatedBy, &it.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования checklist item: %w", err)
	}
	return &it, nil
}

func collectProjectItems(rows pgx.Rows) ([]entities.ProjectChecklistItem, error) {
	defer rows.Close()
	items := make([]entities.ProjectChecklistItem, 0)
	for rows.Next() {
		item, err := scanProjectItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (r *ProjectChecklistRepository) GetProjectItems(ctx context.Context, projectID, departmentID uint64) ([]entities.ProjectChecklistItem, error) {
	return r.getItems(ctx, r.storage, projectID, departmentID)
}

func (r *ProjectChecklistRepository) GetProjectItemsInTx(ctx context.Context, tx pgx.Tx, projectID, departmentID uint64) ([]entities.ProjectChecklistItem, error) {
	return r.getItems(ctx, tx, projectID, departmentID)
}

func (r *ProjectChecklistRepository) getItems(ctx context.Context, q querier, projectID, departmentID uint64) ([]entities.ProjectChecklistItem, error) {
	query := fmt.Sprintf(`SELECT %s FROM project_checklist_items
WHERE project_id = $1 AND department_id = $2
ORDER BY (SELECT t.sort_order FROM checklist_templates t WHERE t.id = template_item_id), id`, projectItemColumns)
	rows, err := q.Query(ctx, query, projectID, departmentID)
	if err != nil {
		return nil, err
	}
	return collectProjectItems(rows)
}

// InstantiateFromTemplateInTx создаёт снапшоты пунктов шаблона для проекта.
// ON CONFLICT DO NOTHING защищает от гонки двух одновременных первых обращений.
func (r *ProjectChecklistRepository) InstantiateFromTemplateInTx(ctx context.Context, tx pgx.Tx, projectID uint64, templates []entities.ChecklistTemplate) error {
	for _, t := range templates {
		_, err := tx.Exec(ctx, `INSERT INTO project_checklist_items
    (project_id, template_item_id, department_id, title, description, is_required)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (project_id, template_item_id) DO NOTHING`,
			projectID, t.ID, t.DepartmentID, t.Title, t.Description, t.IsRequired)
		if err != nil {
			return fmt.Errorf("не удалось создать пункт чеклиста проекта: %w", err)
		}
	}
	return nil
}

func (r *ProjectChecklistRepository) FindProjectItem(ctx context.Context, itemID uint64) (*entities.ProjectChecklistItem, error) {
	query := fmt.Sprintf(`SELECT %s FROM project_checklist_items WHERE id = $1`, projectItemColumns)
	return scanProjectItem(r.storage.QueryRow(ctx, query, itemID))
}

func (r *ProjectChecklistRepository) UpdateItemInTx(ctx context.Context, tx pgx.Tx, item *entities.ProjectChecklistItem) error {
	result, err := tx.Exec(ctx, `UPDATE project_checklist_items
SET is_completed = $1, completed_at = $2, completed_by = $3, notes = $4, last_updated_at = $5, last_updated_by = $6
WHERE id = $7`,
		item.IsCompleted, item.CompletedAt, item.CompletedBy, item.Notes, item.LastUpdatedAt, item.LastUpdatedBy, item.ID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *ProjectChecklistRepository) GetLinks(ctx context.Context, itemIDs []uint64) (map[uint64][]entities.ChecklistItemLink, error) {
	links := make(map[uint64][]entities.ChecklistItemLink)
	if len(itemIDs) == 0 {
		return links, nil
	}
	rows, err := r.storage.Query(ctx,
		`SELECT id, item_id, url, title, link_type FROM checklist_item_links WHERE item_id = ANY($1) ORDER BY id`, itemIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var l entities.ChecklistItemLink
		if err := rows.Scan(&l.ID, &l.ItemID, &l.URL, &l.Title, &l.LinkType); err != nil {
			return nil, err
		}
		links[l.ItemID] = append(links[l.ItemID], l)
	}
	return links, rows.Err()
}

func (r *ProjectChecklistRepository) ReplaceLinksInTx(ctx context.Context, tx pgx.Tx, itemID uint64, links []entities.ChecklistItemLink) error {
	if _, err := tx.Exec(ctx, `DELETE FROM checklist_item_links WHERE item_id = $1`, itemID); err != nil {
		return err
	}
	for _, l := range links {
		_, err := tx.Exec(ctx,
			`INSERT INTO checklist_item_links (item_id, url, title, link_type) VALUES ($1, $2, $3, $4)`,
			itemID, l.URL, l.Title, l.LinkType)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *ProjectChecklistRepository) LogUpdateInTx(ctx context.Context, tx pgx.Tx, update entities.ChecklistItemUpdate) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO checklist_item_updates (item_id, notes, updated_by, tx_id, created_at) VALUES ($1, $2, $3, $4, $5)`,
		update.ItemID, update.Notes, update.UpdatedBy, update.TxID, time.Now())
	return err
}

func (r *ProjectChecklistRepository) GetItemUpdates(ctx context.Context, itemIDs []uint64) (map[uint64][]entities.ChecklistItemUpdate, error) {
	updates := make(map[uint64][]entities.ChecklistItemUpdate)
	if len(itemIDs) == 0 {
		return updates, nil
	}
	rows, err := r.storage.Query(ctx,
		`SELECT id, item_id, notes, updated_by, tx_id, created_at FROM checklist_item_updates WHERE item_id = ANY($1) ORDER BY created_at DESC, id DESC`,
		itemIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var u entities.ChecklistItemUpdate
		if err := rows.Scan(&u.ID, &u.ItemID, &u.Notes, &u.UpdatedBy, &u.TxID, &u.CreatedAt); err != nil {
			return nil, err
		}
		updates[u.ItemID] = append(updates[u.ItemID], u)
	}
	return updates, rows.Err()
}
