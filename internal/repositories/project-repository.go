package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

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

const projectTable = "projects"

var (
	projectAllowedFilterFields = map[string]string{
		"category_id":           "p.category_id",
		"status":                "p.status",
		"current_department_id": "p.current_department_id",
		"created_by":            "p.created_by",
	}
	projectAllowedSortFields = map[string]string{"id": "p.id", "name": "p.name", "created_at": "p.created_at"}
)

// ProjectRecord - проект с кодами категории и департаментов для выдачи наружу.
type ProjectRecord struct {
	entities.Project
	CategoryName          string
	CurrentDepartmentCode *string
	NextDepartmentCode    *string
}

type ProjectRepositoryInterface interface {
	GetProjects(ctx context.Context, filter types.Filter) ([]ProjectRecord, uint64, error)
	FindProject(ctx context.Context, id uint64) (*ProjectRecord, error)
	FindProjectInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Project, error)
	CreateProjectInTx(ctx context.Context, tx pgx.Tx, project *entities.Project) (uint64, error)
	UpdateProject(ctx context.Context, id uint64, payload dto.UpdateProjectDTO) error
	UpdateDepartmentsInTx(ctx context.Context, tx pgx.Tx, projectID uint64, currentID uint64, nextID *uint64) error
	UpdateStatusInTx(ctx context.Context, tx pgx.Tx, projectID uint64, status string) error
}

type ProjectRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewProjectRepository(storage *pgxpool.Pool, logger *zap.Logger) ProjectRepositoryInterface {
	return &ProjectRepository{storage: storage, logger: logger}
}

const projectRecordSelect = `SELECT p.id, p.name, p.category_id, p.current_department_id, p.next_department_id,
       p.status, p.created_by, p.created_at, p.updated_at, c.name, dc.code, dn.code
FROM projects p
JOIN categories c ON c.id = p.category_id
LEFT JOIN departments dc ON dc.id = p.current_department_id
LEFT JOIN departments dn ON dn.id = p.next_department_id`

func scanProjectRecord(row pgx.Row) (*ProjectRecord, error) {
	var p ProjectRecord
	err := row.Scan(&p.ID, &p.Name, &p.CategoryID, &p.CurrentDepartmentID, &p.NextDepartmentID,
		&p.Status, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt, &p.CategoryName,
		&p.CurrentDepartmentCode, &p.NextDepartmentCode)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования project: %w", err)
	}
	return &p, nil
}

func (r *ProjectRepository) buildFilterQuery(filter types.Filter) (string, []interface{}) {
	conditions := []string{"p.deleted_at IS NULL"}
	args := []interface{}{}
	argCounter := 1
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("p.name ILIKE $%d", argCounter))
		args = append(args, "%"+filter.Search+"%")
		argCounter++
	}
	for key, value := range filter.Filter {
		if dbColumn, ok := projectAllowedFilterFields[key]; ok {
			conditions = append(conditions, fmt.Sprintf("%s = $%d", dbColumn, argCounter))
			args = append(args, value)
			argCounter++
		}
	}
	return "WHERE " + strings.Join(conditions, " AND "), args
}

func (r *ProjectRepository) GetProjects(ctx context.Context, filter types.Filter) ([]ProjectRecord, uint64, error) {
	whereClause, args := r.buildFilterQuery(filter)

	var total uint64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s AS p %s", projectTable, whereClause)
	if err := r.storage.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []ProjectRecord{}, 0, nil
	}

	orderByClause := "ORDER BY p.id DESC"
	if len(filter.Sort) > 0 {
		sorts := []string{}
		for field, direction := range filter.Sort {
			if dbField, ok := projectAllowedSortFields[field]; ok {
				order := "ASC"
				if strings.ToLower(direction) == "desc" {
					order = "DESC"
				}
				sorts = append(sorts, fmt.Sprintf("%s %s", dbField, order))
			}
		}
		if len(sorts) > 0 {
			orderByClause = "ORDER BY " + strings.Join(sorts, ", ")
		}
	}

	limitClause := ""
	argCounter := len(args) + 1
	if filter.WithPagination {
		limitClause = fmt.Sprintf("LIMIT $%d OFFSET $%d", argCounter, argCounter+1)
		args = append(args, filter.Limit, filter.Offset)
	}

	query := fmt.Sprintf("%s %s %s %s", projectRecordSelect, whereClause, orderByClause, limitClause)
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	projects := make([]ProjectRecord, 0)
	for rows.Next() {
		p, err := scanProjectRecord(rows)
		if err != nil {
			return nil, 0, err
		}
		projects = append(projects, *p)
	}
	return projects, total, rows.Err()
}

func (r *ProjectRepository) FindProject(ctx context.Context, id uint64) (*ProjectRecord, error) {
	query := projectRecordSelect + ` WHERE p.id = $1 AND p.deleted_at IS NULL`
	return scanProjectRecord(r.storage.QueryRow(ctx, query, id))
}

// FindProjectInTx блокирует строку проекта на время транзакции перехода.
func (r *ProjectRepository) FindProjectInTx(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Project, error) {
	query := `SELECT id, name, category_id, current_department_id, next_department_id, status, created_by, created_at, updated_at
FROM projects WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`
	var p entities.Project
	err := tx.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.CategoryID, &p.CurrentDepartmentID,
		&p.NextDepartmentID, &p.Status, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования project: %w", err)
	}
	return &p, nil
}

func (r *ProjectRepository) CreateProjectInTx(ctx context.Context, tx pgx.Tx, project *entities.Project) (uint64, error) {
	var id uint64
	err := tx.QueryRow(ctx, `INSERT INTO projects (name, category_id, current_department_id, next_department_id, status, created_by)
VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		project.Name, project.CategoryID, project.CurrentDepartmentID, project.NextDepartmentID,
		project.Status, project.CreatedBy).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return 0, apperrors.NewBadRequestError("Неверный ID категории или департамента.")
		}
		return 0, fmt.Errorf("не удалось создать проект: %w", err)
	}
	return id, nil
}

func (r *ProjectRepository) UpdateProject(ctx context.Context, id uint64, payload dto.UpdateProjectDTO) error {
	updateBuilder := sq.Update(projectTable).
		PlaceholderFormat(sq.Dollar).
		Where(sq.Eq{"id": id}).
		Where("deleted_at IS NULL").
		Set("updated_at", sq.Expr("NOW()"))
	hasChanges := false
	if payload.Name.Valid {
		updateBuilder = updateBuilder.Set("name", payload.Name.String)
		hasChanges = true
	}
	if payload.Status.Valid {
		updateBuilder = updateBuilder.Set("status", payload.Status.String)
		hasChanges = true
	}
	if !hasChanges {
		return nil
	}
	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return err
	}
	result, err := r.storage.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *ProjectRepository) UpdateDepartmentsInTx(ctx context.Context, tx pgx.Tx, projectID uint64, currentID uint64, nextID *uint64) error {
	result, err := tx.Exec(ctx,
		`UPDATE projects SET current_department_id = $1, next_department_id = $2, updated_at = NOW() WHERE id = $3`,
		currentID, nextID, projectID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *ProjectRepository) UpdateStatusInTx(ctx context.Context, tx pgx.Tx, projectID uint64, status string) error {
	result, err := tx.Exec(ctx,
		`UPDATE projects SET status = $1, updated_at = NOW() WHERE id = $2`, status, projectID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
