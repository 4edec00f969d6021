package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"project-management/internal/dto"
	"project-management/internal/entities"
	apperrors "project-management/pkg/errors"
	"project-management/pkg/types"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const departmentTable = "departments"

var departmentAllowedSortFields = map[string]string{"id": "d.id", "code": "d.code", "name": "d.name", "created_at": "d.created_at"}

type DepartmentRepositoryInterface interface {
	GetDepartments(ctx context.Context, filter types.Filter) ([]entities.Department, uint64, error)
	FindDepartment(ctx context.Context, id uint64) (*entities.Department, error)
	FindDepartmentByCode(ctx context.Context, code string) (*entities.Department, error)
	CreateDepartment(ctx context.Context, department entities.Department) (*entities.Department, error)
	UpdateDepartment(ctx context.Context, id uint64, payload dto.UpdateDepartmentDTO) (*entities.Department, error)
	DeleteDepartment(ctx context.Context, id uint64) error
}

type DepartmentRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewDepartmentRepository(storage *pgxpool.Pool, logger *zap.Logger) DepartmentRepositoryInterface {
	return &DepartmentRepository{storage: storage, logger: logger}
}

func scanDepartment(row pgx.Row) (*entities.Department, error) {
	var d entities.Department
	err := row.Scan(&d.ID, &d.Code, &d.Name, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования department: %w", err)
	}
	return &d, nil
}

func (r *DepartmentRepository) GetDepartments(ctx context.Context, filter types.Filter) ([]entities.Department, uint64, error) {
	conditions := []string{}
	args := []interface{}{}
	if filter.Search != "" {
		conditions = append(conditions, "(d.name ILIKE $1 OR d.code ILIKE $1)")
		args = append(args, "%"+filter.Search+"%")
	}
	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total uint64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s AS d %s", departmentTable, whereClause)
	if err := r.storage.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []entities.Department{}, 0, nil
	}

	orderByClause := "ORDER BY d.id ASC"
	if len(filter.Sort) > 0 {
		sorts := []string{}
		for field, direction := range filter.Sort {
			if dbField, ok := departmentAllowedSortFields[field]; ok {
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

	query := fmt.Sprintf(`SELECT d.id, d.code, d.name, d.created_at, d.updated_at FROM %s d %s %s %s`, departmentTable, whereClause, orderByClause, limitClause)
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	departments := make([]entities.Department, 0)
	for rows.Next() {
		dept, err := scanDepartment(rows)
		if err != nil {
			return nil, 0, err
		}
		departments = append(departments, *dept)
	}
	return departments, total, rows.Err()
}

func (r *DepartmentRepository) FindDepartment(ctx context.Context, id uint64) (*entities.Department, error) {
	query := `SELECT id, code, name, created_at, updated_at FROM departments WHERE id = $1`
	return scanDepartment(r.storage.QueryRow(ctx, query, id))
}

func (r *DepartmentRepository) FindDepartmentByCode(ctx context.Context, code string) (*entities.Department, error) {
	query := `SELECT id, code, name, created_at, updated_at FROM departments WHERE code = $1`
	return scanDepartment(r.storage.QueryRow(ctx, query, code))
}

func (r *DepartmentRepository) CreateDepartment(ctx context.Context, department entities.Department) (*entities.Department, error) {
	query := `INSERT INTO departments (code, name) VALUES ($1, $2) RETURNING id, code, name, created_at, updated_at`
	created, err := scanDepartment(r.storage.QueryRow(ctx, query, department.Code, department.Name))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperrors.NewConflictError("Департамент с таким кодом уже существует.")
		}
		return nil, err
	}
	return created, nil
}

func (r *DepartmentRepository) UpdateDepartment(ctx context.Context, id uint64, payload dto.UpdateDepartmentDTO) (*entities.Department, error) {
	query := `UPDATE departments SET name = $1, updated_at = NOW() WHERE id = $2 RETURNING id, code, name, created_at, updated_at`
	return scanDepartment(r.storage.QueryRow(ctx, query, payload.Name, id))
}

func (r *DepartmentRepository) DeleteDepartment(ctx context.Context, id uint64) error {
	query := `DELETE FROM departments WHERE id = $1`
	result, err := r.storage.Exec(ctx, query, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return apperrors.ErrDepartmentInUse
		}
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
