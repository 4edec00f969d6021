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

type UserRepositoryInterface interface {
	FindUser(ctx context.Context, id uint64) (*entities.User, error)
	FindUserByEmail(ctx context.Context, email string) (*entities.User, error)
}

type UserRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewUserRepository(storage *pgxpool.Pool, logger *zap.Logger) UserRepositoryInterface {
	return &UserRepository{storage: storage, logger: logger}
}

const userSelect = `SELECT u.id, u.fio, u.email, u.password, u.role_id, r.code, u.created_at, u.updated_at, u.deleted_at
FROM users u
JOIN roles r ON r.id = u.role_id`

func scanUser(row pgx.Row) (*entities.User, error) {
	var u entities.User
	err := row.Scan(&u.ID, &u.Fio, &u.Email, &u.Password, &u.RoleID, &u.RoleCode, &u.CreatedAt, &u.UpdatedAt, &u.DeletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования user: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) FindUser(ctx context.Context, id uint64) (*entities.User, error) {
	query := userSelect + ` WHERE u.id = $1 AND u.deleted_at IS NULL`
	return scanUser(r.storage.QueryRow(ctx, query, id))
}

func (r *UserRepository) FindUserByEmail(ctx context.Context, email string) (*entities.User, error) {
	query := userSelect + ` WHERE u.email = $1 AND u.deleted_at IS NULL`
	return scanUser(r.storage.QueryRow(ctx, query, email))
}
