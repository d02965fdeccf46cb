package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tenderhub/procurement-service/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AccountRepository - интерфейс для работы с учётными записями.
type AccountRepository interface {
	CreateAccount(ctx context.Context, account *models.Account) error
	GetAccountById(ctx context.Context, accountId string) (*models.Account, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

// PostgresAccountRepository - реализация AccountRepository для базы данных.
type PostgresAccountRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresAccountRepository создает новый экземпляр PostgresAccountRepository.
func NewPostgresAccountRepository(db *pgxpool.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{DB: db}
}

// CreateAccount создает учётную запись. Уникальное ограничение на email
// в самой вставке - это и есть защита от гонки двух одинаковых регистраций:
// предварительная проверка существования не используется как гарантия.
func (r *PostgresAccountRepository) CreateAccount(ctx context.Context, account *models.Account) error {
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	account.CreatedAt = time.Now().UTC()
	query := `INSERT INTO account (id, email, password_hash, company_name, categories, role, created_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.DB.Exec(ctx, query,
		account.ID,
		account.Email,
		account.PasswordHash,
		account.CompanyName,
		account.Categories,
		account.Role,
		account.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

// GetAccountById возвращает учётную запись по ID.
func (r *PostgresAccountRepository) GetAccountById(ctx context.Context, accountId string) (*models.Account, error) {
	var a models.Account
	query := `SELECT id, email, password_hash, company_name, categories, role, created_at
              FROM account WHERE id = $1`
	err := r.DB.QueryRow(ctx, query, accountId).Scan(
		&a.ID,
		&a.Email,
		&a.PasswordHash,
		&a.CompanyName,
		&a.Categories,
		&a.Role,
		&a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// EmailExists проверяет, занят ли email. Только подсказка для UI,
// не используется как механизм корректности.
func (r *PostgresAccountRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM account WHERE email = $1)`
	err := r.DB.QueryRow(ctx, query, email).Scan(&exists)
	return exists, err
}
