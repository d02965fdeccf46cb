package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tenderhub/procurement-service/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

// TenderRepository - интерфейс для работы с тендерами.
type TenderRepository interface {
	CreateTender(ctx context.Context, tenderReq models.TenderRequest, createdBy string) (*models.Tender, error)
	GetTenderById(ctx context.Context, tenderId string) (*models.Tender, error)
	GetTenders(ctx context.Context, limit, offset int, statuses []string) ([]models.Tender, error)
	UpdateTender(ctx context.Context, tender *models.Tender, expectedVersion int) error
	CloseTenderTx(ctx context.Context, tenderId string, from, to models.TenderStatus, sweepReason string, expectedVersion int) (*models.Tender, error)
	AwardTenderTx(ctx context.Context, tenderId, winningBidId string, expectedVersion int) (*models.Tender, error)
}

// PostgresTenderRepository - реализация TenderRepository для базы данных.
type PostgresTenderRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresTenderRepository создаёт новый экземпляр PostgresTenderRepository.
func NewPostgresTenderRepository(db *pgxpool.Pool) *PostgresTenderRepository {
	return &PostgresTenderRepository{DB: db}
}

const tenderColumns = `id, title, description, category, budget, deadline, status, created_by, version, created_at, updated_at`

func scanTender(row pgx.Row) (*models.Tender, error) {
	var t models.Tender
	err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.Category,
		&t.Budget,
		&t.Deadline,
		&t.Status,
		&t.CreatedBy,
		&t.Version,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// CreateTender создает новый тендер в статусе Draft.
func (r *PostgresTenderRepository) CreateTender(ctx context.Context, tenderReq models.TenderRequest, createdBy string) (*models.Tender, error) {
	now := time.Now().UTC()
	newTender := models.Tender{
		ID:          uuid.New().String(),
		Title:       tenderReq.Title,
		Description: tenderReq.Description,
		Category:    tenderReq.Category,
		Budget:      tenderReq.Budget,
		Deadline:    tenderReq.Deadline,
		Status:      models.DraftTender,
		CreatedBy:   createdBy,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	_, err := r.DB.Exec(ctx, `
       INSERT INTO tender (id, title, description, category, budget, deadline, status, created_by, version, created_at, updated_at)
       VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
   `,
		newTender.ID,
		newTender.Title,
		newTender.Description,
		newTender.Category,
		newTender.Budget,
		newTender.Deadline,
		newTender.Status,
		newTender.CreatedBy,
		newTender.Version,
		newTender.CreatedAt,
		newTender.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert tender: %w", err)
	}
	return &newTender, nil
}

// GetTenderById возвращает тендер по ID.
func (r *PostgresTenderRepository) GetTenderById(ctx context.Context, tenderId string) (*models.Tender, error) {
	query := `SELECT ` + tenderColumns + ` FROM tender WHERE id = $1`
	return scanTender(r.DB.QueryRow(ctx, query, tenderId))
}

// GetTenders возвращает список тендеров с фильтром по статусам.
func (r *PostgresTenderRepository) GetTenders(ctx context.Context, limit, offset int, statuses []string) ([]models.Tender, error) {
	query := `SELECT ` + tenderColumns + ` FROM tender`
	var filters []string
	var args []interface{}
	argIndex := 1

	if len(statuses) > 0 {
		filters = append(filters, fmt.Sprintf("status = ANY($%d)", argIndex))
		args = append(args, pq.Array(statuses))
		argIndex++
	}

	if len(filters) > 0 {
		query += " WHERE " + strings.Join(filters, " AND ")
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, limit, offset)

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tenders []models.Tender
	for rows.Next() {
		t, err := scanTender(rows)
		if err != nil {
			return nil, err
		}
		tenders = append(tenders, *t)
	}
	return tenders, rows.Err()
}

// UpdateTender записывает тендер с проверкой версии.
// Несовпадение версии означает, что кто-то успел записать раньше.
func (r *PostgresTenderRepository) UpdateTender(ctx context.Context, tender *models.Tender, expectedVersion int) error {
	query := `
       UPDATE tender
       SET title = $1, description = $2, category = $3, budget = $4, deadline = $5, status = $6,
           version = version + 1, updated_at = $7
       WHERE id = $8 AND version = $9`
	tag, err := r.DB.Exec(ctx, query,
		tender.Title,
		tender.Description,
		tender.Category,
		tender.Budget,
		tender.Deadline,
		tender.Status,
		time.Now().UTC(),
		tender.ID,
		expectedVersion)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrVersionConflict
	}
	tender.Version = expectedVersion + 1
	return nil
}

// CloseTenderTx переводит тендер from -> to и в той же транзакции
// отклоняет все живые предложения по нему. Переход тендера защищён
// проверкой статуса и версии, при несовпадении вся транзакция откатывается.
func (r *PostgresTenderRepository) CloseTenderTx(ctx context.Context, tenderId string, from, to models.TenderStatus, sweepReason string, expectedVersion int) (*models.Tender, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	sweepQuery := `
       UPDATE bid
       SET status = $1, notes = $2, version = version + 1, updated_at = $3
       WHERE tender_id = $4 AND status = ANY($5)`
	_, err = tx.Exec(ctx, sweepQuery,
		models.RejectedBid, sweepReason, time.Now().UTC(), tenderId, pq.Array(models.NonTerminalBidStatuses()))
	if err != nil {
		return nil, err
	}

	tenderQuery := `
       UPDATE tender
       SET status = $1, version = version + 1, updated_at = $2
       WHERE id = $3 AND status = $4 AND version = $5
       RETURNING ` + tenderColumns
	updatedTender, err := scanTender(tx.QueryRow(ctx, tenderQuery,
		to, time.Now().UTC(), tenderId, from, expectedVersion))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrVersionConflict
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return updatedTender, nil
}

// AwardTenderTx применяет решение о победителе одной транзакцией:
// победившее предложение Shortlisted -> Awarded, остальные живые -> Rejected,
// тендер UnderEvaluation -> Awarded. Точка линеаризации - условная запись
// статуса тендера: проигравший гонку вызов получает ErrVersionConflict,
// и ни одно из трёх изменений не остаётся применённым частично.
func (r *PostgresTenderRepository) AwardTenderTx(ctx context.Context, tenderId, winningBidId string, expectedVersion int) (*models.Tender, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	winnerQuery := `
       UPDATE bid
       SET status = $1, version = version + 1, updated_at = $2
       WHERE id = $3 AND tender_id = $4 AND status = $5`
	tag, err := tx.Exec(ctx, winnerQuery,
		models.AwardedBid, time.Now().UTC(), winningBidId, tenderId, models.ShortlistedBid)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrVersionConflict
	}

	losersQuery := `
       UPDATE bid
       SET status = $1, notes = $2, version = version + 1, updated_at = $3
       WHERE tender_id = $4 AND id <> $5 AND status = ANY($6)`
	_, err = tx.Exec(ctx, losersQuery,
		models.RejectedBid, "another bid was awarded", time.Now().UTC(),
		tenderId, winningBidId, pq.Array(models.NonTerminalBidStatuses()))
	if err != nil {
		return nil, err
	}

	tenderQuery := `
       UPDATE tender
       SET status = $1, version = version + 1, updated_at = $2
       WHERE id = $3 AND status = $4 AND version = $5
       RETURNING ` + tenderColumns
	updatedTender, err := scanTender(tx.QueryRow(ctx, tenderQuery,
		models.AwardedTender, time.Now().UTC(), tenderId, models.UnderEvaluationTender, expectedVersion))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrVersionConflict
		}
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return updatedTender, nil
}
