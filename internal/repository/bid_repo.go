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

// Код ошибки postgres при нарушении уникального ограничения.
const uniqueViolationCode = "23505"

// BidRepository - интерфейс для работы с предложениями.
type BidRepository interface {
	CreateBid(ctx context.Context, bidReq models.BidRequest, vendorId string) (*models.Bid, error)
	GetBidById(ctx context.Context, bidId string) (*models.Bid, error)
	GetTenderBids(ctx context.Context, tenderId string, limit, offset int) ([]models.Bid, error)
	GetVendorBids(ctx context.Context, vendorId string, limit, offset int) ([]models.Bid, error)
	CountTenderBids(ctx context.Context, tenderId string) (int, error)
	FindAwardedBid(ctx context.Context, tenderId string) (*models.Bid, error)
	UpdateBid(ctx context.Context, bid *models.Bid, expectedVersion int) error
}

// PostgresBidRepository - реализация BidRepository для базы данных.
type PostgresBidRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresBidRepository создает новый экземпляр PostgresBidRepository.
func NewPostgresBidRepository(db *pgxpool.Pool) *PostgresBidRepository {
	return &PostgresBidRepository{DB: db}
}

const bidColumns = `id, tender_id, vendor_id, amount, status, score, notes, version, submitted_at, updated_at`

func scanBid(row pgx.Row) (*models.Bid, error) {
	var b models.Bid
	err := row.Scan(
		&b.ID,
		&b.TenderId,
		&b.VendorId,
		&b.Amount,
		&b.Status,
		&b.Score,
		&b.Notes,
		&b.Version,
		&b.SubmittedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// CreateBid создает новое предложение в статусе Pending.
// Уникальное ограничение (tender_id, vendor_id) - единственный арбитр того,
// что поставщик держит не больше одного предложения по тендеру: из двух
// конкурирующих вставок ровно одна получит ErrDuplicate.
func (r *PostgresBidRepository) CreateBid(ctx context.Context, bidReq models.BidRequest, vendorId string) (*models.Bid, error) {
	now := time.Now().UTC()
	newBid := models.Bid{
		ID:          uuid.New().String(),
		TenderId:    bidReq.TenderId,
		VendorId:    vendorId,
		Amount:      bidReq.Amount,
		Status:      models.PendingBid,
		Version:     1,
		SubmittedAt: now,
		UpdatedAt:   now,
	}
	insertQuery := `INSERT INTO bid (id, tender_id, vendor_id, amount, status, notes, version, submitted_at, updated_at)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.DB.Exec(
		ctx,
		insertQuery,
		newBid.ID,
		newBid.TenderId,
		newBid.VendorId,
		newBid.Amount,
		newBid.Status,
		newBid.Notes,
		newBid.Version,
		newBid.SubmittedAt,
		newBid.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to insert bid: %w", err)
	}
	return &newBid, nil
}

// GetBidById возвращает предложение по ID.
func (r *PostgresBidRepository) GetBidById(ctx context.Context, bidId string) (*models.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bid WHERE id = $1`
	return scanBid(r.DB.QueryRow(ctx, query, bidId))
}

// GetTenderBids возвращает список предложений по тендеру.
func (r *PostgresBidRepository) GetTenderBids(ctx context.Context, tenderId string, limit, offset int) ([]models.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bid WHERE tender_id = $1 ORDER BY submitted_at LIMIT $2 OFFSET $3`
	rows, err := r.DB.Query(ctx, query, tenderId, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bids []models.Bid
	for rows.Next() {
		b, err := scanBid(rows)
		if err != nil {
			return nil, err
		}
		bids = append(bids, *b)
	}
	return bids, rows.Err()
}

// GetVendorBids возвращает список предложений поставщика.
func (r *PostgresBidRepository) GetVendorBids(ctx context.Context, vendorId string, limit, offset int) ([]models.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bid WHERE vendor_id = $1 ORDER BY submitted_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.DB.Query(ctx, query, vendorId, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bids []models.Bid
	for rows.Next() {
		b, err := scanBid(rows)
		if err != nil {
			return nil, err
		}
		bids = append(bids, *b)
	}
	return bids, rows.Err()
}

// CountTenderBids возвращает количество предложений по тендеру.
func (r *PostgresBidRepository) CountTenderBids(ctx context.Context, tenderId string) (int, error) {
	var count int
	query := `SELECT COUNT(1) FROM bid WHERE tender_id = $1`
	err := r.DB.QueryRow(ctx, query, tenderId).Scan(&count)
	return count, err
}

// FindAwardedBid возвращает победившее предложение тендера, если оно есть.
func (r *PostgresBidRepository) FindAwardedBid(ctx context.Context, tenderId string) (*models.Bid, error) {
	query := `SELECT ` + bidColumns + ` FROM bid WHERE tender_id = $1 AND status = $2`
	bid, err := scanBid(r.DB.QueryRow(ctx, query, tenderId, models.AwardedBid))
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return bid, err
}

// UpdateBid записывает предложение с проверкой версии.
func (r *PostgresBidRepository) UpdateBid(ctx context.Context, bid *models.Bid, expectedVersion int) error {
	query := `
       UPDATE bid
       SET status = $1, score = $2, notes = $3, version = version + 1, updated_at = $4
       WHERE id = $5 AND version = $6`
	tag, err := r.DB.Exec(ctx, query,
		bid.Status,
		bid.Score,
		bid.Notes,
		time.Now().UTC(),
		bid.ID,
		expectedVersion)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrVersionConflict
	}
	bid.Version = expectedVersion + 1
	return nil
}
