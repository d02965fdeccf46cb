package repository

import (
	"context"

	"github.com/tenderhub/procurement-service/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// CriteriaRepository - интерфейс для чтения критериев оценки.
// Справочные данные: движок их не изменяет, только читает.
type CriteriaRepository interface {
	GetTenderCriteria(ctx context.Context, tenderId string) ([]models.EvaluationCriterion, error)
}

// PostgresCriteriaRepository - реализация CriteriaRepository для базы данных.
type PostgresCriteriaRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresCriteriaRepository создает новый экземпляр PostgresCriteriaRepository.
func NewPostgresCriteriaRepository(db *pgxpool.Pool) *PostgresCriteriaRepository {
	return &PostgresCriteriaRepository{DB: db}
}

// GetTenderCriteria возвращает активный набор критериев тендера.
func (r *PostgresCriteriaRepository) GetTenderCriteria(ctx context.Context, tenderId string) ([]models.EvaluationCriterion, error) {
	query := `SELECT id, tender_id, name, weight, description
              FROM evaluation_criterion WHERE tender_id = $1 ORDER BY weight DESC, name`
	rows, err := r.DB.Query(ctx, query, tenderId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var criteria []models.EvaluationCriterion
	for rows.Next() {
		var c models.EvaluationCriterion
		if err := rows.Scan(&c.ID, &c.TenderId, &c.Name, &c.Weight, &c.Description); err != nil {
			return nil, err
		}
		criteria = append(criteria, c)
	}
	return criteria, rows.Err()
}
