package services

import (
	"fmt"

	"github.com/tenderhub/procurement-service/internal/models"
)

// ComputeScore вычисляет итоговый балл предложения по набранным баллам
// за каждый критерий. Вес критерия одновременно является максимумом
// набираемых баллов (формат "28/30" в интерфейсе), сумма весов активного
// набора должна быть ровно 100. Итог - целая сумма баллов, ограниченная [0, 100].
func ComputeScore(criteria []models.EvaluationCriterion, rawPoints map[string]int) (int, error) {
	if len(criteria) == 0 {
		return 0, models.NewValidationError("no evaluation criteria configured for this tender")
	}

	totalWeight := 0
	for _, c := range criteria {
		totalWeight += c.Weight
	}
	if totalWeight != 100 {
		return 0, models.NewValidationError(fmt.Sprintf("criteria weights sum to %d, expected exactly 100", totalWeight))
	}

	known := make(map[string]bool, len(criteria))
	total := 0
	for _, c := range criteria {
		points, ok := rawPoints[c.ID]
		if !ok {
			return 0, models.NewValidationError(fmt.Sprintf("missing score for criterion %q", c.Name))
		}
		if points < 0 || points > c.Weight {
			return 0, models.NewValidationError(fmt.Sprintf("score %d for criterion %q is out of range [0, %d]", points, c.Name, c.Weight))
		}
		known[c.ID] = true
		total += points
	}

	for id := range rawPoints {
		if !known[id] {
			return 0, models.NewValidationError(fmt.Sprintf("unknown criterion %q", id))
		}
	}

	if total < 0 {
		total = 0
	}
	if total > 100 {
		total = 100
	}
	return total, nil
}
