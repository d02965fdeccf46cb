package services

import (
	"context"
	"errors"
	"net/http"

	"github.com/tenderhub/procurement-service/internal/models"
	"github.com/tenderhub/procurement-service/internal/repository"
)

// AwardService применяет решение о победителе ко всем предложениям тендера
// как одно неделимое целое: победитель Shortlisted -> Awarded, остальные
// живые предложения -> Rejected, тендер UnderEvaluation -> Awarded.
// Частично применённое состояние не наблюдаемо: либо фиксируются все три
// изменения, либо ни одно.
type AwardService struct {
	Tenders  repository.TenderRepository
	Bids     repository.BidRepository
	Notifier *Notifier
}

// NewAwardService создает новый экземпляр AwardService.
func NewAwardService(tenders repository.TenderRepository, bids repository.BidRepository, notifier *Notifier) *AwardService {
	return &AwardService{Tenders: tenders, Bids: bids, Notifier: notifier}
}

// Award выбирает победителя тендера. Повторный вызов с тем же победителем
// после успеха возвращает тот же успех, а не ошибку. Из двух одновременных
// попыток наградить один тендер выигрывает ровно одна, вторая получает
// Conflict: условная запись статуса тендера - точка линеаризации.
func (s *AwardService) Award(ctx context.Context, caller models.Caller, tenderId, winningBidId string) (*models.Tender, error) {
	if err := Authorize(caller, ActionAwardTender, ""); err != nil {
		return nil, err
	}
	if tenderId == "" || winningBidId == "" {
		return nil, models.NewValidationError("tenderId and bidId are required")
	}

	tender, err := s.Tenders.GetTenderById(ctx, tenderId)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, models.NewNotFound("tender not found")
		}
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to fetch tender")
	}
	bid, err := s.Bids.GetBidById(ctx, winningBidId)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, models.NewNotFound("bid not found")
		}
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to fetch bid")
	}
	if bid.TenderId != tenderId {
		return nil, models.NewValidationError("bid does not belong to this tender")
	}

	// Идемпотентный повтор: победитель уже выбран этим же вызовом.
	if tender.Status == models.AwardedTender && bid.Status == models.AwardedBid {
		return tender, nil
	}
	if tender.Status != models.UnderEvaluationTender {
		return nil, models.NewInvalidTransition(string(tender.Status), string(models.AwardedTender))
	}
	if bid.Status != models.ShortlistedBid {
		return nil, models.NewInvalidTransition(string(bid.Status), string(models.AwardedBid))
	}

	awarded, err := s.Bids.FindAwardedBid(ctx, tenderId)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to check awarded bid")
	}
	if awarded != nil && awarded.ID != winningBidId {
		return nil, models.NewConflict("another bid has already been awarded on this tender")
	}

	updated, err := s.Tenders.AwardTenderTx(ctx, tenderId, winningBidId, tender.Version)
	if err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, models.NewConflict("award lost a concurrent update, reload and retry")
		}
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to apply award")
	}

	s.Notifier.BidStatusChanged(winningBidId, models.AwardedBid)
	s.Notifier.TenderStatusChanged(updated.ID, updated.Status)
	return updated, nil
}
