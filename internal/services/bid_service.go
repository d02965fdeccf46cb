package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/tenderhub/procurement-service/internal/models"
	"github.com/tenderhub/procurement-service/internal/repository"
	"github.com/tenderhub/procurement-service/internal/utils"
)

// BidService - машина состояний предложения. Подача - единственная операция
// поставщика, все последующие переходы выполняет администратор.
type BidService struct {
	Bids     repository.BidRepository
	Tenders  repository.TenderRepository
	Criteria repository.CriteriaRepository
	Notifier *Notifier
}

// NewBidService создает новый экземпляр BidService.
func NewBidService(bids repository.BidRepository, tenders repository.TenderRepository, criteria repository.CriteriaRepository, notifier *Notifier) *BidService {
	return &BidService{Bids: bids, Tenders: tenders, Criteria: criteria, Notifier: notifier}
}

// Допустимые переходы статусов по операциям администратора. Отклонение
// возможно только после оценки: до неё несоответствие снимается через
// Disqualified. Массовый перевод живых предложений в Rejected при закрытии
// тендера выполняется транзакцией хранилища и через эту таблицу не проходит.
// Движение назад из Shortlisted/Rejected/Awarded/Disqualified запрещено.
var allowedBidTransition = map[models.BidStatus][]models.BidStatus{
	models.PendingBid:      {models.QualifiedBid, models.ReviewedBid, models.DisqualifiedBid},
	models.QualifiedBid:    {models.ReviewedBid},
	models.ReviewedBid:     {models.ReviewedBid, models.ShortlistedBid, models.RejectedBid},
	models.ShortlistedBid:  {models.AwardedBid, models.RejectedBid},
	models.DisqualifiedBid: {},
	models.RejectedBid:     {},
	models.AwardedBid:      {},
}

func checkBidTransition(current, next models.BidStatus) error {
	if !utils.ContainsBidStatus(allowedBidTransition[current], next) {
		return models.NewInvalidTransition(string(current), string(next))
	}
	return nil
}

// SubmitBid создает новое предложение в статусе Pending. Поставщик подаёт
// только от своего имени, тендер должен быть Published, дедлайн не наступил.
// Одно живое предложение на пару (тендер, поставщик) гарантирует уникальное
// ограничение в хранилище: из двух одновременных подач пройдёт ровно одна.
func (s *BidService) SubmitBid(ctx context.Context, caller models.Caller, bidReq models.BidRequest) (*models.Bid, error) {
	if err := Authorize(caller, ActionSubmitBid, caller.ID); err != nil {
		return nil, err
	}
	if bidReq.TenderId == "" {
		return nil, models.NewValidationError("tenderId is required")
	}
	if !bidReq.Amount.IsPositive() {
		return nil, models.NewValidationError("amount must be positive")
	}

	tender, err := s.Tenders.GetTenderById(ctx, bidReq.TenderId)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, models.NewNotFound("tender not found")
		}
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to fetch tender")
	}
	if tender.Status != models.PublishedTender {
		return nil, models.NewValidationError("tender is not accepting bids")
	}
	if !time.Now().UTC().Before(tender.Deadline) {
		return nil, models.NewValidationError("tender deadline has passed")
	}

	bid, err := s.Bids.CreateBid(ctx, bidReq, caller.ID)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, models.NewConflict("vendor already has a bid on this tender")
		}
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to create bid")
	}
	s.Notifier.BidStatusChanged(bid.ID, bid.Status)
	return bid, nil
}

// QualifyBid отмечает, что предложение прошло входной контроль: Pending -> Qualified.
func (s *BidService) QualifyBid(ctx context.Context, caller models.Caller, bidId string) (*models.Bid, error) {
	bid, err := s.loadBidForReview(ctx, caller, bidId)
	if err != nil {
		return nil, err
	}
	if err := checkBidTransition(bid.Status, models.QualifiedBid); err != nil {
		return nil, err
	}
	bid.Status = models.QualifiedBid
	return s.saveBid(ctx, bid)
}

// RecordScore выставляет предложению балл оценки и переводит его в Reviewed.
// Повторная оценка уже оценённого (Reviewed) предложения разрешена -
// администратор может исправить балл.
func (s *BidService) RecordScore(ctx context.Context, caller models.Caller, bidId string, criterionScores map[string]int) (*models.Bid, error) {
	bid, err := s.loadBidForReview(ctx, caller, bidId)
	if err != nil {
		return nil, err
	}
	if err := checkBidTransition(bid.Status, models.ReviewedBid); err != nil {
		return nil, err
	}

	criteria, err := s.Criteria.GetTenderCriteria(ctx, bid.TenderId)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to fetch evaluation criteria")
	}
	total, err := ComputeScore(criteria, criterionScores)
	if err != nil {
		return nil, err
	}

	bid.Score = &total
	bid.Status = models.ReviewedBid
	return s.saveBid(ctx, bid)
}

// ShortlistBid переводит оценённое предложение в шорт-лист: Reviewed -> Shortlisted.
func (s *BidService) ShortlistBid(ctx context.Context, caller models.Caller, bidId string) (*models.Bid, error) {
	bid, err := s.loadBidForReview(ctx, caller, bidId)
	if err != nil {
		return nil, err
	}
	if err := checkBidTransition(bid.Status, models.ShortlistedBid); err != nil {
		return nil, err
	}
	bid.Status = models.ShortlistedBid
	return s.saveBid(ctx, bid)
}

// RejectBid отклоняет предложение с обязательной причиной,
// причина сохраняется в notes и видна поставщику.
func (s *BidService) RejectBid(ctx context.Context, caller models.Caller, bidId, reason string) (*models.Bid, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, models.NewValidationError("reason is required")
	}
	bid, err := s.loadBidForReview(ctx, caller, bidId)
	if err != nil {
		return nil, err
	}
	if err := checkBidTransition(bid.Status, models.RejectedBid); err != nil {
		return nil, err
	}
	bid.Status = models.RejectedBid
	bid.Notes = reason
	return s.saveBid(ctx, bid)
}

// DisqualifyBid снимает предложение за несоответствие требованиям, минуя
// оценку: Pending -> Disqualified. Причина обязательна.
func (s *BidService) DisqualifyBid(ctx context.Context, caller models.Caller, bidId, reason string) (*models.Bid, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, models.NewValidationError("reason is required")
	}
	bid, err := s.loadBidForReview(ctx, caller, bidId)
	if err != nil {
		return nil, err
	}
	if err := checkBidTransition(bid.Status, models.DisqualifiedBid); err != nil {
		return nil, err
	}
	bid.Status = models.DisqualifiedBid
	bid.Notes = reason
	return s.saveBid(ctx, bid)
}

// GetTenderBids возвращает список предложений по тендеру, операция администратора.
func (s *BidService) GetTenderBids(ctx context.Context, caller models.Caller, tenderId, limitStr, offsetStr string) ([]models.Bid, error) {
	if err := Authorize(caller, ActionReviewBid, ""); err != nil {
		return nil, err
	}
	limit, offset, err := utils.ParseLimitOffset(limitStr, offsetStr)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	bids, err := s.Bids.GetTenderBids(ctx, tenderId, limit, offset)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to fetch bids")
	}
	return bids, nil
}

// GetVendorBids возвращает список предложений самого вызывающего поставщика.
func (s *BidService) GetVendorBids(ctx context.Context, caller models.Caller, limitStr, offsetStr string) ([]models.Bid, error) {
	if err := Authorize(caller, ActionSubmitBid, caller.ID); err != nil {
		return nil, err
	}
	limit, offset, err := utils.ParseLimitOffset(limitStr, offsetStr)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	bids, err := s.Bids.GetVendorBids(ctx, caller.ID, limit, offset)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to fetch bids")
	}
	return bids, nil
}

// loadBidForReview перечитывает предложение непосредственно перед проверкой
// перехода. Авторизация выполняется до чтения, чтобы NotFound не раскрывал
// существование ресурса постороннему.
func (s *BidService) loadBidForReview(ctx context.Context, caller models.Caller, bidId string) (*models.Bid, error) {
	if err := Authorize(caller, ActionReviewBid, ""); err != nil {
		return nil, err
	}
	if bidId == "" {
		return nil, models.NewValidationError("bidId is required")
	}
	bid, err := s.Bids.GetBidById(ctx, bidId)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, models.NewNotFound("bid not found")
		}
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to fetch bid")
	}
	return bid, nil
}

func (s *BidService) saveBid(ctx context.Context, bid *models.Bid) (*models.Bid, error) {
	if err := s.Bids.UpdateBid(ctx, bid, bid.Version); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, models.NewConflict("bid was modified concurrently, reload and retry")
		}
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to update bid")
	}
	s.Notifier.BidStatusChanged(bid.ID, bid.Status)
	return bid, nil
}
