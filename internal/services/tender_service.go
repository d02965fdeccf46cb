package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/tenderhub/procurement-service/internal/models"
	"github.com/tenderhub/procurement-service/internal/repository"
	"github.com/tenderhub/procurement-service/internal/utils"
)

// TenderService - машина состояний тендера. Каждый переход - отдельная
// операция со своими предусловиями, generic "setStatus" намеренно отсутствует.
type TenderService struct {
	Tenders  repository.TenderRepository
	Bids     repository.BidRepository
	Notifier *Notifier
}

// NewTenderService создаёт новый экземпляр TenderService.
func NewTenderService(tenders repository.TenderRepository, bids repository.BidRepository, notifier *Notifier) *TenderService {
	return &TenderService{Tenders: tenders, Bids: bids, Notifier: notifier}
}

// Допустимые переходы статусов тендера. Из Awarded и Closed переходов нет.
var allowedTenderTransition = map[models.TenderStatus][]models.TenderStatus{
	models.DraftTender:           {models.PublishedTender},
	models.PublishedTender:       {models.UnderEvaluationTender, models.ClosedTender},
	models.UnderEvaluationTender: {models.AwardedTender, models.ClosedTender},
	models.AwardedTender:         {},
	models.ClosedTender:          {},
}

func checkTenderTransition(current, next models.TenderStatus) error {
	if !utils.ContainsTenderStatus(allowedTenderTransition[current], next) {
		return models.NewInvalidTransition(string(current), string(next))
	}
	return nil
}

// CreateTender создает новый тендер в статусе Draft.
func (s *TenderService) CreateTender(ctx context.Context, caller models.Caller, tenderReq models.TenderRequest) (*models.Tender, error) {
	if err := Authorize(caller, ActionCreateTender, ""); err != nil {
		return nil, err
	}
	if tenderReq.Title == "" || tenderReq.Description == "" || tenderReq.Category == "" {
		return nil, models.NewValidationError("title, description and category are required")
	}
	if !tenderReq.Budget.IsPositive() {
		return nil, models.NewValidationError("budget must be positive")
	}
	if !tenderReq.Deadline.After(time.Now().UTC()) {
		return nil, models.NewValidationError("deadline must be in the future")
	}

	tender, err := s.Tenders.CreateTender(ctx, tenderReq, caller.ID)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to create tender")
	}
	s.Notifier.TenderStatusChanged(tender.ID, tender.Status)
	return tender, nil
}

// FetchTenders получает список тендеров с фильтром по статусам.
func (s *TenderService) FetchTenders(ctx context.Context, limit, offset int, statuses []string) ([]models.Tender, error) {
	allowedStatuses := map[models.TenderStatus]bool{
		models.DraftTender:           true,
		models.PublishedTender:       true,
		models.UnderEvaluationTender: true,
		models.AwardedTender:         true,
		models.ClosedTender:          true,
	}
	for _, status := range statuses {
		if !allowedStatuses[models.TenderStatus(status)] {
			return nil, models.NewValidationError("unsupported status: " + status)
		}
	}
	tenders, err := s.Tenders.GetTenders(ctx, limit, offset, statuses)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to fetch tenders")
	}
	return tenders, nil
}

// GetTender получает тендер по ID.
func (s *TenderService) GetTender(ctx context.Context, tenderId string) (*models.Tender, error) {
	tender, err := s.Tenders.GetTenderById(ctx, tenderId)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, models.NewNotFound("tender not found")
		}
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to fetch tender")
	}
	return tender, nil
}

// EditTender меняет поля тендера с учётом правил редактирования:
// название, описание и категория - только в Draft; бюджет - только в Draft
// и только пока нет ни одного предложения; дедлайн - в Draft и Published,
// строго в будущем.
func (s *TenderService) EditTender(ctx context.Context, caller models.Caller, tenderId string, upd models.TenderUpdate) (*models.Tender, error) {
	if err := Authorize(caller, ActionEditTender, ""); err != nil {
		return nil, err
	}

	tender, err := s.loadTender(ctx, tenderId)
	if err != nil {
		return nil, err
	}

	if upd.Title != nil || upd.Description != nil || upd.Category != nil {
		if tender.Status != models.DraftTender {
			return nil, models.NewInvalidEdit("title/description/category", string(tender.Status))
		}
	}
	if upd.Title != nil {
		if *upd.Title == "" {
			return nil, models.NewValidationError("title must not be empty")
		}
		tender.Title = *upd.Title
	}
	if upd.Description != nil {
		tender.Description = *upd.Description
	}
	if upd.Category != nil {
		if *upd.Category == "" {
			return nil, models.NewValidationError("category must not be empty")
		}
		tender.Category = *upd.Category
	}
	if upd.Budget != nil {
		if tender.Status != models.DraftTender {
			return nil, models.NewInvalidEdit("budget", string(tender.Status))
		}
		bidCount, err := s.Bids.CountTenderBids(ctx, tenderId)
		if err != nil {
			return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to count bids")
		}
		if bidCount > 0 {
			return nil, models.NewInvalidEdit("budget", "a tender with existing bids")
		}
		if !upd.Budget.IsPositive() {
			return nil, models.NewValidationError("budget must be positive")
		}
		tender.Budget = *upd.Budget
	}
	if upd.Deadline != nil {
		if tender.Status != models.DraftTender && tender.Status != models.PublishedTender {
			return nil, models.NewInvalidEdit("deadline", string(tender.Status))
		}
		if !upd.Deadline.After(time.Now().UTC()) {
			return nil, models.NewValidationError("deadline must be in the future")
		}
		tender.Deadline = *upd.Deadline
	}

	if err := s.saveTender(ctx, tender); err != nil {
		return nil, err
	}
	return tender, nil
}

// PublishTender переводит тендер Draft -> Published и открывает приём предложений.
func (s *TenderService) PublishTender(ctx context.Context, caller models.Caller, tenderId string) (*models.Tender, error) {
	if err := Authorize(caller, ActionTransitionTender, ""); err != nil {
		return nil, err
	}
	tender, err := s.loadTender(ctx, tenderId)
	if err != nil {
		return nil, err
	}
	if err := checkTenderTransition(tender.Status, models.PublishedTender); err != nil {
		return nil, err
	}
	if !tender.Deadline.After(time.Now().UTC()) {
		return nil, models.NewInvalidTransitionReason(string(tender.Status), string(models.PublishedTender), "deadline must be in the future")
	}
	if !tender.Budget.IsPositive() {
		return nil, models.NewInvalidTransitionReason(string(tender.Status), string(models.PublishedTender), "budget must be positive")
	}
	if tender.Title == "" || tender.Description == "" || tender.Category == "" {
		return nil, models.NewInvalidTransitionReason(string(tender.Status), string(models.PublishedTender), "required fields are missing")
	}

	tender.Status = models.PublishedTender
	if err := s.saveTender(ctx, tender); err != nil {
		return nil, err
	}
	s.Notifier.TenderStatusChanged(tender.ID, tender.Status)
	return tender, nil
}

// BeginEvaluation переводит тендер Published -> UnderEvaluation.
// До наступления дедлайна переход возможен только с явным override.
func (s *TenderService) BeginEvaluation(ctx context.Context, caller models.Caller, tenderId string, override bool) (*models.Tender, error) {
	if err := Authorize(caller, ActionTransitionTender, ""); err != nil {
		return nil, err
	}
	tender, err := s.loadTender(ctx, tenderId)
	if err != nil {
		return nil, err
	}
	if err := checkTenderTransition(tender.Status, models.UnderEvaluationTender); err != nil {
		return nil, err
	}
	if !override && time.Now().UTC().Before(tender.Deadline) {
		return nil, models.NewInvalidTransitionReason(string(tender.Status), string(models.UnderEvaluationTender), "deadline has not passed and no override was given")
	}

	tender.Status = models.UnderEvaluationTender
	if err := s.saveTender(ctx, tender); err != nil {
		return nil, err
	}
	s.Notifier.TenderStatusChanged(tender.ID, tender.Status)
	return tender, nil
}

// WithdrawTender переводит тендер Published -> Closed до дедлайна,
// отклоняя все живые предложения в той же транзакции.
func (s *TenderService) WithdrawTender(ctx context.Context, caller models.Caller, tenderId string) (*models.Tender, error) {
	if err := Authorize(caller, ActionTransitionTender, ""); err != nil {
		return nil, err
	}
	tender, err := s.loadTender(ctx, tenderId)
	if err != nil {
		return nil, err
	}
	// Отзыв определён только для Published; закрытие из UnderEvaluation
	// выполняет CloseWithoutAward.
	if tender.Status != models.PublishedTender {
		return nil, models.NewInvalidTransition(string(tender.Status), string(models.ClosedTender))
	}
	if !time.Now().UTC().Before(tender.Deadline) {
		return nil, models.NewInvalidTransitionReason(string(tender.Status), string(models.ClosedTender), "deadline has passed, begin evaluation instead")
	}

	updated, err := s.Tenders.CloseTenderTx(ctx, tenderId, tender.Status, models.ClosedTender, "tender withdrawn by the organizer", tender.Version)
	if err != nil {
		return nil, mapTenderWriteError(err)
	}
	s.Notifier.TenderStatusChanged(updated.ID, updated.Status)
	return updated, nil
}

// CloseWithoutAward переводит тендер UnderEvaluation -> Closed,
// отклоняя все живые предложения в той же транзакции.
func (s *TenderService) CloseWithoutAward(ctx context.Context, caller models.Caller, tenderId string) (*models.Tender, error) {
	if err := Authorize(caller, ActionTransitionTender, ""); err != nil {
		return nil, err
	}
	tender, err := s.loadTender(ctx, tenderId)
	if err != nil {
		return nil, err
	}
	if tender.Status != models.UnderEvaluationTender {
		return nil, models.NewInvalidTransition(string(tender.Status), string(models.ClosedTender))
	}

	updated, err := s.Tenders.CloseTenderTx(ctx, tenderId, tender.Status, models.ClosedTender, "tender closed without award", tender.Version)
	if err != nil {
		return nil, mapTenderWriteError(err)
	}
	s.Notifier.TenderStatusChanged(updated.ID, updated.Status)
	return updated, nil
}

// loadTender перечитывает текущее состояние тендера непосредственно перед
// проверкой перехода, кэширование между запросами не допускается.
func (s *TenderService) loadTender(ctx context.Context, tenderId string) (*models.Tender, error) {
	if tenderId == "" {
		return nil, models.NewValidationError("tenderId is required")
	}
	tender, err := s.Tenders.GetTenderById(ctx, tenderId)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, models.NewNotFound("tender not found")
		}
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to fetch tender")
	}
	return tender, nil
}

func (s *TenderService) saveTender(ctx context.Context, tender *models.Tender) error {
	if err := s.Tenders.UpdateTender(ctx, tender, tender.Version); err != nil {
		return mapTenderWriteError(err)
	}
	return nil
}

func mapTenderWriteError(err error) error {
	if errors.Is(err, repository.ErrVersionConflict) {
		return models.NewConflict("tender was modified concurrently, reload and retry")
	}
	return models.NewErrorResponse(http.StatusInternalServerError, "failed to update tender")
}
