package services

import (
	"context"
	"errors"
	"net/http"

	"github.com/tenderhub/procurement-service/internal/models"
	"github.com/tenderhub/procurement-service/internal/repository"
)

type Action string // Операция жизненного цикла, требующая проверки прав

const (
	ActionCreateTender     Action = "tender.create"
	ActionEditTender       Action = "tender.edit"
	ActionTransitionTender Action = "tender.transition"
	ActionAwardTender      Action = "tender.award"
	ActionSubmitBid        Action = "bid.submit"
	ActionReviewBid        Action = "bid.review"
)

// Минимальная роль для каждой операции.
var actionRoles = map[Action]models.Role{
	ActionCreateTender:     models.AdminRole,
	ActionEditTender:       models.AdminRole,
	ActionTransitionTender: models.AdminRole,
	ActionAwardTender:      models.AdminRole,
	ActionSubmitBid:        models.SupplierRole,
	ActionReviewBid:        models.AdminRole,
}

// Authorize - чистая проверка политики доступа без побочных эффектов.
// Отказ всегда один и тот же, чтобы по нему нельзя было понять,
// существует ли целевой ресурс.
func Authorize(caller models.Caller, action Action, resourceOwnerId string) error {
	required, ok := actionRoles[action]
	if !ok || caller.Role != required {
		return models.NewAuthorizationError()
	}
	if action == ActionSubmitBid && resourceOwnerId != "" && caller.ID != resourceOwnerId {
		return models.NewAuthorizationError()
	}
	return nil
}

// IdentityService разрешает вызывающего пользователя в пару (id, роль).
type IdentityService struct {
	Accounts repository.AccountRepository
}

// NewIdentityService создает новый экземпляр IdentityService.
func NewIdentityService(accounts repository.AccountRepository) *IdentityService {
	return &IdentityService{Accounts: accounts}
}

// ResolveCaller возвращает вызывающего по его идентификатору.
// Неизвестный или пустой идентификатор дает общий отказ авторизации.
func (s *IdentityService) ResolveCaller(ctx context.Context, userId string) (models.Caller, error) {
	if userId == "" {
		return models.Caller{}, models.NewAuthorizationError()
	}
	account, err := s.Accounts.GetAccountById(ctx, userId)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Caller{}, models.NewAuthorizationError()
		}
		return models.Caller{}, models.NewErrorResponse(http.StatusInternalServerError, "failed to resolve caller")
	}
	return models.Caller{ID: account.ID, Role: account.Role}, nil
}
