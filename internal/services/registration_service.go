package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tenderhub/procurement-service/internal/models"
	"github.com/tenderhub/procurement-service/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

// RegistrationService регистрирует поставщиков.
type RegistrationService struct {
	Accounts repository.AccountRepository
	Notifier *Notifier
}

// NewRegistrationService создает новый экземпляр RegistrationService.
func NewRegistrationService(accounts repository.AccountRepository, notifier *Notifier) *RegistrationService {
	return &RegistrationService{Accounts: accounts, Notifier: notifier}
}

// Register создает учётную запись поставщика. Валидация выполняется до
// любого обращения к хранилищу; уникальность email гарантирует сама вставка,
// поэтому из двух одновременных регистраций одного email ровно одна получит
// ответ "учётная запись уже существует". Роль всегда supplier - администраторы
// через этот путь не создаются.
func (s *RegistrationService) Register(ctx context.Context, req models.RegistrationRequest) (*models.Account, error) {
	if fields := validateRegistration(req); len(fields) > 0 {
		return nil, models.NewFieldValidationError(fields)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to hash credential")
	}

	account := &models.Account{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
		CompanyName:  req.CompanyName,
		Categories:   req.Categories,
		Role:         models.SupplierRole,
	}
	if err := s.Accounts.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, models.NewConflict(fmt.Sprintf("account with email %s already exists, log in instead", account.Email))
		}
		return nil, models.NewErrorResponse(http.StatusInternalServerError, "failed to create account")
	}

	s.Notifier.AccountCreated(account)
	return account, nil
}

// EmailTaken проверяет занятость email. Только подсказка для формы
// регистрации, не гарантия: решающая проверка происходит при вставке.
func (s *RegistrationService) EmailTaken(ctx context.Context, email string) (bool, error) {
	if strings.TrimSpace(email) == "" {
		return false, models.NewValidationError("email is required")
	}
	taken, err := s.Accounts.EmailExists(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return false, models.NewErrorResponse(http.StatusInternalServerError, "failed to check email")
	}
	return taken, nil
}

// validateRegistration возвращает сообщение по каждому некорректному полю.
func validateRegistration(req models.RegistrationRequest) map[string]string {
	fields := make(map[string]string)
	email := strings.TrimSpace(req.Email)
	if email == "" {
		fields["email"] = "email is required"
	} else if !strings.Contains(email, "@") {
		fields["email"] = "email is invalid"
	}
	if req.Password == "" {
		fields["password"] = "password is required"
	} else if len(req.Password) < minPasswordLength {
		fields["password"] = fmt.Sprintf("password must be at least %d characters", minPasswordLength)
	}
	if req.PasswordConfirm != req.Password {
		fields["passwordConfirm"] = "passwords do not match"
	}
	if strings.TrimSpace(req.CompanyName) == "" {
		fields["companyName"] = "company name is required"
	}
	if len(req.Categories) == 0 {
		fields["categories"] = "select at least one category of interest"
	}
	if !req.TermsAccepted {
		fields["termsAccepted"] = "terms must be accepted"
	}
	return fields
}
