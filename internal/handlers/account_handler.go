package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/tenderhub/procurement-service/internal/models"
	"github.com/tenderhub/procurement-service/internal/services"
	"github.com/tenderhub/procurement-service/internal/utils"
)

// AccountHandler - структура для обработки HTTP-запросов регистрации.
type AccountHandler struct {
	Service *services.RegistrationService
	Logger  *log.Logger
	Timeout time.Duration
}

// NewAccountHandler создает новый экземпляр AccountHandler.
func NewAccountHandler(service *services.RegistrationService, logger *log.Logger, timeout time.Duration) *AccountHandler {
	return &AccountHandler{
		Service: service,
		Logger:  logger,
		Timeout: timeout,
	}
}

// Register обрабатывает запросы на регистрацию поставщика.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	var regReq models.RegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&regReq); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	account, err := h.Service.Register(ctx, regReq)
	if err != nil {
		if errorResponse, ok := err.(*models.ErrorResponse); ok {
			h.Logger.Println(err)
			utils.SendError(w, errorResponse)
			return
		}
		h.Logger.Println(err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "failed to register account")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err = json.NewEncoder(w).Encode(account); err != nil {
		h.Logger.Println(err)
	}
}

// EmailTaken обрабатывает проверку занятости email. Только подсказка
// для формы регистрации, не механизм корректности.
func (h *AccountHandler) EmailTaken(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	taken, err := h.Service.EmailTaken(ctx, r.URL.Query().Get("email"))
	if err != nil {
		if errorResponse, ok := err.(*models.ErrorResponse); ok {
			h.Logger.Println(err)
			utils.SendError(w, errorResponse)
			return
		}
		h.Logger.Println(err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "failed to check email")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(map[string]bool{"taken": taken}); err != nil {
		h.Logger.Println(err)
	}
}
