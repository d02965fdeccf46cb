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

// TenderHandler - структура для обработки HTTP-запросов к тендерам.
type TenderHandler struct {
	Service  *services.TenderService
	Award    *services.AwardService
	Identity *services.IdentityService
	Logger   *log.Logger
	Timeout  time.Duration
}

// NewTenderHandler создаёт новый экземпляр TenderHandler.
func NewTenderHandler(service *services.TenderService, award *services.AwardService, identity *services.IdentityService, logger *log.Logger, timeout time.Duration) *TenderHandler {
	return &TenderHandler{
		Service:  service,
		Award:    award,
		Identity: identity,
		Logger:   logger,
		Timeout:  timeout,
	}
}

// GetTenders обрабатывает запросы для получения списка тендеров.
func (h *TenderHandler) GetTenders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	limitStr := r.URL.Query().Get("limit")
	offsetStr := r.URL.Query().Get("offset")
	statuses := r.URL.Query()["status"]

	limit, offset, err := utils.ParseLimitOffset(limitStr, offsetStr)
	if err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	tenders, err := h.Service.FetchTenders(ctx, limit, offset, statuses)
	if err != nil {
		if errorResponse, ok := err.(*models.ErrorResponse); ok {
			h.Logger.Println(err)
			utils.SendError(w, errorResponse)
			return
		}
		h.Logger.Println(err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "failed to fetch tenders")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(tenders); err != nil {
		h.Logger.Println(err)
	}
}

// GetTender обрабатывает запросы для получения тендера по ID.
func (h *TenderHandler) GetTender(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	tender, err := h.Service.GetTender(ctx, r.PathValue("tenderId"))
	if err != nil {
		if errorResponse, ok := err.(*models.ErrorResponse); ok {
			h.Logger.Println(err)
			utils.SendError(w, errorResponse)
			return
		}
		h.Logger.Println(err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "failed to fetch tender")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(tender); err != nil {
		h.Logger.Println(err)
	}
}

// CreateTender обрабатывает запросы для создания тендера.
func (h *TenderHandler) CreateTender(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	caller, err := callerFromRequest(ctx, h.Identity, r)
	if err != nil {
		if errorResponse, ok := err.(*models.ErrorResponse); ok {
			h.Logger.Println(err)
			utils.SendError(w, errorResponse)
			return
		}
		h.Logger.Println(err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "failed to resolve caller")
		return
	}

	var tenderReq models.TenderRequest
	if err := json.NewDecoder(r.Body).Decode(&tenderReq); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tender, err := h.Service.CreateTender(ctx, caller, tenderReq)
	if err != nil {
		if errorResponse, ok := err.(*models.ErrorResponse); ok {
			h.Logger.Println(err)
			utils.SendError(w, errorResponse)
			return
		}
		h.Logger.Println(err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "failed to create tender")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(tender); err != nil {
		h.Logger.Println(err)
	}
}

// EditTender обрабатывает запросы для редактирования тендера.
func (h *TenderHandler) EditTender(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	caller, err := callerFromRequest(ctx, h.Identity, r)
	if err != nil {
		if errorResponse, ok := err.(*models.ErrorResponse); ok {
			h.Logger.Println(err)
			utils.SendError(w, errorResponse)
			return
		}
		h.Logger.Println(err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "failed to resolve caller")
		return
	}

	var upd models.TenderUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tender, err := h.Service.EditTender(ctx, caller, r.PathValue("tenderId"), upd)
	if err != nil {
		if errorResponse, ok := err.(*models.ErrorResponse); ok {
			h.Logger.Println(err)
			utils.SendError(w, errorResponse)
			return
		}
		h.Logger.Println(err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "failed to edit tender")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(tender); err != nil {
		h.Logger.Println(err)
	}
}

// PublishTender обрабатывает запросы для публикации тендера.
func (h *TenderHandler) PublishTender(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(ctx context.Context, caller models.Caller, tenderId string) (*models.Tender, error) {
		return h.Service.PublishTender(ctx, caller, tenderId)
	})
}

// BeginEvaluation обрабатывает запросы для перевода тендера в оценку.
func (h *TenderHandler) BeginEvaluation(w http.ResponseWriter, r *http.Request) {
	override := r.URL.Query().Get("override") == "true"
	h.transition(w, r, func(ctx context.Context, caller models.Caller, tenderId string) (*models.Tender, error) {
		return h.Service.BeginEvaluation(ctx, caller, tenderId, override)
	})
}

// WithdrawTender обрабатывает запросы для отзыва тендера.
func (h *TenderHandler) WithdrawTender(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(ctx context.Context, caller models.Caller, tenderId string) (*models.Tender, error) {
		return h.Service.WithdrawTender(ctx, caller, tenderId)
	})
}

// CloseTender обрабатывает запросы для закрытия тендера без победителя.
func (h *TenderHandler) CloseTender(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(ctx context.Context, caller models.Caller, tenderId string) (*models.Tender, error) {
		return h.Service.CloseWithoutAward(ctx, caller, tenderId)
	})
}

// AwardTender обрабатывает запросы для выбора победителя тендера.
func (h *TenderHandler) AwardTender(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	caller, err := callerFromRequest(ctx, h.Identity, r)
	if err != nil {
		if errorResponse, ok := err.(*models.ErrorResponse); ok {
			h.Logger.Println(err)
			utils.SendError(w, errorResponse)
			return
		}
		h.Logger.Println(err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "failed to resolve caller")
		return
	}

	var awardReq struct {
		BidId string `json:"bidId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&awardReq); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tender, err := h.Award.Award(ctx, caller, r.PathValue("tenderId"), awardReq.BidId)
	if err != nil {
		if errorResponse, ok := err.(*models.ErrorResponse); ok {
			h.Logger.Println(err)
			utils.SendError(w, errorResponse)
			return
		}
		h.Logger.Println(err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "failed to award tender")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(tender); err != nil {
		h.Logger.Println(err)
	}
}

// transition - общий код обработки переходов статуса тендера.
func (h *TenderHandler) transition(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, caller models.Caller, tenderId string) (*models.Tender, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), h.Timeout)
	defer cancel()

	caller, err := callerFromRequest(ctx, h.Identity, r)
	if err != nil {
		if errorResponse, ok := err.(*models.ErrorResponse); ok {
			h.Logger.Println(err)
			utils.SendError(w, errorResponse)
			return
		}
		h.Logger.Println(err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "failed to resolve caller")
		return
	}

	tender, err := op(ctx, caller, r.PathValue("tenderId"))
	if err != nil {
		if errorResponse, ok := err.(*models.ErrorResponse); ok {
			h.Logger.Println(err)
			utils.SendError(w, errorResponse)
			return
		}
		h.Logger.Println(err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "failed to update tender status")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(tender); err != nil {
		h.Logger.Println(err)
	}
}
