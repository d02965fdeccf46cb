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

// BidHandler - структура для обработки HTTP-запросов к предложениям.
type BidHandler struct {
	Service  *services.BidService
	Identity *services.IdentityService
	Logger   *log.Logger
	Timeout  time.Duration
}

// NewBidHandler создает новый экземпляр BidHandler.
func NewBidHandler(service *services.BidService, identity *services.IdentityService, logger *log.Logger, timeout time.Duration) *BidHandler {
	return &BidHandler{
		Service:  service,
		Identity: identity,
		Logger:   logger,
		Timeout:  timeout,
	}
}

// CreateBid обрабатывает запросы для подачи предложения.
func (h *BidHandler) CreateBid(w http.ResponseWriter, r *http.Request) {
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

	var bidReq models.BidRequest
	if err := json.NewDecoder(r.Body).Decode(&bidReq); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	newBid, err := h.Service.SubmitBid(ctx, caller, bidReq)
	if err != nil {
		if errorResponse, ok := err.(*models.ErrorResponse); ok {
			h.Logger.Println(err)
			utils.SendError(w, errorResponse)
			return
		}
		h.Logger.Println(err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "failed to create bid")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(newBid); err != nil {
		h.Logger.Println(err)
	}
}

// GetUserBids обрабатывает запросы для получения предложений вызывающего поставщика.
func (h *BidHandler) GetUserBids(w http.ResponseWriter, r *http.Request) {
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

	bids, err := h.Service.GetVendorBids(ctx, caller, r.URL.Query().Get("limit"), r.URL.Query().Get("offset"))
	if err != nil {
		if errorResponse, ok := err.(*models.ErrorResponse); ok {
			h.Logger.Println(err)
			utils.SendError(w, errorResponse)
			return
		}
		h.Logger.Println(err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "failed to fetch bids")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(bids); err != nil {
		h.Logger.Println(err)
	}
}

// GetTenderBids обрабатывает запросы для получения предложений по тендеру.
func (h *BidHandler) GetTenderBids(w http.ResponseWriter, r *http.Request) {
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

	bids, err := h.Service.GetTenderBids(ctx, caller, r.PathValue("tenderId"), r.URL.Query().Get("limit"), r.URL.Query().Get("offset"))
	if err != nil {
		if errorResponse, ok := err.(*models.ErrorResponse); ok {
			h.Logger.Println(err)
			utils.SendError(w, errorResponse)
			return
		}
		h.Logger.Println(err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "failed to fetch bids")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(bids); err != nil {
		h.Logger.Println(err)
	}
}

// QualifyBid обрабатывает запросы для отметки входного контроля предложения.
func (h *BidHandler) QualifyBid(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(ctx context.Context, caller models.Caller, bidId string) (*models.Bid, error) {
		return h.Service.QualifyBid(ctx, caller, bidId)
	})
}

// ScoreBid обрабатывает запросы для оценки предложения.
func (h *BidHandler) ScoreBid(w http.ResponseWriter, r *http.Request) {
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

	var scoreReq models.ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&scoreReq); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	bid, err := h.Service.RecordScore(ctx, caller, r.PathValue("bidId"), scoreReq.CriterionScores)
	if err != nil {
		if errorResponse, ok := err.(*models.ErrorResponse); ok {
			h.Logger.Println(err)
			utils.SendError(w, errorResponse)
			return
		}
		h.Logger.Println(err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "failed to score bid")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(bid); err != nil {
		h.Logger.Println(err)
	}
}

// ShortlistBid обрабатывает запросы для включения предложения в шорт-лист.
func (h *BidHandler) ShortlistBid(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(ctx context.Context, caller models.Caller, bidId string) (*models.Bid, error) {
		return h.Service.ShortlistBid(ctx, caller, bidId)
	})
}

// RejectBid обрабатывает запросы для отклонения предложения.
func (h *BidHandler) RejectBid(w http.ResponseWriter, r *http.Request) {
	h.transitionWithReason(w, r, func(ctx context.Context, caller models.Caller, bidId, reason string) (*models.Bid, error) {
		return h.Service.RejectBid(ctx, caller, bidId, reason)
	})
}

// DisqualifyBid обрабатывает запросы для снятия предложения за несоответствие.
func (h *BidHandler) DisqualifyBid(w http.ResponseWriter, r *http.Request) {
	h.transitionWithReason(w, r, func(ctx context.Context, caller models.Caller, bidId, reason string) (*models.Bid, error) {
		return h.Service.DisqualifyBid(ctx, caller, bidId, reason)
	})
}

// transition - общий код обработки переходов статуса предложения.
func (h *BidHandler) transition(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, caller models.Caller, bidId string) (*models.Bid, error)) {
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

	bid, err := op(ctx, caller, r.PathValue("bidId"))
	if err != nil {
		if errorResponse, ok := err.(*models.ErrorResponse); ok {
			h.Logger.Println(err)
			utils.SendError(w, errorResponse)
			return
		}
		h.Logger.Println(err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "failed to update bid status")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(bid); err != nil {
		h.Logger.Println(err)
	}
}

// transitionWithReason - общий код переходов, требующих причину в теле запроса.
func (h *BidHandler) transitionWithReason(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, caller models.Caller, bidId, reason string) (*models.Bid, error)) {
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

	var reasonReq models.ReasonRequest
	if err := json.NewDecoder(r.Body).Decode(&reasonReq); err != nil {
		utils.SendErrorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	bid, err := op(ctx, caller, r.PathValue("bidId"), reasonReq.Reason)
	if err != nil {
		if errorResponse, ok := err.(*models.ErrorResponse); ok {
			h.Logger.Println(err)
			utils.SendError(w, errorResponse)
			return
		}
		h.Logger.Println(err)
		utils.SendErrorResponse(w, http.StatusInternalServerError, "failed to update bid status")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err = json.NewEncoder(w).Encode(bid); err != nil {
		h.Logger.Println(err)
	}
}
