package utils

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/tenderhub/procurement-service/internal/models"
)

// SendError отправляет доменную ошибку в формате JSON,
// сохраняя вид ошибки и детали по полям.
func SendError(w http.ResponseWriter, errResp *models.ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(errResp.StatusCode)
	if err := json.NewEncoder(w).Encode(errResp); err != nil {
		log.Println(err)
	}
}

// SendErrorResponse отправляет ошибку с кодом и сообщением в формате JSON.
func SendErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	SendError(w, models.NewErrorResponse(statusCode, message))
}

// ParseLimitOffset обрабатывает limit и offset
func ParseLimitOffset(limitStr, offsetStr string) (int, int, error) {
	var limit, offset int
	var err error

	if limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit <= 0 || limit > 50 {
			return 0, 0, fmt.Errorf("invalid limit parameter, must be a positive integer [0:50]")
		}
	} else {
		limit = 5
	}

	if offsetStr != "" {
		offset, err = strconv.Atoi(offsetStr)
		if err != nil || offset < 0 {
			return 0, 0, fmt.Errorf("invalid offset parameter, must be a non-negative integer")
		}
	} else {
		offset = 0
	}

	return limit, offset, nil
}

// ContainsTenderStatus - функция для проверки перехода у тендеров
func ContainsTenderStatus(validTransitions []models.TenderStatus, newStatus models.TenderStatus) bool {
	for _, validStatus := range validTransitions {
		if validStatus == newStatus {
			return true
		}
	}
	return false
}

// ContainsBidStatus - функция для проверки перехода у предложений
func ContainsBidStatus(validStatuses []models.BidStatus, newStatus models.BidStatus) bool {
	for _, validStatus := range validStatuses {
		if validStatus == newStatus {
			return true
		}
	}
	return false
}
