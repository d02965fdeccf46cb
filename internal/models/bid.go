package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type BidStatus string // Статус предложения

const (
	PendingBid      BidStatus = "Pending"      // Предложение подано, ожидает рассмотрения
	QualifiedBid    BidStatus = "Qualified"    // Предложение прошло входной контроль
	ReviewedBid     BidStatus = "Reviewed"     // Предложение оценено, выставлен балл
	DisqualifiedBid BidStatus = "Disqualified" // Предложение снято за несоответствие, терминальный статус
	ShortlistedBid  BidStatus = "Shortlisted"  // Предложение в шорт-листе финалистов
	RejectedBid     BidStatus = "Rejected"     // Предложение отклонено, терминальный статус
	AwardedBid      BidStatus = "Awarded"      // Предложение выбрано победителем, терминальный статус
)

// TerminalBidStatus сообщает, является ли статус предложения терминальным.
func TerminalBidStatus(s BidStatus) bool {
	return s == RejectedBid || s == DisqualifiedBid || s == AwardedBid
}

// NonTerminalBidStatuses возвращает список живых статусов предложения.
func NonTerminalBidStatuses() []string {
	return []string{string(PendingBid), string(QualifiedBid), string(ReviewedBid), string(ShortlistedBid)}
}

// ScoredBidStatus сообщает, допускает ли статус наличие балла оценки.
func ScoredBidStatus(s BidStatus) bool {
	switch s {
	case ReviewedBid, ShortlistedBid, RejectedBid, AwardedBid:
		return true
	default:
		return false
	}
}

// Bid представляет модель предложения.
type Bid struct {
	ID          string          `json:"id"`
	TenderId    string          `json:"tenderId"`
	VendorId    string          `json:"vendorId"`
	Amount      decimal.Decimal `json:"amount"`
	Status      BidStatus       `json:"status"`
	Score       *int            `json:"score,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	Version     int             `json:"version"`
	SubmittedAt time.Time       `json:"submittedAt"`
	UpdatedAt   time.Time       `json:"-"`
}

// BidRequest представляет структуру запроса для подачи предложения.
type BidRequest struct {
	TenderId string          `json:"tenderId"`
	Amount   decimal.Decimal `json:"amount"`
}

// ScoreRequest представляет структуру запроса для оценки предложения.
// Ключ - идентификатор критерия, значение - набранные баллы.
type ScoreRequest struct {
	CriterionScores map[string]int `json:"criterionScores"`
}

// ReasonRequest представляет структуру запроса для отклонения или снятия предложения.
type ReasonRequest struct {
	Reason string `json:"reason"`
}
