package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TenderStatus string // Статус тендера

const (
	DraftTender           TenderStatus = "Draft"           // Тендер создан, приём предложений ещё не открыт
	PublishedTender       TenderStatus = "Published"       // Тендер опубликован, открыт приём предложений
	UnderEvaluationTender TenderStatus = "UnderEvaluation" // Приём закрыт, идёт оценка предложений
	AwardedTender         TenderStatus = "Awarded"         // Победитель выбран, терминальный статус
	ClosedTender          TenderStatus = "Closed"          // Тендер закрыт без победителя, терминальный статус
)

// TerminalTenderStatus сообщает, является ли статус тендера терминальным.
func TerminalTenderStatus(s TenderStatus) bool {
	return s == AwardedTender || s == ClosedTender
}

// Tender представляет модель тендера.
type Tender struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Budget      decimal.Decimal `json:"budget"`
	Deadline    time.Time       `json:"deadline"`
	Status      TenderStatus    `json:"status"`
	CreatedBy   string          `json:"createdBy"`
	Version     int             `json:"version"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"-"`
}

// TenderRequest представляет структуру запроса для создания тендера.
type TenderRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Budget      decimal.Decimal `json:"budget"`
	Deadline    time.Time       `json:"deadline"`
}

// TenderUpdate представляет структуру запроса для редактирования тендера.
// Nil-поля остаются без изменений.
type TenderUpdate struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Category    *string          `json:"category"`
	Budget      *decimal.Decimal `json:"budget"`
	Deadline    *time.Time       `json:"deadline"`
}
