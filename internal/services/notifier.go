package services

import (
	"log"

	"github.com/tenderhub/procurement-service/internal/models"
)

// Notifier отправляет события об изменениях в режиме "fire-and-forget".
// Доставка не влияет на результат операции, которая её вызвала:
// методы ничего не возвращают и не могут откатить переход.
type Notifier struct {
	logger *log.Logger
}

// NewNotifier создает новый экземпляр Notifier.
func NewNotifier(logger *log.Logger) *Notifier {
	return &Notifier{logger: logger}
}

// AccountCreated публикует событие о создании учётной записи.
func (n *Notifier) AccountCreated(account *models.Account) {
	if n == nil || n.logger == nil {
		return
	}
	n.logger.Printf("event: account %s created", account.ID)
}

// BidStatusChanged публикует событие об изменении статуса предложения.
func (n *Notifier) BidStatusChanged(bidId string, status models.BidStatus) {
	if n == nil || n.logger == nil {
		return
	}
	n.logger.Printf("event: bid %s status changed to %s", bidId, status)
}

// TenderStatusChanged публикует событие об изменении статуса тендера.
func (n *Notifier) TenderStatusChanged(tenderId string, status models.TenderStatus) {
	if n == nil || n.logger == nil {
		return
	}
	n.logger.Printf("event: tender %s status changed to %s", tenderId, status)
}
