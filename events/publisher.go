package events

import (
	"encoding/json"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"soa/tours-service/models"
)

const checkoutSubject = "purchase_publish"

// UpdateBalanceEvent is the payload the stakeholders service consumes on
// purchase_publish to charge the tourist's balance.
type UpdateBalanceEvent struct {
	EventID    string    `json:"eventId"`
	UserID     string    `json:"userId"`
	Amount     float64   `json:"amount"`
	Command    string    `json:"command"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Publisher pushes checkout notifications over NATS. Best-effort: failures
// are logged and never fail the checkout.
type Publisher struct {
	conn *nats.Conn
}

func NewPublisher(conn *nats.Conn) *Publisher {
	return &Publisher{conn: conn}
}

func (p *Publisher) CheckoutCompleted(touristID int64, tokens []models.TourPurchaseToken) {
	var total float64
	for _, token := range tokens {
		total += token.PricePaid
	}

	event := UpdateBalanceEvent{
		EventID:    uuid.NewString(),
		UserID:     strconv.FormatInt(touristID, 10),
		Amount:     total,
		Command:    "SUBTRACT",
		OccurredAt: time.Now().UTC(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal checkout event: %v", err)
		return
	}

	if err := p.conn.Publish(checkoutSubject, data); err != nil {
		log.Printf("Failed to publish checkout event for user %d: %v", touristID, err)
	}
}
