package utils

import (
	"log"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
)

// OrderEvent is the payload posted to the order-events webhook whenever an
// order changes status.
type OrderEvent struct {
	OrderNumber string    `json:"orderNumber"`
	Status      string    `json:"status"`
	Actor       string    `json:"actor"`
	Note        string    `json:"note"`
	Timestamp   time.Time `json:"timestamp"`
}

// PublishOrderEvent delivers the event to ORDER_EVENTS_WEBHOOK_URL.
// Delivery is best effort: the order is already committed, so failures are
// logged and swallowed.
func PublishOrderEvent(event OrderEvent) {
	webhookURL := os.Getenv("ORDER_EVENTS_WEBHOOK_URL")
	if webhookURL == "" {
		return
	}

	resp, err := resty.New().
		SetTimeout(5 * time.Second).
		R().
		SetHeader("Content-Type", "application/json").
		SetBody(event).
		Post(webhookURL)

	if err != nil {
		log.Printf("Order event webhook error for %s: %v", event.OrderNumber, err)
		return
	}
	if resp.StatusCode() >= 300 {
		log.Printf("Order event webhook for %s returned status %d", event.OrderNumber, resp.StatusCode())
	}
}
