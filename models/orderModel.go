package models

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type OrderStatus string

type PaymentStatus string

type Actor string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusReturned   OrderStatus = "returned"

	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"

	ActorSystem   Actor = "system"
	ActorCustomer Actor = "customer"
	ActorAdmin    Actor = "admin"
)

// Pricing rules applied once at checkout. Totals are never recomputed
// after the order row is written.
const (
	FreeShippingThreshold = 50.0
	FlatShippingFee       = 10.0
	TaxRate               = 0.08
)

var PaymentMethods = []string{"card", "paypal", "bank_transfer", "cash_on_delivery"}

type Address struct {
	Name    string `json:"name" binding:"required"`
	Street  string `json:"street" binding:"required"`
	City    string `json:"city" binding:"required"`
	State   string `json:"state" binding:"required"`
	Zip     string `json:"zip" binding:"required"`
	Country string `json:"country" binding:"required"`
	Phone   string `json:"phone"`
}

// TimelineEntry is one event in an order's history. Entries are only ever
// appended; the timeline is the audit trail for the order.
type TimelineEntry struct {
	ID        string      `json:"id"`
	Status    OrderStatus `json:"status"`
	Note      string      `json:"note"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
}

type Order struct {
	gorm.Model
	UserID          int                                `json:"userId"`
	OrderNumber     string                             `json:"orderNumber" gorm:"uniqueIndex"`
	Items           []OrderItem                        `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	ShippingAddress datatypes.JSONType[Address]        `json:"shippingAddress"`
	BillingAddress  datatypes.JSONType[Address]        `json:"billingAddress"`
	PaymentMethod   string                             `json:"paymentMethod"`
	PaymentStatus   PaymentStatus                      `json:"paymentStatus" gorm:"type:varchar(20);default:'pending'"`
	Status          OrderStatus                        `json:"status" gorm:"type:varchar(20);default:'pending'"`
	Subtotal        float64                            `json:"subtotal"`
	Tax             float64                            `json:"tax"`
	Shipping        float64                            `json:"shipping"`
	Discount        float64                            `json:"discount"`
	Total           float64                            `json:"total"`
	Currency        string                             `json:"currency"`
	TrackingNumber  string                             `json:"trackingNumber"`
	Notes           string                             `json:"notes"`
	Timeline        datatypes.JSONSlice[TimelineEntry] `json:"timeline"`
}

// OrderItem is a snapshot of the product at order time. Later price or
// catalog changes must not alter historical orders.
type OrderItem struct {
	gorm.Model
	OrderID   int     `json:"orderId"`
	ProductId int     `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	ImageUrl  string  `json:"imageUrl"`
}

// Legal status transitions per actor. Statuses missing from a map are
// terminal for that actor.
var customerTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusCancelled},
	OrderStatusDelivered:  {OrderStatusReturned},
}

var adminTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusShipped, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
	OrderStatusDelivered:  {OrderStatusReturned},
}

// Default timeline notes used when an admin update does not supply one.
var StatusNotes = map[OrderStatus]string{
	OrderStatusPending:    "Order placed",
	OrderStatusProcessing: "Order is being processed",
	OrderStatusShipped:    "Order has been shipped",
	OrderStatusDelivered:  "Order delivered",
	OrderStatusCancelled:  "Order cancelled",
	OrderStatusReturned:   "Order returned",
}

func CanTransition(actor Actor, from, to OrderStatus) bool {
	var table map[OrderStatus][]OrderStatus
	switch actor {
	case ActorCustomer:
		table = customerTransitions
	case ActorAdmin:
		table = adminTransitions
	default:
		return false
	}
	for _, next := range table[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Cancelable reports whether the customer may still cancel this order.
func (o *Order) Cancelable() bool {
	return CanTransition(ActorCustomer, o.Status, OrderStatusCancelled)
}

// Returnable requires delivery and a settled payment.
func (o *Order) Returnable() bool {
	return CanTransition(ActorCustomer, o.Status, OrderStatusReturned) &&
		o.PaymentStatus == PaymentStatusPaid
}

// AppendTimeline is the single funnel through which the order status
// changes. The status field and the timeline are always written together
// so they cannot diverge.
func (o *Order) AppendTimeline(status OrderStatus, note string, actor Actor) {
	o.Status = status
	o.Timeline = append(o.Timeline, TimelineEntry{
		ID:        uuid.NewString(),
		Status:    status,
		Note:      note,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
	})
}

// ShippedAt returns the timestamp of the most recent shipped event.
func (o *Order) ShippedAt() (time.Time, bool) {
	for i := len(o.Timeline) - 1; i >= 0; i-- {
		if o.Timeline[i].Status == OrderStatusShipped {
			return o.Timeline[i].Timestamp, true
		}
	}
	return time.Time{}, false
}

func ParseOrderStatus(status string) (OrderStatus, error) {
	normalized := OrderStatus(strings.ToLower(status))
	switch normalized {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled, OrderStatusReturned:
		return normalized, nil
	default:
		return "", errors.New("invalid order status")
	}
}

func ParsePaymentStatus(status string) (PaymentStatus, error) {
	normalized := PaymentStatus(strings.ToLower(status))
	switch normalized {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return normalized, nil
	default:
		return "", errors.New("invalid payment status")
	}
}

func ValidPaymentMethod(method string) bool {
	for _, m := range PaymentMethods {
		if m == method {
			return true
		}
	}
	return false
}

// GenerateOrderNumber builds a human-readable reference that stays unique
// under concurrent checkouts: millisecond timestamp plus a random suffix.
func GenerateOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("ORD-%d-%s", time.Now().UnixMilli(), suffix)
}

func Round2(value float64) float64 {
	return math.Round(value*100) / 100
}

func ShippingFee(subtotal float64) float64 {
	if subtotal >= FreeShippingThreshold {
		return 0
	}
	return FlatShippingFee
}

func TaxOn(subtotal float64) float64 {
	return Round2(subtotal * TaxRate)
}
