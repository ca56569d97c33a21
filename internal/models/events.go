package models

import "time"

// Event types
const (
	EventTypeOrderSubmitted     = "ORDER_SUBMITTED"
	EventTypeOrderStatusChanged = "ORDER_STATUS_CHANGED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderSubmittedEvent is published after a checkout write succeeds.
type OrderSubmittedEvent struct {
	BaseEvent
	OrderID      string           `json:"order_id"`
	CustomerName string           `json:"customer_name"`
	Total        float64          `json:"total"`
	Channel      string           `json:"channel"`
	Items        []OrderEventItem `json:"items"`
}

// OrderStatusChangedEvent is published when an administrator moves an
// order out of pending.
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID    string `json:"order_id"`
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
}

// OrderEventItem is one order line as carried in events.
type OrderEventItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}
