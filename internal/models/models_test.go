package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrderID(t *testing.T) {
	now := time.UnixMilli(1700000000123)

	id := NewOrderID(now)

	assert.Equal(t, "ORD-1700000000123", id)
}

func TestValidOrderTransition(t *testing.T) {
	assert.True(t, ValidOrderTransition(OrderStatusPending, OrderStatusCompleted))
	assert.True(t, ValidOrderTransition(OrderStatusPending, OrderStatusCancelled))

	assert.False(t, ValidOrderTransition(OrderStatusCompleted, OrderStatusCancelled))
	assert.False(t, ValidOrderTransition(OrderStatusCancelled, OrderStatusPending))
	assert.False(t, ValidOrderTransition(OrderStatusPending, OrderStatusPending))
	assert.False(t, ValidOrderTransition(OrderStatusPending, "shipped"))
}

func TestAllCategoryMatchesEverything(t *testing.T) {
	head := AllCategory()

	assert.Equal(t, CategoryAll, head.ID)
	assert.Equal(t, "All", head.Name)
	assert.NotEmpty(t, head.NameAr)
}

func TestParseProduct(t *testing.T) {
	p, err := ParseProduct("p1", map[string]interface{}{
		"name":     "Hoodie",
		"price":    49.99,
		"category": "clothes",
	})
	require.NoError(t, err)

	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, "Hoodie", p.Name)
	assert.Equal(t, 49.99, p.Price)
	assert.Equal(t, "clothes", p.Category)
}

func TestParseProductIntegerPrice(t *testing.T) {
	// Numbers written from other clients may arrive as int64.
	p, err := ParseProduct("p1", map[string]interface{}{
		"name":  "Hoodie",
		"price": int64(50),
	})
	require.NoError(t, err)

	assert.Equal(t, 50.0, p.Price)
}

func TestParseProductRejectsMalformed(t *testing.T) {
	cases := []map[string]interface{}{
		{"price": 10.0},                      // missing name
		{"name": "", "price": 10.0},          // empty name
		{"name": "X"},                        // missing price
		{"name": "X", "price": "ten"},        // wrong price type
		{"name": "X", "price": -1.0},         // negative price
		{"name": 42, "price": 10.0},          // wrong name type
	}
	for _, data := range cases {
		_, err := ParseProduct("p1", data)
		assert.ErrorIs(t, err, ErrMalformedDoc)
	}
}

func TestParseOrder(t *testing.T) {
	o, err := ParseOrder("ORD-1", map[string]interface{}{
		"customerName":     "Nour",
		"customerWhatsApp": "201001112223",
		"status":           "pending",
		"total":            30.0,
		"createdAt":        "2026-01-02T15:04:05Z",
		"notes":            "Ordered via Site",
		"items": []interface{}{
			map[string]interface{}{"id": "p1", "name": "Hoodie", "price": 12.5, "quantity": 2},
			map[string]interface{}{"id": "p2", "name": "Cap", "price": 5.0, "quantity": 1},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "ORD-1", o.ID)
	assert.Equal(t, OrderStatusPending, o.Status)
	assert.Len(t, o.Items, 2)
	assert.Equal(t, 2, o.Items[0].Quantity)
	assert.Equal(t, "Ordered via Site", o.Notes)
}

func TestParseOrderServerTimestamp(t *testing.T) {
	created := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)

	o, err := ParseOrder("ORD-2", map[string]interface{}{
		"status":    "completed",
		"total":     5.0,
		"createdAt": created,
	})
	require.NoError(t, err)

	assert.Equal(t, "2026-01-02T15:04:05Z", o.CreatedAt)
}

func TestParseOrderRejectsUnknownStatus(t *testing.T) {
	_, err := ParseOrder("ORD-3", map[string]interface{}{
		"status": "shipped",
		"total":  5.0,
	})
	assert.ErrorIs(t, err, ErrMalformedDoc)
}

func TestParseOrderRejectsBadItemQuantity(t *testing.T) {
	_, err := ParseOrder("ORD-4", map[string]interface{}{
		"status": "pending",
		"total":  5.0,
		"items": []interface{}{
			map[string]interface{}{"id": "p1", "quantity": 0},
		},
	})
	assert.ErrorIs(t, err, ErrMalformedDoc)
}

func TestParseUserProfileDefaultsRole(t *testing.T) {
	u, err := ParseUserProfile("u1", map[string]interface{}{
		"email":  "nour@example.com",
		"status": "active",
	})
	require.NoError(t, err)

	assert.Equal(t, RoleUser, u.Role)
}

func TestParseUserProfileRejectsUnknownStatus(t *testing.T) {
	_, err := ParseUserProfile("u1", map[string]interface{}{
		"email":  "nour@example.com",
		"status": "suspended",
	})
	assert.ErrorIs(t, err, ErrMalformedDoc)
}

func TestParseStoreConfigOptionalFields(t *testing.T) {
	cfg := ParseStoreConfig(map[string]interface{}{"whatsapp": "201000000000"})

	assert.Equal(t, "201000000000", cfg.WhatsApp)
	assert.Empty(t, cfg.SiteName)
}
