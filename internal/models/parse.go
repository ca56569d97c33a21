package models

import (
	"errors"
	"fmt"
	"time"
)

// Remote documents arrive as untyped maps. Every record type is decoded
// through an explicit parse step that fails closed: a document missing a
// required field (or carrying the wrong type) is rejected rather than
// mirrored half-formed.

var ErrMalformedDoc = errors.New("malformed document")

func ParseProduct(id string, data map[string]interface{}) (Product, error) {
	name, ok := asString(data["name"])
	if !ok || name == "" {
		return Product{}, fmt.Errorf("product %s: name: %w", id, ErrMalformedDoc)
	}
	price, ok := asFloat(data["price"])
	if !ok || price < 0 {
		return Product{}, fmt.Errorf("product %s: price: %w", id, ErrMalformedDoc)
	}
	p := Product{
		ID:    id,
		Name:  name,
		Price: price,
	}
	p.NameAr, _ = asString(data["nameAr"])
	p.Category, _ = asString(data["category"])
	p.PreviewURL, _ = asString(data["previewUrl"])
	p.VideoURL, _ = asString(data["videoUrl"])
	p.Brand, _ = asString(data["brand"])
	return p, nil
}

func ParseCategory(id string, data map[string]interface{}) (Category, error) {
	name, ok := asString(data["name"])
	if !ok || name == "" {
		return Category{}, fmt.Errorf("category %s: name: %w", id, ErrMalformedDoc)
	}
	c := Category{ID: id, Name: name}
	c.NameAr, _ = asString(data["nameAr"])
	c.Icon, _ = asString(data["icon"])
	return c, nil
}

func ParseBanner(id string, data map[string]interface{}) (Banner, error) {
	url, ok := asString(data["url"])
	if !ok || url == "" {
		return Banner{}, fmt.Errorf("banner %s: url: %w", id, ErrMalformedDoc)
	}
	b := Banner{ID: id, URL: url}
	b.Link, _ = asString(data["link"])
	return b, nil
}

func ParseOrder(id string, data map[string]interface{}) (Order, error) {
	status, ok := asString(data["status"])
	if !ok {
		return Order{}, fmt.Errorf("order %s: status: %w", id, ErrMalformedDoc)
	}
	switch status {
	case OrderStatusPending, OrderStatusCompleted, OrderStatusCancelled:
	default:
		return Order{}, fmt.Errorf("order %s: status %q: %w", id, status, ErrMalformedDoc)
	}
	total, ok := asFloat(data["total"])
	if !ok {
		return Order{}, fmt.Errorf("order %s: total: %w", id, ErrMalformedDoc)
	}

	o := Order{ID: id, Status: status, Total: total}
	o.CustomerName, _ = asString(data["customerName"])
	o.CustomerWhatsApp, _ = asString(data["customerWhatsApp"])
	o.CreatedAt, _ = asTimeString(data["createdAt"])
	o.Notes, _ = asString(data["notes"])

	rawItems, _ := data["items"].([]interface{})
	for _, raw := range rawItems {
		itemData, ok := raw.(map[string]interface{})
		if !ok {
			return Order{}, fmt.Errorf("order %s: items: %w", id, ErrMalformedDoc)
		}
		item, err := parseCartItem(itemData)
		if err != nil {
			return Order{}, fmt.Errorf("order %s: %w", id, err)
		}
		o.Items = append(o.Items, item)
	}
	return o, nil
}

func parseCartItem(data map[string]interface{}) (CartItem, error) {
	qty, ok := asInt(data["quantity"])
	if !ok || qty < 1 {
		return CartItem{}, fmt.Errorf("item quantity: %w", ErrMalformedDoc)
	}
	id, _ := asString(data["id"])
	price, _ := asFloat(data["price"])
	item := CartItem{Quantity: qty}
	item.ID = id
	item.Price = price
	item.Name, _ = asString(data["name"])
	item.NameAr, _ = asString(data["nameAr"])
	item.Category, _ = asString(data["category"])
	item.PreviewURL, _ = asString(data["previewUrl"])
	item.VideoURL, _ = asString(data["videoUrl"])
	item.Brand, _ = asString(data["brand"])
	return item, nil
}

func ParseUserProfile(id string, data map[string]interface{}) (UserProfile, error) {
	email, ok := asString(data["email"])
	if !ok || email == "" {
		return UserProfile{}, fmt.Errorf("user %s: email: %w", id, ErrMalformedDoc)
	}
	status, ok := asString(data["status"])
	if !ok {
		return UserProfile{}, fmt.Errorf("user %s: status: %w", id, ErrMalformedDoc)
	}
	switch status {
	case UserStatusActive, UserStatusFrozen, UserStatusBlocked:
	default:
		return UserProfile{}, fmt.Errorf("user %s: status %q: %w", id, status, ErrMalformedDoc)
	}
	u := UserProfile{UID: id, Email: email, Status: status}
	u.DisplayName, _ = asString(data["displayName"])
	u.Role, _ = asString(data["role"])
	if u.Role == "" {
		u.Role = RoleUser
	}
	u.CreatedAt, _ = asTimeString(data["createdAt"])
	return u, nil
}

func ParseStoreConfig(data map[string]interface{}) StoreConfig {
	// Both fields are optional; absence falls back to configured defaults.
	var cfg StoreConfig
	cfg.WhatsApp, _ = asString(data["whatsapp"])
	cfg.SiteName, _ = asString(data["siteName"])
	return cfg
}

func asString(v interface{}) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}

func asInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

func asTimeString(v interface{}) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case time.Time:
		return t.UTC().Format(time.RFC3339), true
	}
	return "", false
}
