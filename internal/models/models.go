package models

import (
	"fmt"
	"time"
)

// Product is a catalog entry, owned by the remote store and mirrored
// read-only on this side.
type Product struct {
	ID         string  `json:"id" firestore:"id"`
	Name       string  `json:"name" firestore:"name"`
	NameAr     string  `json:"nameAr" firestore:"nameAr"`
	Price      float64 `json:"price" firestore:"price"`
	Category   string  `json:"category" firestore:"category"`
	PreviewURL string  `json:"previewUrl" firestore:"previewUrl"`
	VideoURL   string  `json:"videoUrl,omitempty" firestore:"videoUrl"`
	Brand      string  `json:"brand,omitempty" firestore:"brand"`
}

// Category groups products. The "all" head entry is synthetic and never
// persisted; see CategoryAll.
type Category struct {
	ID     string `json:"id" firestore:"id"`
	Name   string `json:"name" firestore:"name"`
	NameAr string `json:"nameAr" firestore:"nameAr"`
	Icon   string `json:"icon,omitempty" firestore:"icon"`
}

// CategoryAll is the synthetic category injected at the head of the
// selector; it matches every product.
const CategoryAll = "all"

// AllCategory returns the synthetic head entry.
func AllCategory() Category {
	return Category{ID: CategoryAll, Name: "All", NameAr: "الكل", Icon: "🛍️"}
}

// CartItem is a product plus a quantity. It exists only in the local cart
// until checkout snapshots it into an order.
type CartItem struct {
	Product
	Quantity int `json:"quantity" firestore:"quantity"`
}

// Order is created once at checkout. Items and Total are frozen at
// submission; later catalog changes never alter a historical order.
type Order struct {
	ID               string     `json:"id" firestore:"id"`
	CustomerName     string     `json:"customerName" firestore:"customerName"`
	CustomerWhatsApp string     `json:"customerWhatsApp" firestore:"customerWhatsApp"`
	Items            []CartItem `json:"items" firestore:"items"`
	Total            float64    `json:"total" firestore:"total"`
	Status           string     `json:"status" firestore:"status"`
	CreatedAt        string     `json:"createdAt" firestore:"createdAt"`
	Notes            string     `json:"notes" firestore:"notes"`
}

// Order statuses. Only an administrative actor moves an order out of
// pending, and only to completed or cancelled.
const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// UserProfile is bound 1:1 to an authentication identity.
type UserProfile struct {
	UID         string `json:"uid" firestore:"uid"`
	Email       string `json:"email" firestore:"email"`
	DisplayName string `json:"displayName" firestore:"displayName"`
	Status      string `json:"status" firestore:"status"`
	Role        string `json:"role" firestore:"role"`
	CreatedAt   string `json:"createdAt" firestore:"createdAt"`
}

// Account statuses
const (
	UserStatusActive  = "active"
	UserStatusFrozen  = "frozen"
	UserStatusBlocked = "blocked"
)

// Roles
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Banner is a promotional slide; URL may point at an image or a video.
type Banner struct {
	ID   string `json:"id" firestore:"id"`
	URL  string `json:"url" firestore:"url"`
	Link string `json:"link,omitempty" firestore:"link"`
}

// StoreConfig is the settings/store_config singleton.
type StoreConfig struct {
	WhatsApp string `json:"whatsapp" firestore:"whatsapp"`
	SiteName string `json:"siteName" firestore:"siteName"`
}

// NewOrderID returns a time-ordered order token.
func NewOrderID(now time.Time) string {
	return fmt.Sprintf("ORD-%d", now.UnixMilli())
}

// ValidOrderTransition reports whether an administrative status change is
// allowed. Orders only move pending -> completed or pending -> cancelled.
func ValidOrderTransition(from, to string) bool {
	if from != OrderStatusPending {
		return false
	}
	return to == OrderStatusCompleted || to == OrderStatusCancelled
}
