// Package admin is the administrative surface: catalog, banner, user, and
// order-status writes. Every operation re-checks the enter-admin-surface
// policy; the submitting client never reaches these paths for its own
// orders' statuses.
package admin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront/internal/feeds"
	"storefront/internal/models"
	"storefront/internal/policy"
	"storefront/internal/remote"
	"storefront/internal/util"
)

// ErrNotAllowed is returned when the session fails the admin policy.
var ErrNotAllowed = errors.New("admin surface requires the administrative account")

// ErrBadTransition rejects order-status changes outside
// pending -> completed | cancelled.
var ErrBadTransition = errors.New("invalid order status transition")

// Session is the slice of the session controller the admin surface needs.
type Session interface {
	Current() *models.UserProfile
	SetAdminMode(on bool)
}

// StatusPublisher receives order-status events; may be nil.
type StatusPublisher interface {
	PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error
}

// Service performs administrative writes through the remote store.
type Service struct {
	store     remote.Store
	session   Session
	orders    *feeds.OrderSync
	policy    policy.Policy
	publisher StatusPublisher
	logger    *zap.Logger
}

// NewService wires the admin surface. publisher may be nil.
func NewService(store remote.Store, sess Session, orders *feeds.OrderSync, pol policy.Policy, publisher StatusPublisher) *Service {
	return &Service{
		store:     store,
		session:   sess,
		orders:    orders,
		policy:    pol,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

func (s *Service) guard() error {
	decision := s.policy.Check(s.session.Current(), policy.ActionEnterAdmin)
	if decision.Allowed {
		return nil
	}
	util.PolicyDenialsTotal.WithLabelValues(string(policy.ActionEnterAdmin), string(decision.Reason)).Inc()
	return ErrNotAllowed
}

// Enter activates the elevated view after a policy check.
func (s *Service) Enter() error {
	if err := s.guard(); err != nil {
		return err
	}
	s.session.SetAdminMode(true)
	return nil
}

// Exit leaves the elevated view.
func (s *Service) Exit() {
	s.session.SetAdminMode(false)
}

// SaveProduct creates or replaces a catalog entry.
func (s *Service) SaveProduct(ctx context.Context, p models.Product) error {
	if err := s.guard(); err != nil {
		return err
	}
	if p.ID == "" || p.Name == "" || p.Price < 0 {
		return fmt.Errorf("product requires id, name, and a non-negative price")
	}
	return s.store.Set(ctx, "products/"+p.ID, p, false)
}

// DeleteProduct removes a catalog entry.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.store.Delete(ctx, "products/"+id)
}

// UpdateOrderStatus moves an order out of pending. Only
// pending -> completed and pending -> cancelled are accepted.
func (s *Service) UpdateOrderStatus(ctx context.Context, id, status string) error {
	if err := s.guard(); err != nil {
		return err
	}
	order, ok := s.orders.Get(id)
	if !ok {
		return fmt.Errorf("order not found: %s", id)
	}
	if !models.ValidOrderTransition(order.Status, status) {
		return fmt.Errorf("%w: %s -> %s", ErrBadTransition, order.Status, status)
	}

	ctx, span := util.StartSpan(ctx, "Admin.UpdateOrderStatus")
	defer span.End()

	if err := s.store.Update(ctx, "orders/"+id, map[string]interface{}{
		"status": status,
	}); err != nil {
		return err
	}
	s.logger.Info("Order status updated",
		zap.String("order_id", id),
		zap.String("status", status))

	if s.publisher != nil {
		event := &models.OrderStatusChangedEvent{
			BaseEvent: models.BaseEvent{
				EventID:   uuid.New().String(),
				EventType: models.EventTypeOrderStatusChanged,
				Timestamp: time.Now(),
			},
			OrderID:    id,
			FromStatus: order.Status,
			ToStatus:   status,
		}
		if err := s.publisher.PublishOrderStatusChanged(ctx, event); err != nil {
			s.logger.Error("Failed to publish OrderStatusChanged event", zap.Error(err))
		}
	}
	return nil
}

// DeleteOrder removes an order from the ledger.
func (s *Service) DeleteOrder(ctx context.Context, id string) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.store.Delete(ctx, "orders/"+id)
}

// SetUserStatus freezes, blocks, or reactivates an account.
func (s *Service) SetUserStatus(ctx context.Context, uid, status string) error {
	if err := s.guard(); err != nil {
		return err
	}
	switch status {
	case models.UserStatusActive, models.UserStatusFrozen, models.UserStatusBlocked:
	default:
		return fmt.Errorf("unknown user status: %s", status)
	}
	return s.store.Update(ctx, "users/"+uid, map[string]interface{}{
		"status": status,
	})
}

// SaveBanner creates or replaces a promotional banner.
func (s *Service) SaveBanner(ctx context.Context, b models.Banner) error {
	if err := s.guard(); err != nil {
		return err
	}
	if b.ID == "" || b.URL == "" {
		return fmt.Errorf("banner requires id and url")
	}
	return s.store.Set(ctx, "banners/"+b.ID, b, false)
}

// DeleteBanner removes a banner.
func (s *Service) DeleteBanner(ctx context.Context, id string) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.store.Delete(ctx, "banners/"+id)
}

// SetBannerLink updates a banner's outbound link.
func (s *Service) SetBannerLink(ctx context.Context, id, link string) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.store.Update(ctx, "banners/"+id, map[string]interface{}{
		"link": link,
	})
}

// SaveStoreConfig replaces the settings singleton.
func (s *Service) SaveStoreConfig(ctx context.Context, cfg models.StoreConfig) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.store.Set(ctx, feeds.StoreConfigPath, cfg, false)
}
