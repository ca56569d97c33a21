// Package checkout drives the cart-to-order protocol: contact collection,
// validation, the remote write, and the optional handoff to the external
// messaging channel.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/google/uuid"

	"storefront/internal/cart"
	"storefront/internal/localstore"
	"storefront/internal/models"
	"storefront/internal/policy"
	"storefront/internal/remote"
	"storefront/internal/util"
)

// State of one checkout attempt.
type State string

const (
	StateCollectingCart    State = "collecting-cart"
	StateCollectingContact State = "collecting-contact-info"
	StateSubmitting        State = "submitting"
	StateSubmitted         State = "submitted"
	StateFailed            State = "failed"
)

// Channel selects the fulfillment path. Both produce an identical order
// record up to the note; only handoff emits an outbound message.
type Channel string

const (
	ChannelDirect  Channel = "direct"
	ChannelHandoff Channel = "handoff"
)

func (c Channel) note() string {
	if c == ChannelHandoff {
		return "Ordered via WhatsApp"
	}
	return "Ordered via Site"
}

var (
	// ErrRequiresAuth means the caller should raise the auth prompt; the
	// attempt stays in collecting-cart.
	ErrRequiresAuth = errors.New("checkout requires a signed-in account")
	// ErrAccountFrozen is a policy denial for frozen accounts.
	ErrAccountFrozen = errors.New("account is frozen")
	// ErrEmptyCart rejects checkout before any remote call.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrMissingContact keeps the attempt in collecting-contact-info.
	ErrMissingContact = errors.New("contact name and number are required")
	// ErrSubmitInFlight refuses re-entrant submission.
	ErrSubmitInFlight = errors.New("a submission is already in flight")
	// ErrBadState rejects operations outside their state.
	ErrBadState = errors.New("operation not valid in current state")
)

// SessionSource supplies the current profile and the contact-name seed.
type SessionSource interface {
	Current() *models.UserProfile
	DefaultContactName() string
}

// ConfigSource supplies store settings for the handoff message.
type ConfigSource interface {
	SiteName() string
	WhatsApp() string
}

// Publisher receives the order-submitted event; may be nil.
type Publisher interface {
	PublishOrderSubmitted(ctx context.Context, event *models.OrderSubmittedEvent) error
}

// HandoffFunc hands the prepared deep link to the messaging collaborator.
type HandoffFunc func(link string)

// Lifecycle is the per-client checkout state machine.
type Lifecycle struct {
	cart      *cart.Store
	store     remote.Store
	submitted localstore.SubmittedOrders
	session   SessionSource
	config    ConfigSource
	policy    policy.Policy
	publisher Publisher
	handoff   HandoffFunc

	fallbackWhatsApp string
	logger           *zap.Logger
	now              func() time.Time

	mu              sync.Mutex
	state           State
	contactName     string
	contactWhatsApp string
}

// NewLifecycle wires a checkout flow. publisher and handoff may be nil.
func NewLifecycle(
	cartStore *cart.Store,
	store remote.Store,
	submitted localstore.SubmittedOrders,
	sess SessionSource,
	config ConfigSource,
	pol policy.Policy,
	publisher Publisher,
	handoff HandoffFunc,
	fallbackWhatsApp string,
) *Lifecycle {
	return &Lifecycle{
		cart:             cartStore,
		store:            store,
		submitted:        submitted,
		session:          sess,
		config:           config,
		policy:           pol,
		publisher:        publisher,
		handoff:          handoff,
		fallbackWhatsApp: fallbackWhatsApp,
		logger:           util.GetLogger(),
		now:              time.Now,
		state:            StateCollectingCart,
	}
}

// State returns the current attempt state.
func (l *Lifecycle) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Contact returns the collected contact fields.
func (l *Lifecycle) Contact() (name, whatsapp string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.contactName, l.contactWhatsApp
}

// BeginCheckout moves collecting-cart to collecting-contact-info. It
// requires a non-empty cart and the checkout policy; an anonymous session
// leaves the state untouched so the caller can raise the auth prompt.
func (l *Lifecycle) BeginCheckout() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != StateCollectingCart {
		return fmt.Errorf("%w: %s", ErrBadState, l.state)
	}
	if l.cart.Len() == 0 {
		util.OrdersRejectedTotal.WithLabelValues("empty-cart").Inc()
		return ErrEmptyCart
	}
	if err := l.checkPolicy(); err != nil {
		return err
	}

	if l.contactName == "" {
		l.contactName = l.session.DefaultContactName()
	}
	l.state = StateCollectingContact
	return nil
}

// SetContact records the contact fields while collecting them.
func (l *Lifecycle) SetContact(name, whatsapp string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.contactName = strings.TrimSpace(name)
	l.contactWhatsApp = strings.TrimSpace(whatsapp)
}

// Cancel abandons contact collection and returns to collecting-cart. The
// cart itself is untouched.
func (l *Lifecycle) Cancel() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == StateCollectingContact {
		l.state = StateCollectingCart
	}
}

// Reset starts a fresh attempt after submitted or failed.
func (l *Lifecycle) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == StateSubmitted || l.state == StateFailed {
		l.state = StateCollectingCart
		l.contactWhatsApp = ""
	}
}

func (l *Lifecycle) checkPolicy() error {
	decision := l.policy.Check(l.session.Current(), policy.ActionCheckout)
	if decision.Allowed {
		return nil
	}
	util.PolicyDenialsTotal.WithLabelValues(string(policy.ActionCheckout), string(decision.Reason)).Inc()
	if decision.Reason == policy.ReasonAccountFrozen {
		return ErrAccountFrozen
	}
	return ErrRequiresAuth
}

// Submit validates the attempt, writes the order, and finishes the state
// machine. On success the cart is cleared, the id joins the persisted
// allow-list, and the handoff channel emits its message. On failure the
// cart and allow-list are left untouched for retry.
func (l *Lifecycle) Submit(ctx context.Context, channel Channel) (*models.Order, error) {
	l.mu.Lock()
	switch l.state {
	case StateSubmitting:
		l.mu.Unlock()
		return nil, ErrSubmitInFlight
	case StateCollectingContact:
	default:
		l.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrBadState, l.state)
	}

	if l.contactName == "" || l.contactWhatsApp == "" {
		l.mu.Unlock()
		util.OrdersRejectedTotal.WithLabelValues("missing-contact").Inc()
		return nil, ErrMissingContact
	}
	if err := l.checkPolicy(); err != nil {
		l.mu.Unlock()
		return nil, err
	}

	items := l.cart.Items()
	if len(items) == 0 {
		l.mu.Unlock()
		util.OrdersRejectedTotal.WithLabelValues("empty-cart").Inc()
		return nil, ErrEmptyCart
	}

	order := &models.Order{
		ID:               models.NewOrderID(l.now()),
		CustomerName:     l.contactName,
		CustomerWhatsApp: l.contactWhatsApp,
		Items:            items,
		Total:            l.cart.Total(),
		Status:           models.OrderStatusPending,
		CreatedAt:        l.now().UTC().Format(time.RFC3339),
		Notes:            channel.note(),
	}
	l.state = StateSubmitting
	l.mu.Unlock()

	ctx, span := util.StartSpan(ctx, "Checkout.Submit")
	defer span.End()

	start := time.Now()
	err := l.store.Set(ctx, "orders/"+order.ID, order, false)
	util.OrderSubmitLatency.Observe(time.Since(start).Seconds())

	if err != nil {
		util.OrderSubmitFailedTotal.Inc()
		l.logger.Error("Order write rejected", zap.String("order_id", order.ID), zap.Error(err))
		l.mu.Lock()
		l.state = StateFailed
		l.mu.Unlock()
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	if err := l.submitted.Add(order.ID); err != nil {
		// The order exists remotely; losing the local allow-list entry only
		// hides it from "my purchases", so log and continue.
		l.logger.Error("Failed to persist submitted order id",
			zap.String("order_id", order.ID), zap.Error(err))
	}

	l.mu.Lock()
	l.state = StateSubmitted
	l.mu.Unlock()

	l.cart.Clear()
	util.OrdersSubmittedTotal.WithLabelValues(string(channel)).Inc()
	l.logger.Info("Order submitted",
		zap.String("order_id", order.ID),
		zap.String("channel", string(channel)),
		zap.Float64("total", order.Total))

	l.publish(ctx, order, channel)

	if channel == ChannelHandoff && l.handoff != nil {
		message := BuildHandoffMessage(l.config.SiteName(), order)
		l.handoff(HandoffLink(l.config.WhatsApp(), l.fallbackWhatsApp, message))
	}
	return order, nil
}

func (l *Lifecycle) publish(ctx context.Context, order *models.Order, channel Channel) {
	if l.publisher == nil {
		return
	}
	event := &models.OrderSubmittedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderSubmitted,
			Timestamp: l.now(),
		},
		OrderID:      order.ID,
		CustomerName: order.CustomerName,
		Total:        order.Total,
		Channel:      string(channel),
	}
	for _, item := range order.Items {
		event.Items = append(event.Items, models.OrderEventItem{
			ProductID: item.ID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.Price,
		})
	}
	if err := l.publisher.PublishOrderSubmitted(ctx, event); err != nil {
		l.logger.Error("Failed to publish OrderSubmitted event", zap.Error(err))
	}
}
