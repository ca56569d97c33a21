// Package app assembles the sync layer: it owns every feed subscription
// and the disposer list that tears them down.
package app

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"storefront/config"
	"storefront/internal/admin"
	"storefront/internal/cart"
	"storefront/internal/checkout"
	"storefront/internal/feeds"
	"storefront/internal/identity"
	"storefront/internal/localstore"
	"storefront/internal/policy"
	"storefront/internal/remote"
	"storefront/internal/session"
	"storefront/internal/util"
)

// Options carries the optional collaborators.
type Options struct {
	// Publisher receives order events; nil disables publishing.
	Publisher checkout.Publisher
	// Handoff receives the prepared wa.me deep link; nil drops it.
	Handoff checkout.HandoffFunc
	// Notice receives user-facing notice codes; nil drops them.
	Notice session.NoticeFunc
	// Status receives status-change events from the admin surface; nil
	// disables publishing.
	Status admin.StatusPublisher
}

// App is the assembled storefront client.
type App struct {
	Policy    policy.Policy
	Session   *session.Controller
	Gate      *feeds.Gate
	Catalog   *feeds.CatalogSync
	Orders    *feeds.OrderSync
	Promotion *feeds.PromotionSync
	Rotator   *feeds.Rotator
	Cart      *cart.Store
	Checkout  *checkout.Lifecycle
	Admin     *admin.Service

	logger *zap.Logger

	mu        sync.Mutex
	disposers []func()
	started   bool
}

// New wires the client against the given store, identity provider, and
// persisted order set.
func New(cfg *config.Config, store remote.Store, provider identity.Provider, submitted localstore.SubmittedOrders, opts Options) *App {
	pol := policy.Policy{AdminEmail: cfg.Store.AdminEmail}
	sess := session.NewController(provider, store, cfg.Store.AdminEmail, opts.Notice)
	gate := feeds.NewLoadingGate()

	catalog := feeds.NewCatalogSync(store, gate)
	orders := feeds.NewOrderSync(store, gate, submitted)
	promotion := feeds.NewPromotionSync(store, gate, cfg.Store.SiteName)
	rotator := feeds.NewRotator(feeds.DefaultRotationInterval)

	cartStore := cart.NewStore(pol, sess.Current)
	adminSvc := admin.NewService(store, sess, orders, pol, opts.Status)
	lifecycle := checkout.NewLifecycle(
		cartStore, store, submitted, sess, promotion, pol,
		opts.Publisher, opts.Handoff, cfg.Store.FallbackWhatsApp,
	)

	return &App{
		Policy:    pol,
		Session:   sess,
		Gate:      gate,
		Catalog:   catalog,
		Orders:    orders,
		Promotion: promotion,
		Rotator:   rotator,
		Cart:      cartStore,
		Checkout:  lifecycle,
		Admin:     adminSvc,
		logger:    util.GetLogger(),
	}
}

// Start subscribes every feed and the auth stream. Calling Start on a
// started app is an error; Stop first.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.started {
		return fmt.Errorf("app already started")
	}

	authDisp := a.Session.Start()
	a.disposers = append(a.disposers, func() { authDisp() })

	for _, start := range []func() ([]remote.Disposer, error){
		a.Catalog.Start,
		a.Orders.Start,
		a.Promotion.Start,
	} {
		disps, err := start()
		if err != nil {
			a.disposeLocked()
			return fmt.Errorf("failed to start feeds: %w", err)
		}
		for _, d := range disps {
			d := d
			a.disposers = append(a.disposers, func() { d() })
		}
	}

	// The rotator follows the banner count.
	unsub := a.Promotion.Subscribe(func() {
		a.Rotator.SetCount(len(a.Promotion.Banners()))
	})
	a.disposers = append(a.disposers, unsub)
	a.Rotator.Start()
	a.disposers = append(a.disposers, a.Rotator.Stop)

	a.started = true
	a.logger.Info("Storefront sync started")
	return nil
}

// Stop invokes every disposer, newest first. Must run to completion before
// any re-subscribe so no stale-session callback fires against a new session.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.disposeLocked()
	a.started = false
	a.logger.Info("Storefront sync stopped")
}

func (a *App) disposeLocked() {
	for i := len(a.disposers) - 1; i >= 0; i-- {
		a.disposers[i]()
	}
	a.disposers = nil
}
