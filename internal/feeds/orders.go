package feeds

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"storefront/internal/localstore"
	"storefront/internal/models"
	"storefront/internal/remote"
	"storefront/internal/util"
)

// OrderSync mirrors the full order ledger. All customers' orders are kept
// (the admin surface needs them); "my purchases" is derived by intersecting
// the mirror with the locally persisted allow-list of submitted ids, so
// administrative status changes show up without any extra sync step.
type OrderSync struct {
	store     remote.Store
	gate      *Gate
	submitted localstore.SubmittedOrders
	logger    *zap.Logger

	mu     sync.RWMutex
	orders []models.Order

	notifier notifier
}

// NewOrderSync builds the ledger mirror.
func NewOrderSync(store remote.Store, gate *Gate, submitted localstore.SubmittedOrders) *OrderSync {
	return &OrderSync{store: store, gate: gate, submitted: submitted, logger: util.GetLogger()}
}

// Start subscribes the orders collection.
func (o *OrderSync) Start() ([]remote.Disposer, error) {
	disp, err := o.store.Subscribe("orders", o.apply)
	if err != nil {
		return nil, err
	}
	return []remote.Disposer{disp}, nil
}

func (o *OrderSync) apply(snap remote.Snapshot) {
	util.FeedSnapshotsTotal.WithLabelValues(LatchOrders).Inc()

	orders := make([]models.Order, 0, len(snap.Docs))
	for _, doc := range snap.Docs {
		order, err := models.ParseOrder(doc.ID, doc.Data)
		if err != nil {
			util.FeedDocsDroppedTotal.WithLabelValues(LatchOrders).Inc()
			o.logger.Warn("Dropping malformed order", zap.String("id", doc.ID), zap.Error(err))
			continue
		}
		orders = append(orders, order)
	}

	o.mu.Lock()
	o.orders = orders
	o.mu.Unlock()

	if o.gate != nil {
		o.gate.Mark(LatchOrders)
	}
	o.notifier.notify()
}

// Orders returns the full ledger mirror, order preserved.
func (o *OrderSync) Orders() []models.Order {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]models.Order, len(o.orders))
	copy(out, o.orders)
	return out
}

// Get returns one mirrored order by id.
func (o *OrderSync) Get(id string) (models.Order, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	for _, order := range o.orders {
		if order.ID == id {
			return order, true
		}
	}
	return models.Order{}, false
}

// MyPurchases returns the orders this client submitted, newest first.
func (o *OrderSync) MyPurchases() []models.Order {
	o.mu.RLock()
	mine := make([]models.Order, 0)
	for _, order := range o.orders {
		if o.submitted.Contains(order.ID) {
			mine = append(mine, order)
		}
	}
	o.mu.RUnlock()

	sort.SliceStable(mine, func(i, j int) bool {
		return mine[i].CreatedAt > mine[j].CreatedAt
	})
	return mine
}

// PendingCount counts ledger orders still under review.
func (o *OrderSync) PendingCount() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	n := 0
	for _, order := range o.orders {
		if order.Status == models.OrderStatusPending {
			n++
		}
	}
	return n
}

// Subscribe registers fn for mirror changes.
func (o *OrderSync) Subscribe(fn func()) func() {
	return o.notifier.subscribe(fn)
}
