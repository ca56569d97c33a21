// Package feeds mirrors the remote collections into locally consistent
// snapshots. Every push replaces the whole mirror; there is no incremental
// patching. Each mirror exposes current-snapshot reads and a subscribe
// contract so consumers stay decoupled from storage.
package feeds

import (
	"sync"

	"go.uber.org/zap"

	"storefront/internal/models"
	"storefront/internal/remote"
	"storefront/internal/util"
)

// CatalogSync mirrors the products and categories collections.
type CatalogSync struct {
	store  remote.Store
	gate   *Gate
	logger *zap.Logger

	mu         sync.RWMutex
	products   []models.Product
	categories []models.Category

	notifier notifier
}

// NewCatalogSync builds the catalog mirror. gate may be nil.
func NewCatalogSync(store remote.Store, gate *Gate) *CatalogSync {
	return &CatalogSync{store: store, gate: gate, logger: util.GetLogger()}
}

// Start subscribes both collections and returns their disposers.
func (c *CatalogSync) Start() ([]remote.Disposer, error) {
	dispProducts, err := c.store.Subscribe("products", c.applyProducts)
	if err != nil {
		return nil, err
	}
	dispCategories, err := c.store.Subscribe("categories", c.applyCategories)
	if err != nil {
		dispProducts()
		return nil, err
	}
	return []remote.Disposer{dispProducts, dispCategories}, nil
}

func (c *CatalogSync) applyProducts(snap remote.Snapshot) {
	util.FeedSnapshotsTotal.WithLabelValues(LatchProducts).Inc()

	products := make([]models.Product, 0, len(snap.Docs))
	for _, doc := range snap.Docs {
		p, err := models.ParseProduct(doc.ID, doc.Data)
		if err != nil {
			util.FeedDocsDroppedTotal.WithLabelValues(LatchProducts).Inc()
			c.logger.Warn("Dropping malformed product", zap.String("id", doc.ID), zap.Error(err))
			continue
		}
		products = append(products, p)
	}

	c.mu.Lock()
	c.products = products
	c.mu.Unlock()

	if c.gate != nil {
		c.gate.Mark(LatchProducts)
	}
	c.notifier.notify()
}

func (c *CatalogSync) applyCategories(snap remote.Snapshot) {
	util.FeedSnapshotsTotal.WithLabelValues(LatchCategories).Inc()

	categories := make([]models.Category, 0, len(snap.Docs))
	for _, doc := range snap.Docs {
		cat, err := models.ParseCategory(doc.ID, doc.Data)
		if err != nil {
			util.FeedDocsDroppedTotal.WithLabelValues(LatchCategories).Inc()
			c.logger.Warn("Dropping malformed category", zap.String("id", doc.ID), zap.Error(err))
			continue
		}
		categories = append(categories, cat)
	}

	c.mu.Lock()
	c.categories = categories
	c.mu.Unlock()

	if c.gate != nil {
		c.gate.Mark(LatchCategories)
	}
	c.notifier.notify()
}

// Products returns the full product mirror, order preserved.
func (c *CatalogSync) Products() []models.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Product, len(c.products))
	copy(out, c.products)
	return out
}

// FilterByCategory is a pure derived view: the synthetic "all" id yields
// the full mirror, any other id the matching subsequence.
func (c *CatalogSync) FilterByCategory(categoryID string) []models.Product {
	if categoryID == models.CategoryAll {
		return c.Products()
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Product, 0)
	for _, p := range c.products {
		if p.Category == categoryID {
			out = append(out, p)
		}
	}
	return out
}

// Categories returns the selector list with the synthetic "all" entry
// always at the head.
func (c *CatalogSync) Categories() []models.Category {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Category, 0, len(c.categories)+1)
	out = append(out, models.AllCategory())
	out = append(out, c.categories...)
	return out
}

// Subscribe registers fn for mirror changes.
func (c *CatalogSync) Subscribe(fn func()) func() {
	return c.notifier.subscribe(fn)
}

// notifier is the shared observer bookkeeping for mirrors.
type notifier struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func()
}

func (n *notifier) subscribe(fn func()) func() {
	n.mu.Lock()
	if n.subs == nil {
		n.subs = make(map[int]func())
	}
	id := n.nextID
	n.nextID++
	n.subs[id] = fn
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		delete(n.subs, id)
		n.mu.Unlock()
	}
}

func (n *notifier) notify() {
	n.mu.Lock()
	subs := make([]func(), 0, len(n.subs))
	for _, fn := range n.subs {
		subs = append(subs, fn)
	}
	n.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}
