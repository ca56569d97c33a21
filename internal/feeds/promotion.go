package feeds

import (
	"sync"

	"go.uber.org/zap"

	"storefront/internal/models"
	"storefront/internal/remote"
	"storefront/internal/util"
)

// StoreConfigPath is the settings singleton document.
const StoreConfigPath = "settings/store_config"

// PromotionSync mirrors the banners collection and the store settings
// singleton. The settings document may be absent; its fields fall back to
// configured defaults.
type PromotionSync struct {
	store           remote.Store
	gate            *Gate
	defaultSiteName string
	logger          *zap.Logger

	mu      sync.RWMutex
	banners []models.Banner
	config  models.StoreConfig

	notifier notifier
}

// NewPromotionSync builds the promotion mirror.
func NewPromotionSync(store remote.Store, gate *Gate, defaultSiteName string) *PromotionSync {
	return &PromotionSync{store: store, gate: gate, defaultSiteName: defaultSiteName, logger: util.GetLogger()}
}

// Start subscribes banners and the settings document.
func (p *PromotionSync) Start() ([]remote.Disposer, error) {
	dispBanners, err := p.store.Subscribe("banners", p.applyBanners)
	if err != nil {
		return nil, err
	}
	dispConfig, err := p.store.Subscribe(StoreConfigPath, p.applyConfig)
	if err != nil {
		dispBanners()
		return nil, err
	}
	return []remote.Disposer{dispBanners, dispConfig}, nil
}

func (p *PromotionSync) applyBanners(snap remote.Snapshot) {
	util.FeedSnapshotsTotal.WithLabelValues(LatchBanners).Inc()

	banners := make([]models.Banner, 0, len(snap.Docs))
	for _, doc := range snap.Docs {
		b, err := models.ParseBanner(doc.ID, doc.Data)
		if err != nil {
			util.FeedDocsDroppedTotal.WithLabelValues(LatchBanners).Inc()
			p.logger.Warn("Dropping malformed banner", zap.String("id", doc.ID), zap.Error(err))
			continue
		}
		banners = append(banners, b)
	}

	p.mu.Lock()
	p.banners = banners
	p.mu.Unlock()

	if p.gate != nil {
		p.gate.Mark(LatchBanners)
	}
	p.notifier.notify()
}

func (p *PromotionSync) applyConfig(snap remote.Snapshot) {
	var cfg models.StoreConfig
	if snap.Exists && len(snap.Docs) > 0 {
		cfg = models.ParseStoreConfig(snap.Docs[0].Data)
	}

	p.mu.Lock()
	p.config = cfg
	p.mu.Unlock()
	p.notifier.notify()
}

// Banners returns the banner mirror in remote insertion order.
func (p *PromotionSync) Banners() []models.Banner {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]models.Banner, len(p.banners))
	copy(out, p.banners)
	return out
}

// Config returns the raw mirrored settings document.
func (p *PromotionSync) Config() models.StoreConfig {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.config
}

// SiteName returns the display name, defaulted when the settings document
// leaves it unset.
func (p *PromotionSync) SiteName() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.config.SiteName != "" {
		return p.config.SiteName
	}
	return p.defaultSiteName
}

// WhatsApp returns the store contact number, possibly empty.
func (p *PromotionSync) WhatsApp() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.config.WhatsApp
}

// Subscribe registers fn for mirror changes.
func (p *PromotionSync) Subscribe(fn func()) func() {
	return p.notifier.subscribe(fn)
}
