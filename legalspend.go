// Package legalspend aggregates legal spend records from heterogeneous
// sources (spend-management APIs, relational databases, flat files) and
// computes summaries and analytics over them.
//
// The central type is the Manager, which owns a set of source adapters (see
// internal/source), fans queries out to them concurrently, caches results,
// and derives statistics.  The Manager is constructed explicitly by the
// process's composition root and disposed with Cleanup at shutdown; there
// are no package-level singletons.
package legalspend

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rusq/legalspend/internal/cache"
	"github.com/rusq/legalspend/internal/network"
	"github.com/rusq/legalspend/internal/source"
	"github.com/rusq/legalspend/types"
)

// Manager orchestrates the active data sources.
type Manager struct {
	opts    options
	reg     *source.Registry
	limiter *network.KeyedLimiter
	cache   *cache.Cache[[]types.LegalSpendRecord]
	lg      *slog.Logger

	mu         sync.RWMutex
	sources    map[string]source.Sourcer
	configured []source.Config
}

// options is the Manager option set.
type options struct {
	cacheTTL    time.Duration
	maxRequests int
	window      time.Duration
	tolerance   float64 // budget variance tolerance band, percent
	budgets     Budgets
	lg          *slog.Logger
}

// Option is the signature of a Manager option-setting function.
type Option func(*options)

// WithCacheTTL sets the lifetime of cached spend queries.  The default of
// five minutes is a deliberate staleness/performance trade-off: spend data
// changes on invoice cadence, not in real time.
func WithCacheTTL(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.cacheTTL = d
		}
	}
}

// WithLimits overrides the per-credential API rate limit.
func WithLimits(maxRequests int, window time.Duration) Option {
	return func(o *options) {
		if maxRequests > 0 {
			o.maxRequests = maxRequests
		}
		if window > 0 {
			o.window = window
		}
	}
}

// WithVarianceTolerance sets the budget variance band, in percent, within
// which spend is considered on target.
func WithVarianceTolerance(pct float64) Option {
	return func(o *options) {
		if pct > 0 {
			o.tolerance = pct
		}
	}
}

// WithBudgets provides department budget amounts for budget-vs-actual
// analysis when the caller does not supply an explicit budget.
func WithBudgets(b Budgets) Option {
	return func(o *options) { o.budgets = b }
}

// WithLogger sets the logger.
func WithLogger(lg *slog.Logger) Option {
	return func(o *options) {
		if lg != nil {
			o.lg = lg
		}
	}
}

// Default manager policy constants.
const (
	DefCacheTTL  = 5 * time.Minute
	DefTolerance = 10.0 // percent

	// concentrationThreshold flags a vendor that owns more than this share
	// of total spend.
	concentrationThreshold = 0.40
)

// New creates a Manager.  Call InitSources to attach data sources and
// Cleanup to release them.
func New(opt ...Option) *Manager {
	opts := options{
		cacheTTL:    DefCacheTTL,
		maxRequests: network.DefMaxRequests,
		window:      network.DefWindow,
		tolerance:   DefTolerance,
		lg:          slog.Default(),
	}
	for _, o := range opt {
		o(&opts)
	}
	return &Manager{
		opts:    opts,
		reg:     source.NewRegistry(),
		limiter: network.NewKeyedLimiter(opts.maxRequests, opts.window),
		cache:   cache.New[[]types.LegalSpendRecord](opts.cacheTTL),
		lg:      opts.lg,
		sources: make(map[string]source.Sourcer),
	}
}

// InitSources constructs and probes an adapter for every enabled
// configuration entry, retaining only those whose connectivity probe
// succeeds.  A failure to construct or probe one source is logged and
// skipped: it never aborts initialisation of the others.
func (m *Manager) InitSources(ctx context.Context, cfgs []source.Config) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configured = cfgs
	for _, cfg := range cfgs {
		if !cfg.Enabled {
			continue
		}
		src, err := m.reg.New(cfg, source.Options{Limiter: m.limiter})
		if err != nil {
			m.lg.ErrorContext(ctx, "source initialisation failed", "source", cfg.Name, "error", err)
			continue
		}
		if !src.TestConnection(ctx) {
			m.lg.WarnContext(ctx, "source is not reachable, skipping", "source", cfg.Name)
			if c, ok := src.(source.SourceCloser); ok {
				_ = c.Close()
			}
			continue
		}
		m.sources[src.Name()] = src
		m.lg.InfoContext(ctx, "source initialised", "source", cfg.Name, "type", cfg.Type)
	}
}

// ActiveSources returns the names of sources that passed the connectivity
// probe at initialisation, sorted.
func (m *Manager) ActiveSources() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.sources))
	for name := range m.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// snapshot returns the active sources in name order.
func (m *Manager) snapshot() []source.Sourcer {
	m.mu.RLock()
	defer m.mu.RUnlock()
	srcs := make([]source.Sourcer, 0, len(m.sources))
	for _, s := range m.sources {
		srcs = append(srcs, s)
	}
	sort.Slice(srcs, func(i, j int) bool { return srcs[i].Name() < srcs[j].Name() })
	return srcs
}

// SpendData returns spend records for the inclusive date range.  If
// sourceName is non-empty, only that source is queried; otherwise the query
// fans out to every active source concurrently and concatenates the results.
// One failing source is logged and does not suppress results from the
// others.  Results are cached with the configured TTL, keyed by all call
// arguments.
func (m *Manager) SpendData(ctx context.Context, start, end time.Time, filters source.Filters, sourceName string) ([]types.LegalSpendRecord, error) {
	key := cache.Key("spend_data", start, end, map[string]string(filters), sourceName)
	return m.cache.GetOrSet(ctx, key, 0, func(ctx context.Context) ([]types.LegalSpendRecord, error) {
		return m.spendData(ctx, start, end, filters, sourceName)
	})
}

func (m *Manager) spendData(ctx context.Context, start, end time.Time, filters source.Filters, sourceName string) ([]types.LegalSpendRecord, error) {
	if sourceName != "" {
		m.mu.RLock()
		src, ok := m.sources[sourceName]
		m.mu.RUnlock()
		if !ok {
			return nil, fmt.Errorf("unknown data source: %q", sourceName)
		}
		return src.SpendData(ctx, start, end, filters)
	}

	srcs := m.snapshot()
	results := make([][]types.LegalSpendRecord, len(srcs))
	var eg errgroup.Group
	for i, src := range srcs {
		eg.Go(func() error {
			records, err := src.SpendData(ctx, start, end, filters)
			if err != nil {
				// failure isolation: log and return nothing for this
				// source, the siblings proceed.
				m.lg.ErrorContext(ctx, "spend query failed", "source", src.Name(), "error", err)
				return nil
			}
			results[i] = records
			return nil
		})
	}
	_ = eg.Wait() // workers never return errors
	var all []types.LegalSpendRecord
	for _, rr := range results {
		all = append(all, rr...)
	}
	return all, nil
}

// AllVendors fans out the vendor listing to every active source and merges
// the results by vendor id.  Ids are a deterministic function of the vendor
// name, so on collision the entries are equivalent and the first seen (in
// source name order) wins.  The merged list is sorted by name.
func (m *Manager) AllVendors(ctx context.Context) ([]types.Vendor, error) {
	srcs := m.snapshot()
	results := make([][]types.Vendor, len(srcs))
	var eg errgroup.Group
	for i, src := range srcs {
		eg.Go(func() error {
			vv, err := src.Vendors(ctx)
			if err != nil {
				m.lg.ErrorContext(ctx, "vendor query failed", "source", src.Name(), "error", err)
				return nil
			}
			results[i] = vv
			return nil
		})
	}
	_ = eg.Wait()

	seen := make(map[string]bool)
	var merged []types.Vendor
	for _, vv := range results {
		for _, v := range vv {
			if seen[v.ID] {
				continue
			}
			seen[v.ID] = true
			merged = append(merged, v)
		}
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Name < merged[j].Name })
	return merged, nil
}

// SourceStatus is the live status of one configured source.
type SourceStatus struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Status  string `json:"status"` // active | disconnected
	Enabled bool   `json:"enabled"`
}

// SourcesStatus re-probes every configured source live (not cached) and
// reports its reachability.  Sources that failed initialisation are included
// as disconnected.
func (m *Manager) SourcesStatus(ctx context.Context) []SourceStatus {
	m.mu.RLock()
	cfgs := m.configured
	sources := make(map[string]source.Sourcer, len(m.sources))
	for k, v := range m.sources {
		sources[k] = v
	}
	m.mu.RUnlock()

	statuses := make([]SourceStatus, 0, len(cfgs))
	for _, cfg := range cfgs {
		st := SourceStatus{
			Name:    cfg.Name,
			Type:    string(cfg.Type),
			Status:  "disconnected",
			Enabled: cfg.Enabled,
		}
		if src, ok := sources[cfg.Name]; ok && src.TestConnection(ctx) {
			st.Status = "active"
		}
		statuses = append(statuses, st)
	}
	return statuses
}

// Cleanup releases resources held by the adapters, notably database
// connection pools.  It is safe to call on a partially initialised or
// already cleaned-up manager.
func (m *Manager) Cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, src := range m.sources {
		if c, ok := src.(source.SourceCloser); ok {
			if err := c.Close(); err != nil {
				m.lg.Warn("closing source failed", "source", name, "error", err)
			}
		}
		delete(m.sources, name)
	}
	m.cache.Invalidate("")
}
