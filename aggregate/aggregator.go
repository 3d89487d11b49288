package aggregate

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/rentyard/equipsearch/core"
)

const (
	defaultPoolSize       = 4
	defaultPerCategoryCap = 24
	// combinedTopCeiling caps the result count requested by a combined
	// multi-type query, matching the upstream page-size ceiling.
	combinedTopCeiling = 100
)

// Searcher is the slice of the search client the aggregator needs.
type Searcher interface {
	Search(ctx context.Context, criteria core.SearchCriteria) (*core.SearchResult, error)
}

// Item is the aggregation outcome for one category. Items are created
// fresh on every run and owned exclusively by the caller.
type Item struct {
	Category Category
	Records  []core.EquipmentRecord
	Count    int
	// SubTypeCounts breaks the match set down by slugified raw
	// equipment-type string, for caller display.
	SubTypeCounts map[string]int
}

// Aggregator produces per-category inventory views over a catalog.
//
// Fan-out runs on two bounded pools: one for categories, one for the
// per-type fallback queries inside a category. Keeping them separate means
// a category task waiting on its fallback can never starve the pool its
// fallback needs.
type Aggregator struct {
	searcher Searcher
	catalog  *Catalog

	categoryPool *ants.Pool
	typePool     *ants.Pool

	perCategoryCap int
	location       *core.LocationFilter
	logger         *slog.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator) error

// WithPoolSize sets the worker pool size for both fan-out pools.
// Default is 4, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(a *Aggregator) error {
		if size < 1 {
			size = 1
		}

		// Release old pools
		if a.categoryPool != nil {
			a.categoryPool.Release()
		}
		if a.typePool != nil {
			a.typePool.Release()
		}

		categoryPool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		typePool, err := ants.NewPool(size)
		if err != nil {
			categoryPool.Release()
			return err
		}

		a.categoryPool = categoryPool
		a.typePool = typePool
		return nil
	}
}

// WithPerCategoryCap sets the per-category result cap.
// Default is 24.
func WithPerCategoryCap(cap int) Option {
	return func(a *Aggregator) error {
		if cap > 0 {
			a.perCategoryCap = cap
		}
		return nil
	}
}

// WithLocation applies a location filter to every category search.
func WithLocation(location *core.LocationFilter) Option {
	return func(a *Aggregator) error {
		a.location = location
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) error {
		if logger == nil {
			logger = slog.Default()
		}
		a.logger = logger
		return nil
	}
}

// NewAggregator creates an aggregator over the given catalog. A nil catalog
// uses the built-in default.
func NewAggregator(searcher Searcher, catalog *Catalog, opts ...Option) (*Aggregator, error) {
	if searcher == nil {
		return nil, ErrSearcherRequired
	}
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	if len(catalog.Categories) == 0 {
		return nil, ErrEmptyCatalog
	}

	categoryPool, err := ants.NewPool(defaultPoolSize)
	if err != nil {
		return nil, err
	}

	typePool, err := ants.NewPool(defaultPoolSize)
	if err != nil {
		categoryPool.Release()
		return nil, err
	}

	a := &Aggregator{
		searcher:       searcher,
		catalog:        catalog,
		categoryPool:   categoryPool,
		typePool:       typePool,
		perCategoryCap: defaultPerCategoryCap,
		logger:         slog.Default().With("component", "aggregator"),
	}

	for _, opt := range opts {
		if err := opt(a); err != nil {
			a.Release()
			return nil, err
		}
	}

	return a, nil
}

// Catalog returns the catalog the aggregator runs over.
func (a *Aggregator) Catalog() *Catalog {
	return a.catalog
}

// All aggregates every category in the catalog. The returned slice is in
// catalog order regardless of completion order: each category writes into
// its own pre-assigned index. Failed categories degrade to empty items.
func (a *Aggregator) All(ctx context.Context) []*Item {
	start := time.Now()
	items := make([]*Item, len(a.catalog.Categories))

	var wg sync.WaitGroup
	for i, cat := range a.catalog.Categories {
		wg.Add(1)
		if err := a.categoryPool.Submit(func() {
			defer wg.Done()
			items[i] = a.Category(ctx, cat)
		}); err != nil {
			// Pool released mid-run; degrade like any other failure.
			a.logger.Warn("category fan-out rejected", "category", cat.Name, "err", err)
			items[i] = emptyItem(cat)
			wg.Done()
		}
	}
	wg.Wait()

	a.logger.Info("aggregation completed",
		"categories", len(items), "duration", time.Since(start))
	return items
}

// Category aggregates a single category. It never returns an error: a
// failed search yields an empty item so one broken category cannot take
// down the whole browse page.
func (a *Aggregator) Category(ctx context.Context, cat Category) *Item {
	types := a.catalog.TypesFor(cat)
	if len(types) == 0 {
		return emptyItem(cat)
	}

	var results []*core.SearchResult
	if len(types) == 1 {
		res, err := a.searcher.Search(ctx, a.criteriaFor(types, a.perCategoryCap))
		if err != nil {
			a.logger.Warn("category search failed",
				"category", cat.Name, "type", types[0], "err", err)
			return emptyItem(cat)
		}
		results = []*core.SearchResult{res}
	} else {
		results = a.searchMultiType(ctx, cat, types)
	}

	return mergeResults(cat, results)
}

// searchMultiType prefers one combined OR-of-types query and falls back to
// per-type queries when the combined call fails for any reason.
func (a *Aggregator) searchMultiType(ctx context.Context, cat Category, types []string) []*core.SearchResult {
	top := a.perCategoryCap * len(types)
	if top > combinedTopCeiling {
		top = combinedTopCeiling
	}

	combined, err := a.searcher.Search(ctx, a.criteriaFor(types, top))
	if err == nil {
		return []*core.SearchResult{combined}
	}
	a.logger.Warn("combined category search failed, falling back to per-type",
		"category", cat.Name, "types", len(types), "err", err)

	// Fallback: one bounded-concurrency search per type. Results land at
	// the type's own index so the merge order stays deterministic.
	results := make([]*core.SearchResult, len(types))
	var wg sync.WaitGroup
	for i, t := range types {
		wg.Add(1)
		if err := a.typePool.Submit(func() {
			defer wg.Done()
			res, err := a.searcher.Search(ctx, a.criteriaFor([]string{t}, a.perCategoryCap))
			if err != nil {
				a.logger.Warn("per-type search failed",
					"category", cat.Name, "type", t, "err", err)
				return
			}
			results[i] = res
		}); err != nil {
			a.logger.Warn("per-type fan-out rejected", "category", cat.Name, "type", t, "err", err)
			wg.Done()
		}
	}
	wg.Wait()

	return results
}

func (a *Aggregator) criteriaFor(types []string, top int) core.SearchCriteria {
	return core.SearchCriteria{
		EquipmentTypes: types,
		Location:       a.location,
		Top:            top,
	}
}

// mergeResults merges and deduplicates records across the category's
// results. The first occurrence of an identity wins; later duplicates are
// discarded, not overwritten.
func mergeResults(cat Category, results []*core.SearchResult) *Item {
	item := emptyItem(cat)
	seen := make(map[core.ID]bool)

	for _, res := range results {
		if res == nil {
			continue
		}
		for _, rec := range res.Records {
			id := rec.Identity()
			if seen[id] {
				continue
			}
			seen[id] = true
			item.Records = append(item.Records, rec)
			item.SubTypeCounts[Slugify(rec.PrimaryType)]++
		}
	}

	item.Count = len(item.Records)
	return item
}

func emptyItem(cat Category) *Item {
	return &Item{
		Category:      cat,
		Records:       []core.EquipmentRecord{},
		SubTypeCounts: map[string]int{},
	}
}

// Release releases the worker pools. The aggregator must not be used after
// calling Release.
func (a *Aggregator) Release() {
	if a.categoryPool != nil {
		a.categoryPool.Release()
	}
	if a.typePool != nil {
		a.typePool.Release()
	}
}
