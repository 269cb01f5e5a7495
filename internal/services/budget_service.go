package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"budget/internal/amqp"
	"budget/internal/cache"
	"budget/internal/core"
	"budget/internal/log"
	"budget/internal/storage"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// RecentEntries is how many entries the overview lists.
const RecentEntries = 5

// Publisher sends change events. *amqp.Client satisfies it.
type Publisher interface {
	PublishEvent(ctx context.Context, evt *amqp.BudgetEvent) error
}

type Options struct {
	Publisher Publisher
	Logger    *log.Logger
	CacheSize int
	CacheTTL  time.Duration
	Now       func() time.Time
}

// BudgetService orchestrates the store, the overview cache and event
// publishing. Publishing is best effort: a broker outage never fails a
// request whose data was saved.
type BudgetService struct {
	store     *storage.Store
	publisher Publisher
	overviews *cache.LRUCache[core.Overview]
	group     singleflight.Group
	gen       atomic.Uint64 // bumped on every mutation
	genMu     sync.Mutex    // serializes gen bumps with cache writes
	logger    *log.Logger
	now       func() time.Time
}

func NewBudgetService(store *storage.Store, opts Options) *BudgetService {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 24
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &BudgetService{
		store:     store,
		publisher: opts.Publisher,
		overviews: cache.NewLRUCache[core.Overview](opts.CacheSize, opts.CacheTTL),
		logger:    logger.WithComponent(log.ComponentBudget),
		now:       opts.Now,
	}
}

// Cache exposes the overview cache for the cleanup manager and metrics.
func (s *BudgetService) Cache() *cache.LRUCache[core.Overview] { return s.overviews }

// CurrentPeriod is the calendar month of the service clock.
func (s *BudgetService) CurrentPeriod() core.Period {
	return core.CurrentPeriod(s.now())
}

// Overview assembles the budget page for p. Results are cached per period
// and concurrent loads of the same period share one set of queries.
func (s *BudgetService) Overview(ctx context.Context, p core.Period) (core.Overview, error) {
	key := p.Key()
	if ov, ok := s.overviews.Get(key); ok {
		return ov, nil
	}

	gen := s.gen.Load()
	v, err, _ := s.group.Do(key+"@"+strconv.FormatUint(gen, 10), func() (any, error) {
		ov, err := s.loadOverview(ctx, p)
		if err != nil {
			return core.Overview{}, err
		}
		// a mutation during the load makes the result stale
		s.genMu.Lock()
		if s.gen.Load() == gen {
			s.overviews.Set(key, ov)
		}
		s.genMu.Unlock()
		return ov, nil
	})
	if err != nil {
		return core.Overview{}, err
	}
	return v.(core.Overview), nil
}

func (s *BudgetService) loadOverview(ctx context.Context, p core.Period) (core.Overview, error) {
	ov := core.Overview{Period: p}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		ov.Categories, err = s.store.CategoryProgress(gctx, p)
		return err
	})
	g.Go(func() (err error) {
		ov.Recent, err = s.store.LastEntries(gctx, p, RecentEntries)
		return err
	})
	g.Go(func() (err error) {
		ov.TotalSpent, err = s.store.TotalSpent(gctx, p)
		return err
	})
	g.Go(func() (err error) {
		ov.TotalCap, err = s.store.TotalBudgetCap(gctx)
		return err
	})
	g.Go(func() (err error) {
		ov.MonthlyTotal, err = s.store.MonthlyTotal(gctx, p.Year, p.Month)
		return err
	})
	g.Go(func() (err error) {
		ov.YearToDate, err = s.store.YearToDateTotal(gctx, p.Year)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.Overview{}, fmt.Errorf("load overview %s: %w", p.Key(), err)
	}
	ov.Remaining = ov.TotalCap.Sub(ov.TotalSpent)
	return ov, nil
}

// Entries lists every entry, or only those of p when p is not nil.
func (s *BudgetService) Entries(ctx context.Context, p *core.Period) ([]core.Entry, error) {
	if p == nil {
		return s.store.ListEntries(ctx)
	}
	return s.store.ListEntriesByMonth(ctx, p.Year, p.Month)
}

func (s *BudgetService) Entry(ctx context.Context, id int64) (core.Entry, error) {
	return s.store.FindEntry(ctx, id)
}

func (s *BudgetService) Category(ctx context.Context, id int64) (core.Category, error) {
	return s.store.FindCategory(ctx, id)
}

func (s *BudgetService) Categories(ctx context.Context) ([]core.Category, error) {
	return s.store.ListCategories(ctx)
}

func (s *BudgetService) CategoryProgress(ctx context.Context, p core.Period) ([]core.CategoryProgress, error) {
	return s.store.CategoryProgress(ctx, p)
}

// CategoryNameTaken reports whether name belongs to a category other than exceptID.
func (s *BudgetService) CategoryNameTaken(ctx context.Context, name string, exceptID int64) (bool, error) {
	id, found, err := s.store.FindCategoryIDByName(ctx, name)
	if err != nil {
		return false, err
	}
	return found && id != exceptID, nil
}

// ResolveCategory returns the id of the named category, creating it with a
// zero cap when it does not exist yet.
func (s *BudgetService) ResolveCategory(ctx context.Context, name string) (int64, error) {
	id, found, err := s.store.FindCategoryIDByName(ctx, name)
	if err != nil {
		return 0, err
	}
	if found {
		return id, nil
	}
	id, err = s.store.CreateCategory(ctx, name, core.Money{})
	if errors.Is(err, core.ErrDuplicateCategory) {
		// created concurrently
		id, _, err = s.store.FindCategoryIDByName(ctx, name)
		return id, err
	}
	if err != nil {
		return 0, err
	}
	// the category exists even if the entry write that follows fails
	s.invalidate()
	s.logger.InfoContext(ctx, "Category created from entry form",
		log.NewFields().WithCategory(id, core.NormalizeCategoryName(name)).ToSlice()...)
	return id, nil
}

// CreateEntry stores a validated entry form.
func (s *BudgetService) CreateEntry(ctx context.Context, in core.EntryInput) (int64, error) {
	catID, err := s.ResolveCategory(ctx, in.Category)
	if err != nil {
		return 0, fmt.Errorf("resolve category: %w", err)
	}
	e, err := in.Entry(catID)
	if err != nil {
		return 0, err
	}
	id, err := s.store.CreateEntry(ctx, e)
	if err != nil {
		return 0, err
	}
	s.changed(ctx, amqp.NewEntryEvent(amqp.EntryCreated, id, catID))
	s.logger.InfoContext(ctx, "Entry created",
		log.NewFields().WithEntry(id, e.Description, e.Amount.Cents, catID).WithOperation(log.OpCreate).ToSlice()...)
	return id, nil
}

// EditEntry overwrites the entry with a validated form.
func (s *BudgetService) EditEntry(ctx context.Context, id int64, in core.EntryInput) error {
	catID, err := s.ResolveCategory(ctx, in.Category)
	if err != nil {
		return fmt.Errorf("resolve category: %w", err)
	}
	e, err := in.Entry(catID)
	if err != nil {
		return err
	}
	e.ID = id
	if err := s.store.EditEntry(ctx, e); err != nil {
		return err
	}
	s.changed(ctx, amqp.NewEntryEvent(amqp.EntryUpdated, id, catID))
	return nil
}

func (s *BudgetService) DeleteEntry(ctx context.Context, id int64) error {
	if err := s.store.DeleteEntry(ctx, id); err != nil {
		return err
	}
	s.changed(ctx, amqp.NewEntryEvent(amqp.EntryDeleted, id, 0))
	return nil
}

// CreateCategory stores a validated category form.
func (s *BudgetService) CreateCategory(ctx context.Context, in core.CategoryInput) (int64, error) {
	limit, err := core.ParseAmount(in.Amount)
	if err != nil {
		return 0, err
	}
	id, err := s.store.CreateCategory(ctx, in.Name, limit)
	if err != nil {
		return 0, err
	}
	s.invalidate()
	s.logger.InfoContext(ctx, "Category created",
		log.NewFields().WithCategory(id, core.NormalizeCategoryName(in.Name)).WithOperation(log.OpCreate).ToSlice()...)
	return id, nil
}

func (s *BudgetService) EditCategory(ctx context.Context, id int64, in core.CategoryInput) error {
	limit, err := core.ParseAmount(in.Amount)
	if err != nil {
		return err
	}
	if err := s.store.EditCategory(ctx, id, in.Name, limit); err != nil {
		return err
	}
	s.invalidate()
	return nil
}

// DeleteCategory reassigns the category's entries to Uncategorized and
// removes it. See storage.Store.DeleteCategory.
func (s *BudgetService) DeleteCategory(ctx context.Context, id int64) error {
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return err
	}
	s.changed(ctx, amqp.NewCategoryEvent(amqp.CategoryDeleted, id))
	return nil
}

// changed invalidates cached overviews and announces evt.
func (s *BudgetService) changed(ctx context.Context, evt *amqp.BudgetEvent) {
	s.invalidate()
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishEvent(ctx, evt); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish budget event",
			log.FieldError, err, log.FieldEventType, evt.Type, log.FieldEventID, evt.ID)
	}
}

func (s *BudgetService) invalidate() {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	s.gen.Add(1)
	s.overviews.Purge()
}

// Ping checks the database.
func (s *BudgetService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}
