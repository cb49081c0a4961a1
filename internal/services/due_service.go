package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"jiceot/internal/amqp"
	"jiceot/internal/cache"
	"jiceot/internal/core"
	"jiceot/internal/log"
	"jiceot/internal/records"
	"jiceot/internal/schedule"
)

// lookbackMonths bounds how far back completion history is loaded when
// surfacing the latest completion of a type.
const lookbackMonths = 24

const DefaultUpcomingLimit = 5

// Filter selects which kinds a due list covers.
type Filter string

const (
	FilterAll      Filter = "all"
	FilterBills    Filter = "bills"
	FilterExpenses Filter = "expenses"
)

var ErrInvalidFilter = errors.New("invalid filter")

func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterBills, FilterExpenses:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidFilter, s)
	}
}

func (f Filter) kinds() []core.Kind {
	switch f {
	case FilterBills:
		return []core.Kind{core.KindBill}
	case FilterExpenses:
		return []core.Kind{core.KindExpense}
	default:
		return []core.Kind{core.KindBill, core.KindExpense}
	}
}

// DueEntry is a ranked due item with its form deep links.
type DueEntry struct {
	Item       schedule.DueItem
	Link       string
	SettleLink string
}

// DueList is the due-items view of one period.
type DueList struct {
	Period  core.Period
	Today   time.Time
	Entries []DueEntry
}

// Dashboard summarises the current month.
type Dashboard struct {
	Period           core.Period
	Today            time.Time
	TotalSpent       core.Money
	BillsPaid        int
	PendingBills     int
	PendingExpenses  int
	Categories       int
	UpcomingBills    []schedule.Obligation
	UpcomingExpenses []schedule.Obligation
	OnDemandBills    []core.ObligationType
}

type DueServiceConfig struct {
	DueSoonDays   *int // nil selects schedule.DefaultDueSoonDays
	UpcomingLimit int
	Location      *time.Location
	CacheTTL      time.Duration
	CacheSize     int
	Now           func() time.Time
}

// DueService answers the scheduling questions of the dashboard, due list
// and quick-add screens, and records completions.
type DueService struct {
	store     records.Store
	publisher amqp.Publisher
	logger    *log.Logger

	opts          schedule.Options
	upcomingLimit int
	loc           *time.Location
	now           func() time.Time

	dueCache   *cache.LRUCache[*DueList]
	dashCache  *cache.LRUCache[*Dashboard]
	quickCache *cache.LRUCache[[]schedule.Obligation]
}

// NewDueService wires the service. publisher may be nil.
func NewDueService(store records.Store, publisher amqp.Publisher, logger *log.Logger, cfg DueServiceConfig) *DueService {
	if cfg.UpcomingLimit <= 0 {
		cfg.UpcomingLimit = DefaultUpcomingLimit
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = 256
	}
	return &DueService{
		store:         store,
		publisher:     publisher,
		logger:        logger.WithComponent(log.ComponentDue),
		opts:          schedule.Options{DueSoonDays: cfg.DueSoonDays},
		upcomingLimit: cfg.UpcomingLimit,
		loc:           cfg.Location,
		now:           cfg.Now,
		dueCache:      cache.NewLRUCache[*DueList](cfg.CacheSize, cfg.CacheTTL),
		dashCache:     cache.NewLRUCache[*Dashboard](cfg.CacheSize, cfg.CacheTTL),
		quickCache:    cache.NewLRUCache[[]schedule.Obligation](cfg.CacheSize, cfg.CacheTTL),
	}
}

// Caches exposes the view caches for periodic expiry.
func (s *DueService) Caches() []cache.Cleaner {
	return []cache.Cleaner{s.dueCache, s.dashCache, s.quickCache}
}

// Today is the current calendar date in the configured zone.
func (s *DueService) Today() time.Time {
	return schedule.Today(s.now().In(s.loc))
}

type kindData struct {
	types   []core.ObligationType
	records []core.CompletionRecord
}

// load reads the non-stopped types of each kind and their completions in
// [from, to], one goroutine per kind. to is widened by the longest cycle so
// next-due periods are always covered.
func (s *DueService) load(ctx context.Context, kinds []core.Kind, from, to core.Period) (map[core.Kind]kindData, error) {
	results := make([]kindData, len(kinds))
	g, ctx := errgroup.WithContext(ctx)
	for i, k := range kinds {
		i, k := i, k
		g.Go(func() error {
			types, err := s.store.ListObligationTypes(ctx, k, false)
			if err != nil {
				return fmt.Errorf("list %s types: %w", k, err)
			}
			maxCycle := 0
			for _, t := range types {
				maxCycle = max(maxCycle, t.CycleMonths)
			}
			recs, err := s.store.ListCompletions(ctx, k, from, to.AddMonths(maxCycle))
			if err != nil {
				return fmt.Errorf("list %s completions: %w", k, err)
			}
			results[i] = kindData{types: types, records: recs}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[core.Kind]kindData, len(kinds))
	for i, k := range kinds {
		out[k] = results[i]
	}
	return out, nil
}

// DueItems lists the cyclic obligations of the viewed period, ranked, with
// prefill links. Stopped and on-demand types are not listed.
func (s *DueService) DueItems(ctx context.Context, view core.Period, filter Filter) (*DueList, error) {
	if err := view.Validate(); err != nil {
		return nil, err
	}
	today := s.Today()
	key := fmt.Sprintf("%s|%s|%s", view, filter, today.Format(time.DateOnly))
	if cached, ok := s.dueCache.Get(key); ok {
		return cached, nil
	}

	todayP := core.PeriodOf(today)
	from := minPeriod(view, todayP).AddMonths(-lookbackMonths)
	to := maxPeriod(view, todayP)

	data, err := s.load(ctx, filter.kinds(), from, to)
	if err != nil {
		return nil, fmt.Errorf("load due items: %w", err)
	}

	var items []schedule.DueItem
	for _, k := range filter.kinds() {
		d := data[k]
		byType := schedule.ByType(d.records)
		for _, t := range d.types {
			if t.OnDemand() {
				continue
			}
			items = append(items, schedule.EvaluatePeriod(t, byType[t.ID], view, today, s.opts))
		}
	}

	list := &DueList{Period: view, Today: today}
	for _, item := range schedule.RankDueItems(items) {
		p := item.LinkPeriod()
		list.Entries = append(list.Entries, DueEntry{
			Item:       item,
			Link:       schedule.PrefillLink(item.Obligation.Type, p, false),
			SettleLink: schedule.PrefillLink(item.Obligation.Type, p, true),
		})
	}

	s.logger.DebugContext(ctx, "Due items evaluated",
		log.FieldOperation, log.OpEvaluate,
		log.FieldPeriod, view.String(),
		log.FieldCount, len(list.Entries))

	s.dueCache.Set(key, list)
	return list, nil
}

// Dashboard builds the current-month summary.
func (s *DueService) Dashboard(ctx context.Context) (*Dashboard, error) {
	today := s.Today()
	key := today.Format(time.DateOnly)
	if cached, ok := s.dashCache.Get(key); ok {
		return cached, nil
	}

	current := core.PeriodOf(today)
	kinds := []core.Kind{core.KindBill, core.KindExpense}
	data, err := s.load(ctx, kinds, current.AddMonths(-lookbackMonths), current)
	if err != nil {
		return nil, fmt.Errorf("load dashboard: %w", err)
	}

	d := &Dashboard{Period: current, Today: today}
	var spent []core.Money
	for _, k := range kinds {
		for _, r := range data[k].records {
			if r.Period != current {
				continue
			}
			spent = append(spent, r.Amount)
			if k == core.KindBill {
				d.BillsPaid++
			}
		}
	}
	d.TotalSpent = core.Sum(spent...)
	d.Categories = len(data[core.KindExpense].types)

	d.UpcomingBills, d.PendingBills = s.upcoming(data[core.KindBill], current, today)
	d.UpcomingExpenses, d.PendingExpenses = s.upcoming(data[core.KindExpense], current, today)

	var onDemand []schedule.Obligation
	for _, t := range data[core.KindBill].types {
		if t.OnDemand() {
			onDemand = append(onDemand, schedule.Evaluate(t, nil, today, s.opts))
		}
	}
	for _, o := range schedule.Rank(onDemand) {
		d.OnDemandBills = append(d.OnDemandBills, o.Type)
	}

	s.dashCache.Set(key, d)
	return d, nil
}

// upcoming returns the open obligations due from today to the end of the
// current month, earliest first and truncated to the configured limit,
// plus the count before truncation.
func (s *DueService) upcoming(d kindData, current core.Period, today time.Time) ([]schedule.Obligation, int) {
	byType := schedule.ByType(d.records)
	var open []schedule.Obligation
	for _, t := range d.types {
		if t.OnDemand() {
			continue
		}
		o := schedule.Evaluate(t, byType[t.ID], today, s.opts)
		if o.HasCurrentPeriodCompletion || o.DaysUntilDue < 0 || o.DuePeriod().After(current) {
			continue
		}
		open = append(open, o)
	}
	ranked := schedule.Rank(open)
	pending := len(ranked)
	if len(ranked) > s.upcomingLimit {
		ranked = ranked[:s.upcomingLimit]
	}
	return ranked, pending
}

// QuickAdd lists every non-stopped type of kind in quick-add order:
// on-demand first, then by next due date.
func (s *DueService) QuickAdd(ctx context.Context, kind core.Kind) ([]schedule.Obligation, error) {
	if err := kind.Validate(); err != nil {
		return nil, err
	}
	today := s.Today()
	key := string(kind) + "|" + today.Format(time.DateOnly)
	if cached, ok := s.quickCache.Get(key); ok {
		return cached, nil
	}

	ranked, err := s.Obligations(ctx, kind, today)
	if err != nil {
		return nil, fmt.Errorf("load quick add: %w", err)
	}

	s.quickCache.Set(key, ranked)
	return ranked, nil
}

// Obligations evaluates every non-stopped type of kind as of today and
// returns them ranked. Results are not cached.
func (s *DueService) Obligations(ctx context.Context, kind core.Kind, today time.Time) ([]schedule.Obligation, error) {
	current := core.PeriodOf(today)
	data, err := s.load(ctx, []core.Kind{kind}, current, current)
	if err != nil {
		return nil, err
	}

	d := data[kind]
	byType := schedule.ByType(d.records)
	obs := make([]schedule.Obligation, 0, len(d.types))
	for _, t := range d.types {
		obs = append(obs, schedule.Evaluate(t, byType[t.ID], today, s.opts))
	}
	return schedule.Rank(obs), nil
}

// ListTypes returns the types of kind, optionally including stopped ones.
func (s *DueService) ListTypes(ctx context.Context, kind core.Kind, includeStopped bool) ([]core.ObligationType, error) {
	if err := kind.Validate(); err != nil {
		return nil, err
	}
	return s.store.ListObligationTypes(ctx, kind, includeStopped)
}

// CreateType validates and stores a new type. An unset start period
// anchors the cycle to the current month.
func (s *DueService) CreateType(ctx context.Context, t core.ObligationType) (core.ObligationType, error) {
	if t.StartPeriod.IsZero() && !t.OnDemand() {
		t.StartPeriod = core.PeriodOf(s.Today())
	}
	if err := t.Validate(); err != nil {
		return core.ObligationType{}, err
	}
	created, err := s.store.CreateObligationType(ctx, t)
	if err != nil {
		return core.ObligationType{}, fmt.Errorf("create obligation type: %w", err)
	}
	s.invalidate()

	s.logger.InfoContext(ctx, "Obligation type created",
		log.NewFields().
			WithObligation(created.ID, string(created.Kind), created.Name).
			WithOperation(log.OpCreate).
			ToSlice()...)
	return created, nil
}

// RecordCompletion stores a payment or expense item and publishes a
// completion event. A failed publish is logged, never returned; the
// record is already stored.
func (s *DueService) RecordCompletion(ctx context.Context, r core.CompletionRecord) (core.CompletionRecord, error) {
	if err := r.Validate(); err != nil {
		return core.CompletionRecord{}, err
	}
	created, err := s.store.CreateCompletion(ctx, r)
	if err != nil {
		return core.CompletionRecord{}, fmt.Errorf("record completion: %w", err)
	}
	s.invalidate()

	log.NewStructuredLogger(s.logger).LogCompletionRecorded(ctx,
		created.TypeID, string(created.Kind), created.Period.String(), created.Amount.Cents)

	if s.publisher != nil {
		if err := s.publisher.PublishCompletionRecorded(ctx, amqp.NewCompletionRecordedMessage(created)); err != nil {
			s.logger.ErrorContext(ctx, "Failed to publish completion event",
				log.FieldTypeID, created.TypeID,
				log.FieldError, err)
		}
	}
	return created, nil
}

func (s *DueService) invalidate() {
	s.dueCache.Purge()
	s.dashCache.Purge()
	s.quickCache.Purge()
}

func minPeriod(a, b core.Period) core.Period {
	if a.Before(b) {
		return a
	}
	return b
}

func maxPeriod(a, b core.Period) core.Period {
	if a.After(b) {
		return a
	}
	return b
}
