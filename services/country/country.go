package country

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	apperr "github.com/AbdulWasayUl/go-country-currency/internal/errors"
	"github.com/AbdulWasayUl/go-country-currency/internal/logger"
	"github.com/AbdulWasayUl/go-country-currency/internal/workpool"
	"github.com/AbdulWasayUl/go-country-currency/models"
)

const (
	serviceName          = "countries"
	defaultRenderTimeout = 30 * time.Second
)

// Upstream is the pair of external sources a refresh reads. A nil result
// means the source was unavailable.
type Upstream interface {
	FetchCountries(ctx context.Context) []RawCountry
	FetchExchangeRates(ctx context.Context) RateTable
}

// Renderer turns a refresh summary into a viewable artifact.
type Renderer interface {
	Render(ctx context.Context, summary RefreshSummary) error
}

type Service struct {
	upstream Upstream
	store    Store
	renderer Renderer
	pool     *workpool.WorkerPool

	rand          Rand
	now           func() time.Time
	renderTimeout time.Duration
	renders       sync.WaitGroup
}

type Option func(*Service)

// WithRand fixes the GDP multiplier source.
func WithRand(r Rand) Option {
	return func(s *Service) { s.rand = r }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithRenderTimeout(d time.Duration) Option {
	return func(s *Service) { s.renderTimeout = d }
}

// NewService wires the refresh pipeline. renderer may be nil.
func NewService(upstream Upstream, store Store, renderer Renderer, pool *workpool.WorkerPool, opts ...Option) *Service {
	s := &Service{
		upstream:      upstream,
		store:         store,
		renderer:      renderer,
		pool:          pool,
		rand:          globalRand{},
		now:           time.Now,
		renderTimeout: defaultRenderTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Refresh fetches both upstreams, merges them and upserts every record.
// Nothing is written unless both upstreams answered. The summary is
// rendered in the background once all upserts have finished.
func (s *Service) Refresh(ctx context.Context) (*RefreshResult, error) {
	logger.Info("[%s] Starting refresh...", serviceName)

	var (
		wg        sync.WaitGroup
		countries []RawCountry
		rates     RateTable
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		countries = s.upstream.FetchCountries(ctx)
	}()
	go func() {
		defer wg.Done()
		rates = s.upstream.FetchExchangeRates(ctx)
	}()
	wg.Wait()

	var missing []string
	if countries == nil {
		missing = append(missing, "countries API")
	}
	if rates == nil {
		missing = append(missing, "exchange rates API")
	}
	if len(missing) > 0 {
		logger.Error("[%s] Refresh aborted, unavailable upstream: %s", serviceName, strings.Join(missing, ", "))
		return nil, apperr.NewUpstreamUnavailable(missing...)
	}

	refreshedAt := s.now().UTC().Truncate(time.Millisecond)
	records := Merge(countries, rates, refreshedAt, s.rand)

	if err := s.reconcile(ctx, records); err != nil {
		return nil, apperr.NewInternal(err)
	}

	logger.Info("[%s] Refreshed %d of %d countries.", serviceName, len(records), len(countries))
	s.dispatchRender(Summarize(records, refreshedAt))

	return &RefreshResult{
		TotalCountries:  len(records),
		LastRefreshedAt: refreshedAt,
	}, nil
}

// reconcile upserts records through the worker pool and waits for all of them.
func (s *Service) reconcile(ctx context.Context, records []Country) error {
	done := make(chan error, len(records))

	var errs []error
	submitted := 0
	for _, rec := range records {
		rec := rec
		err := s.pool.Submit(ctx, models.Job{
			ID:      rec.Name,
			Service: serviceName,
			Run: func(ctx context.Context) error {
				return s.store.Upsert(ctx, rec)
			},
			Done: done,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to queue upsert for %q: %w", rec.Name, err))
			break
		}
		submitted++
	}

	failed := 0
	for i := 0; i < submitted; i++ {
		if err := <-done; err != nil {
			failed++
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%d of %d upserts failed: %w", failed, len(records), errors.Join(errs...))
	}
	return nil
}

func (s *Service) dispatchRender(summary RefreshSummary) {
	if s.renderer == nil {
		return
	}

	s.renders.Add(1)
	go func() {
		defer s.renders.Done()
		defer func() {
			if r := recover(); r != nil {
				logger.Error("[%s] Summary renderer panicked: %v", serviceName, r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), s.renderTimeout)
		defer cancel()

		if err := s.renderer.Render(ctx, summary); err != nil {
			logger.Error("[%s] Failed to render refresh summary: %v", serviceName, err)
			return
		}
		logger.Debug("[%s] Refresh summary rendered.", serviceName)
	}()
}

// Wait blocks until background renders have finished.
func (s *Service) Wait() {
	s.renders.Wait()
}

func (s *Service) List(ctx context.Context, filter Filter, sort SortKey) ([]Country, error) {
	return s.store.List(ctx, filter, sort)
}

func (s *Service) Get(ctx context.Context, name string) (*Country, error) {
	return s.store.GetByName(ctx, name)
}

func (s *Service) Delete(ctx context.Context, name string) error {
	return s.store.DeleteByName(ctx, name)
}

// Create validates and inserts a single country outside of a refresh.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Country, error) {
	if details := validate(in); len(details) > 0 {
		return nil, apperr.NewValidation(details)
	}

	name := strings.TrimSpace(in.Name)
	code := strings.ToUpper(strings.TrimSpace(in.CurrencyCode))
	rec := Country{
		Name:            name,
		NameKey:         NameKey(name),
		Capital:         optional(in.Capital),
		Region:          optional(in.Region),
		Population:      *in.Population,
		CurrencyCode:    &code,
		FlagURL:         optional(in.FlagURL),
		LastRefreshedAt: s.now().UTC().Truncate(time.Millisecond),
	}
	if in.ExchangeRate != nil {
		rate := *in.ExchangeRate
		rec.ExchangeRate = &rate
		gdp := EstimateGDP(rec.Population, rate, s.rand)
		rec.EstimatedGDP = &gdp
	}

	return s.store.Insert(ctx, rec)
}

func validate(in CreateInput) map[string]string {
	details := map[string]string{}
	if strings.TrimSpace(in.Name) == "" {
		details["name"] = "is required"
	}
	if in.Population == nil {
		details["population"] = "is required"
	} else if *in.Population < 0 {
		details["population"] = "must not be negative"
	}
	if strings.TrimSpace(in.CurrencyCode) == "" {
		details["currency_code"] = "is required"
	}
	if in.ExchangeRate != nil && *in.ExchangeRate <= 0 {
		details["exchange_rate"] = "must be positive"
	}
	return details
}

func (s *Service) Status(ctx context.Context) (*Status, error) {
	total, err := s.store.Count(ctx)
	if err != nil {
		return nil, err
	}
	last, err := s.store.MostRecentRefresh(ctx)
	if err != nil {
		return nil, err
	}
	return &Status{TotalCountries: total, LastRefreshedAt: last}, nil
}

// RunBatchJob runs a refresh on behalf of the scheduler.
func (s *Service) RunBatchJob(ctx context.Context) error {
	res, err := s.Refresh(ctx)
	if err != nil {
		return err
	}
	logger.Info("[%s] Scheduled refresh stored %d countries at %s.", serviceName, res.TotalCountries, res.LastRefreshedAt.Format(time.RFC3339))
	return nil
}
