package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"feedsweep/domain"
	"feedsweep/internal/cron"
	"feedsweep/internal/oplog"
)

// SweepService drives the recurring ingestion sweep: every tick it loads the
// active feeds, gates each one on its cron expression, and fetches the due
// ones through a bounded worker fan-out.
type SweepService struct {
	store     domain.Store
	fetcher   domain.DocumentFetcher
	logs      *oplog.Buffer
	logger    *slog.Logger
	limiter   *rate.Limiter
	threshold int
	now       func() time.Time

	mu             sync.Mutex
	interval       time.Duration
	workers        int
	ctx            context.Context
	cancel         context.CancelFunc
	tickerStopChan chan struct{}
	started        bool
}

type Options struct {
	Interval         time.Duration
	Workers          int
	FailureThreshold int
	FetchRate        float64 // outbound fetches per second across all workers; <= 0 disables the limit
	Logger           *slog.Logger
	Now              func() time.Time // test hook
}

func NewSweeper(store domain.Store, fetcher domain.DocumentFetcher, logs *oplog.Buffer, opts Options) *SweepService {
	if opts.Interval <= 0 {
		opts.Interval = time.Minute
	}
	if opts.Workers <= 0 {
		opts.Workers = 3
	}
	if opts.FailureThreshold <= 0 {
		opts.FailureThreshold = 2
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	limit := rate.Inf
	if opts.FetchRate > 0 {
		limit = rate.Limit(opts.FetchRate)
	}
	return &SweepService{
		store:     store,
		fetcher:   fetcher,
		logs:      logs,
		logger:    opts.Logger,
		limiter:   rate.NewLimiter(limit, 1),
		threshold: opts.FailureThreshold,
		now:       opts.Now,
		interval:  opts.Interval,
		workers:   opts.Workers,
	}
}

func (s *SweepService) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return errors.New("sweeper already started")
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.tickerStopChan = make(chan struct{})
	go s.loop()
	s.started = true
	return nil
}

func (s *SweepService) Stop() error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	cancel := s.cancel
	stopCh := s.tickerStopChan
	s.started = false
	s.mu.Unlock()

	close(stopCh)
	cancel()
	return nil
}

func (s *SweepService) SetInterval(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		s.interval = d
		return
	}
	// signal loop to restart its ticker by replacing the stop channel
	close(s.tickerStopChan)
	s.tickerStopChan = make(chan struct{})
	s.interval = d
}

func (s *SweepService) Resize(workers int) error {
	if workers <= 0 {
		return errors.New("workers must be > 0")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workers = workers
	return nil
}

func (s *SweepService) CurrentInterval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

func (s *SweepService) CurrentWorkers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.workers
}

// SweepNow runs one sweep immediately, outside the ticker cadence.
func (s *SweepService) SweepNow(ctx context.Context) domain.SweepResult {
	return s.Sweep(ctx, s.now())
}

// Sweep evaluates every active feed against now and fetches the due ones.
// It never fails outright: a feed-set load error is reported on the result.
func (s *SweepService) Sweep(ctx context.Context, now time.Time) domain.SweepResult {
	feeds, err := s.store.ActiveFeeds(ctx)
	if err != nil {
		s.logger.Error("sweep: loading active feeds failed", "err", err)
		s.logs.Append("error", "sweep_load_failed", map[string]any{"error": err.Error()})
		return domain.SweepResult{Error: err.Error()}
	}

	res := domain.SweepResult{Feeds: len(feeds)}

	var due []domain.FeedSource
	for _, f := range feeds {
		if cron.Matches(f.Cron, now) {
			due = append(due, f)
		}
	}
	if len(due) == 0 {
		return res
	}

	s.mu.Lock()
	workers := s.workers
	s.mu.Unlock()

	results := make(chan domain.FeedOutcome, len(due))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for _, f := range due {
		wg.Add(1)
		go func(f domain.FeedSource) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			if err := s.limiter.Wait(ctx); err != nil {
				// only happens on shutdown; the next sweep retries in full
				results <- domain.FeedOutcome{FeedName: f.Name, Success: false, Error: err.Error()}
				return
			}
			results <- s.FetchFeed(ctx, f)
		}(f)
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	for out := range results {
		res.Fetched++
		res.Outcomes = append(res.Outcomes, out)
	}

	s.logs.Append("sweep", "sweep_complete", map[string]any{
		"feeds": res.Feeds, "fetched": res.Fetched,
	})
	s.logger.Info("sweep complete", "feeds", res.Feeds, "fetched", res.Fetched)
	return res
}

func (s *SweepService) loop() {
	for {
		s.mu.Lock()
		interval := s.interval
		stopCh := s.tickerStopChan
		s.mu.Unlock()

		ticker := time.NewTicker(interval)
		select {
		case <-s.ctx.Done():
			ticker.Stop()
			return
		case <-stopCh:
			ticker.Stop()
			continue
		case <-ticker.C:
			ticker.Stop()
		}

		s.Sweep(s.ctx, s.now())
	}
}
