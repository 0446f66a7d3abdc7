package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sells-group/leadscout/internal/extract"
	"github.com/sells-group/leadscout/internal/model"
)

// PageFetcher fetches a directory page. Satisfied by fetch.Fetcher.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*model.Page, error)
}

// Enricher resolves contact details for a single listing. The contact
// paths come from the job's selector profile; empty means the enricher's
// own default order. Satisfied by enrich.Enricher.
type Enricher interface {
	Enrich(ctx context.Context, listing model.Listing, contactPaths []string) model.Lead
}

// BatchFunc receives leads in order as they are finalized. It is
// called once per full batch and once more with the remainder when the
// run ends or is stopped.
type BatchFunc func(batch []model.Lead)

// Config holds the pacing and batching knobs for a run.
type Config struct {
	PageDelay    time.Duration // minimum gap between directory page fetches
	SiteDelay    time.Duration // minimum gap between enrichment site visits
	BackoffEvery int           // extra pause after this many pages, 0 disables
	BackoffDelay time.Duration
	BatchSize    int
	Workers      int // enrichment concurrency, 1 means sequential
}

func (c Config) withDefaults() Config {
	if c.PageDelay <= 0 {
		c.PageDelay = 2 * time.Second
	}
	if c.SiteDelay <= 0 {
		c.SiteDelay = time.Second
	}
	if c.BackoffDelay <= 0 {
		c.BackoffDelay = 10 * time.Second
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 10
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	return c
}

// Job describes one scraping run.
type Job struct {
	BaseURL        string
	TotalPages     int
	Profile        extract.SelectorProfile
	SkipEnrichment bool
	Dedup          bool
}

// Runner drives the two-phase pipeline: listing collection across the
// directory pages, then contact enrichment per listing. A Runner
// executes one run at a time; Progress and Leads may be called from
// other goroutines while Run is in flight.
type Runner struct {
	fetcher  PageFetcher
	enricher Enricher
	cfg      Config
	control  *Control

	mu       sync.Mutex
	running  bool
	progress model.Progress
	leads    []model.Lead
	errors   []string
	counts   struct {
		pagesOK, pagesFailed int
		withEmail, withPhone int
		enriched             int
	}
}

func NewRunner(fetcher PageFetcher, enricher Enricher, cfg Config) *Runner {
	return &Runner{
		fetcher:  fetcher,
		enricher: enricher,
		cfg:      cfg.withDefaults(),
		control:  NewControl(),
	}
}

func (r *Runner) Pause()  { r.control.Pause() }
func (r *Runner) Resume() { r.control.Resume() }
func (r *Runner) Stop()   { r.control.Stop() }

func (r *Runner) Control() *Control { return r.control }

// Running reports whether a run is currently in flight.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Progress returns a snapshot of the current run state.
func (r *Runner) Progress() model.Progress {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.progress
	p.Paused = r.control.Paused()
	return p
}

// Leads returns a copy of the leads finalized so far.
func (r *Runner) Leads() []model.Lead {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Lead, len(r.leads))
	copy(out, r.leads)
	return out
}

// Run executes the job and streams finalized leads to onBatch. It
// returns the run statistics; the error is non-nil only when the run
// could not start at all.
func (r *Runner) Run(ctx context.Context, job Job, onBatch BatchFunc) (*model.RunStats, error) {
	if job.BaseURL == "" {
		return nil, eris.New("pipeline: base url is required")
	}
	if job.TotalPages < 1 {
		return nil, eris.Errorf("pipeline: total pages %d out of range", job.TotalPages)
	}
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil, eris.New("pipeline: a run is already in flight")
	}
	runID := uuid.NewString()
	r.control.Reset()
	r.running = true
	r.leads = nil
	r.errors = nil
	r.counts.pagesOK, r.counts.pagesFailed = 0, 0
	r.counts.withEmail, r.counts.withPhone, r.counts.enriched = 0, 0, 0
	r.progress = model.Progress{
		RunID:      runID,
		Phase:      model.PhaseListing,
		TotalPages: job.TotalPages,
		Status:     "scraping directory pages",
	}
	r.mu.Unlock()

	start := time.Now()
	log := zap.L().With(zap.String("run_id", runID), zap.String("base_url", job.BaseURL))
	log.Info("run started", zap.Int("total_pages", job.TotalPages))

	listings, stopped := r.collectListings(ctx, job, log)
	if job.Dedup {
		listings = extract.Dedup(listings)
	}

	if !stopped && !job.SkipEnrichment {
		stopped = r.enrichListings(ctx, job, listings, onBatch, log)
	} else {
		r.finalizeOffline(listings, job.SkipEnrichment, onBatch)
	}

	r.mu.Lock()
	stats := &model.RunStats{
		RunID:          runID,
		PagesOK:        r.counts.pagesOK,
		PagesFailed:    r.counts.pagesFailed,
		LeadsFound:     len(r.leads),
		LeadsWithEmail: r.counts.withEmail,
		LeadsWithPhone: r.counts.withPhone,
		LeadsEnriched:  r.counts.enriched,
		EnrichmentRate: model.Rate(r.counts.enriched, len(r.leads)),
		Stopped:        stopped,
		Duration:       time.Since(start),
		Errors:         append([]string(nil), r.errors...),
	}
	if stopped {
		r.progress.Phase = model.PhaseStopped
		r.progress.Status = "stopped"
	} else {
		r.progress.Phase = model.PhaseDone
		r.progress.Percent = 100
		r.progress.Status = "done"
	}
	r.running = false
	r.mu.Unlock()

	log.Info("run finished",
		zap.Int("leads", stats.LeadsFound),
		zap.Int("enriched", stats.LeadsEnriched),
		zap.Bool("stopped", stats.Stopped),
		zap.Duration("took", stats.Duration))
	return stats, nil
}

// collectListings runs phase one: walk the directory pages in order,
// fetching and extracting each. Page failures are recorded and the
// walk continues; only stop, pause-into-stop, or context cancellation
// end it early.
func (r *Runner) collectListings(ctx context.Context, job Job, log *zap.Logger) ([]model.Listing, bool) {
	param := job.Profile.PaginationParam
	if param == "" {
		param = InferPaginationParam(job.BaseURL)
	}
	perPage := job.Profile.ItemsPerPage
	if perPage <= 0 {
		perPage = 20
	}

	limiter := rate.NewLimiter(rate.Every(r.cfg.PageDelay), 1)
	extractor := extract.New(job.Profile)

	var listings []model.Listing
	for page := 1; page <= job.TotalPages; page++ {
		if r.control.Stopped() || !r.control.WaitWhilePaused(ctx) {
			return listings, true
		}
		if err := limiter.Wait(ctx); err != nil {
			return listings, true
		}
		// Stop may have landed while we waited; check again before
		// touching the network.
		if r.control.Stopped() {
			return listings, true
		}

		pageURL, err := PageURL(job.BaseURL, param, page, perPage)
		if err != nil {
			r.recordPageFailure(page, err, log)
			continue
		}
		r.setListingProgress(page, job.TotalPages, len(listings))

		doc, err := r.fetcher.Fetch(ctx, pageURL)
		if err != nil {
			r.recordPageFailure(page, err, log)
			continue
		}
		found, err := extractor.Listings(doc.HTML, pageURL)
		if err != nil {
			r.recordPageFailure(page, err, log)
			continue
		}

		listings = append(listings, found...)
		r.mu.Lock()
		r.counts.pagesOK++
		r.progress.LeadsFound = len(listings)
		r.mu.Unlock()
		log.Debug("page scraped", zap.Int("page", page), zap.Int("listings", len(found)))

		if r.cfg.BackoffEvery > 0 && page%r.cfg.BackoffEvery == 0 && page < job.TotalPages {
			log.Debug("periodic backoff", zap.Duration("delay", r.cfg.BackoffDelay))
			select {
			case <-ctx.Done():
				return listings, true
			case <-time.After(r.cfg.BackoffDelay):
			}
		}
	}
	return listings, false
}

// enrichListings runs phase two. Leads are finalized in listing order
// regardless of worker count and emitted in batches. Returns true when
// the run was stopped before all listings were processed; the batch
// already collected is flushed either way.
func (r *Runner) enrichListings(ctx context.Context, job Job, listings []model.Listing, onBatch BatchFunc, log *zap.Logger) bool {
	r.mu.Lock()
	r.progress.Phase = model.PhaseEnrichment
	r.progress.Status = "enriching leads"
	r.mu.Unlock()

	limiter := rate.NewLimiter(rate.Every(r.cfg.SiteDelay), 1)
	results := make([]model.Lead, len(listings))
	done := make([]bool, len(listings))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)

	stopped := false
	next := 0 // next result index to finalize, guarded by r.mu
	var pending []model.Lead

	flush := func(force bool) {
		r.mu.Lock()
		for next < len(listings) && done[next] {
			lead := results[next]
			r.leads = append(r.leads, lead)
			if lead.Email != "" {
				r.counts.withEmail++
			}
			if lead.Phone != "" {
				r.counts.withPhone++
			}
			if lead.Enriched {
				r.counts.enriched++
			}
			if lead.Status == model.StatusFailed {
				r.progress.Errored++
				r.errors = append(r.errors, fmt.Sprintf("lead %q: %s", lead.CompanyName, model.ErrEnrichmentFailed))
			}
			r.progress.LeadsEnriched = next + 1
			r.progress.Percent = 50 + 50*float64(next+1)/float64(len(listings))
			pending = append(pending, lead)
			next++
		}
		var batch []model.Lead
		if len(pending) >= r.cfg.BatchSize || (force && len(pending) > 0) {
			batch = pending
			pending = nil
		}
		r.mu.Unlock()
		if batch != nil && onBatch != nil {
			onBatch(batch)
		}
	}

	process := func(i int, listing model.Listing) {
		results[i] = r.enricher.Enrich(gctx, listing, job.Profile.ContactPaths)
		r.mu.Lock()
		done[i] = true
		r.mu.Unlock()
		flush(false)
	}

	for i, listing := range listings {
		if r.control.Stopped() || !r.control.WaitWhilePaused(ctx) {
			stopped = true
			break
		}
		if err := limiter.Wait(gctx); err != nil {
			stopped = true
			break
		}
		if r.control.Stopped() {
			stopped = true
			break
		}
		if r.cfg.Workers == 1 {
			// Sequential mode keeps stop and pause exact: the flag is
			// always observed between leads, never mid-flight.
			process(i, listing)
			continue
		}
		i, listing := i, listing
		g.Go(func() error {
			process(i, listing)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Warn("enrichment group error", zap.Error(err))
	}
	flush(true)
	return stopped
}

// finalizeOffline closes out leads without visiting any external site.
// It is used when enrichment is disabled or when the run was stopped
// during the listing phase. With enrichment disabled, the external
// website rule still applies: a listing without a site fails, anything
// else completes on the data the directory page already gave us.
// Stopped listings keep their pending status.
func (r *Runner) finalizeOffline(listings []model.Listing, skipped bool, onBatch BatchFunc) {
	var batch []model.Lead
	emit := func() {
		if len(batch) > 0 && onBatch != nil {
			onBatch(batch)
			batch = nil
		}
	}
	for i, listing := range listings {
		lead := model.NewLead(listing)
		if skipped {
			if listing.ExternalWebsite == "" {
				lead.Finalize(model.StatusFailed)
			} else {
				lead.Finalize(model.StatusCompleted)
			}
		}
		r.mu.Lock()
		r.leads = append(r.leads, lead)
		if lead.Email != "" {
			r.counts.withEmail++
		}
		if lead.Phone != "" {
			r.counts.withPhone++
		}
		if lead.Enriched {
			r.counts.enriched++
		}
		if lead.Status == model.StatusFailed {
			r.progress.Errored++
			r.errors = append(r.errors, fmt.Sprintf("lead %q: %s", lead.CompanyName, model.ErrEnrichmentFailed))
		}
		r.progress.LeadsEnriched = i + 1
		size := r.cfg.BatchSize
		r.mu.Unlock()
		batch = append(batch, lead)
		if len(batch) >= size {
			emit()
		}
	}
	emit()
}

func (r *Runner) recordPageFailure(page int, err error, log *zap.Logger) {
	log.Warn("page failed", zap.Int("page", page), zap.Error(err))
	r.mu.Lock()
	r.counts.pagesFailed++
	r.progress.Errored++
	r.errors = append(r.errors, fmt.Sprintf("page %d: %s", page, eris.ToString(err, false)))
	r.mu.Unlock()
}

func (r *Runner) setListingProgress(page, total, found int) {
	r.mu.Lock()
	r.progress.CurrentPage = page
	r.progress.LeadsFound = found
	r.progress.Percent = 50 * float64(page-1) / float64(total)
	r.mu.Unlock()
}
