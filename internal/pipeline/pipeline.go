package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppiankov/trackmatch/internal/cache"
	"github.com/ppiankov/trackmatch/internal/catalog"
	"github.com/ppiankov/trackmatch/internal/extract"
	"github.com/ppiankov/trackmatch/internal/extract/adapters"
	"github.com/ppiankov/trackmatch/internal/llm"
	"github.com/ppiankov/trackmatch/internal/model"
	"github.com/ppiankov/trackmatch/internal/query"
	"github.com/ppiankov/trackmatch/internal/resolve"
	"github.com/ppiankov/trackmatch/internal/worker"
	"github.com/ppiankov/trackmatch/internal/ytdlp"
)

var (
	// ErrNoAdder is returned by Select when the catalog cannot add to playlists
	ErrNoAdder = errors.New("catalog does not support playlist adds")
	// ErrNoPlaylist is returned by Select when no playlist is configured
	ErrNoPlaylist = errors.New("no playlist configured")
)

// Prober obtains page fragments without scraping HTML
type Prober interface {
	Probe(ctx context.Context, url string) (*model.Page, error)
}

// Pipeline orchestrates one identify action: page fragments, song guess,
// catalog queries, resolution and the optional playlist add
type Pipeline struct {
	fetcher    *Fetcher
	registry   *adapters.Registry
	prober     Prober // Set when pages come from yt-dlp
	extractor  *extract.Extractor
	dispatcher *worker.Dispatcher
	resolver   *resolve.Resolver
	adder      catalog.PlaylistAdder
	advisor    *llm.Advisor // Optional (nil if disabled)
	renderer   *Renderer
	config     *model.Config
	logger     *zap.Logger
}

// endpointer is implemented by remote catalogs so searches can be rate
// limited per host
type endpointer interface {
	BaseURL() string
}

// NewPipeline wires a pipeline around an opened catalog client
func NewPipeline(cfg *model.Config, client catalog.Client, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}

	limiter := worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)

	var searcher catalog.Searcher = client
	if ep, ok := client.(endpointer); ok {
		searcher = catalog.NewLimited(searcher, limiter, ep.BaseURL())
	}
	if cfg.Cache.Enabled {
		c := cache.New(cfg.Cache.MemoryTTL, cfg.Cache.DiskDir, cfg.Cache.DiskTTL)
		searcher = catalog.NewCached(searcher, c, cfg.Cache.DiskTTL, logger)
	}

	var advisor *llm.Advisor
	if cfg.LLM.Provider != "" {
		a, err := llm.NewAdvisor(llm.ConfigFromModel(cfg.LLM))
		if err != nil {
			logger.Warn("LLM provider disabled", zap.Error(err))
		} else {
			advisor = a
		}
	}

	var prober Prober
	if cfg.Source.Kind == model.SourceYtdlp {
		prober = ytdlp.NewProber(cfg.Source.YtdlpPath)
	}

	return &Pipeline{
		fetcher:    NewFetcherFromConfig(cfg.HTTP, limiter),
		registry:   adapters.NewRegistry(),
		prober:     prober,
		extractor:  extract.NewExtractor(cfg.Extraction),
		dispatcher: worker.NewDispatcher(searcher, cfg.Concurrency.QueryWorkers, cfg.Catalog.SearchLimit, logger),
		resolver:   resolve.NewResolver(cfg.Matching),
		adder:      client,
		advisor:    advisor,
		renderer:   NewRenderer(cfg.Output.Color),
		config:     cfg,
		logger:     logger,
	}
}

// Identify loads the page at rawURL and runs the identify action on it
func (p *Pipeline) Identify(ctx context.Context, rawURL string) (*model.Report, error) {
	page, meta, err := p.loadPage(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	report := p.Run(ctx, *page)
	report.FetchMeta = meta
	if report.SourceURL == "" {
		report.SourceURL = rawURL
	}
	if report.Status == model.StatusCancelled {
		return report, fmt.Errorf("identify %s: %w", rawURL, context.Cause(ctx))
	}
	return report, nil
}

// loadPage obtains the page fragments from yt-dlp or by scraping the HTML
func (p *Pipeline) loadPage(ctx context.Context, rawURL string) (*model.Page, model.FetchMeta, error) {
	if p.prober != nil {
		page, err := p.prober.Probe(ctx, rawURL)
		if err != nil {
			return nil, model.FetchMeta{}, fmt.Errorf("probe: %w", err)
		}
		return page, model.FetchMeta{}, nil
	}

	res, err := p.fetcher.FetchWithRetry(ctx, rawURL)
	if err != nil {
		return nil, model.FetchMeta{}, fmt.Errorf("fetch: %w", err)
	}

	page, err := p.registry.Parse(res.HTML, res.FinalURL, res.Meta.ContentType)
	if err != nil {
		return nil, res.Meta, fmt.Errorf("parse page: %w", err)
	}
	return page, res.Meta, nil
}

// Run identifies the song on an already scraped page. It never fails:
// collaborator failures degrade into the report status.
func (p *Pipeline) Run(ctx context.Context, page model.Page) *model.Report {
	actionID := uuid.NewString()
	log := p.logger.With(zap.String("action_id", actionID))

	report := &model.Report{
		ActionID:  actionID,
		Subject:   model.SubjectFromPage(page),
		SourceURL: page.URL,
		FetchedAt: time.Now().UTC(),
		Page:      page,
	}

	hint := extract.LooksLikeMusic(page)
	report.MusicHint = hint.IsMusic
	if hint.IsMusic {
		log.Debug("page looks like music", zap.String("reason", hint.Reason))
	} else {
		log.Warn("page does not look like a music video", zap.String("title", page.Title))
	}

	signals, guess := p.extractor.ExtractPage(page)
	report.Signals = signals
	if guess == nil {
		report.Status = model.StatusUnidentified
		report.Message = model.MessageUnidentified
		log.Info("no song detected", zap.Int("signals", len(signals)))
		return report
	}
	report.Guess = guess

	log.Debug("song guess",
		zap.String("song", guess.Song),
		zap.String("artist", guess.Artist),
		zap.Int("confidence", guess.Confidence),
		zap.Strings("sources", kindNames(guess.Sources)),
	)

	queries := query.Distinct(query.Generate(*guess))
	candidates, stats := p.dispatcher.Dispatch(ctx, queries)
	report.Queries = stats

	// A partial candidate set is never resolved
	if err := ctx.Err(); err != nil {
		report.Status = model.StatusCancelled
		report.Message = model.MessageCancelled
		log.Warn("identify action cancelled", zap.Error(err), zap.Int("queries", len(stats)))
		return report
	}

	outcome := p.resolver.Resolve(candidates, *guess)
	report.Outcome = &outcome
	report.Status = model.StatusFor(outcome)

	switch outcome.Disposition {
	case model.DispositionAutoMatch:
		m := outcome.Match
		report.Message = fmt.Sprintf("matched %q by %s (%d%%)", m.Name, m.ArtistsDisplay(), m.DisplayConfidence())
		log.Info("auto match",
			zap.String("uri", m.URI),
			zap.Float64("confidence", m.Confidence),
			zap.Float64("song_similarity", m.SongSimilarity),
			zap.Float64("artist_similarity", m.ArtistSimilarity),
			zap.String("formula", p.resolver.Scorer().Formula()),
		)
		if p.config.Catalog.AutoAdd && p.config.Catalog.PlaylistID != "" {
			report.Added = p.add(ctx, log, m.URI)
		}

	case model.DispositionDisambiguate:
		report.Message = model.MessageDisambiguate
		top := outcome.Candidates[0]
		log.Info("disambiguation needed", zap.Int("candidates", len(outcome.Candidates)))
		log.Debug("best candidate below threshold",
			zap.String("uri", top.URI),
			zap.Float64("confidence", top.Confidence),
			zap.Float64("song_similarity", top.SongSimilarity),
			zap.Float64("artist_similarity", top.ArtistSimilarity),
		)
		if p.advisor != nil {
			report.LLM = p.advisor.Advise(ctx, *report)
		}

	default:
		report.Message = model.MessageNoMatch
		log.Info("no match", zap.Int("queries", len(queries)), zap.Int("candidates", len(candidates)))
	}

	return report
}

// Select adds a manually chosen candidate to the configured playlist. The
// candidate is not re-scored.
func (p *Pipeline) Select(ctx context.Context, candidate model.SearchCandidate) (*model.AddResult, error) {
	if p.adder == nil {
		return nil, ErrNoAdder
	}
	if p.config.Catalog.PlaylistID == "" {
		return nil, ErrNoPlaylist
	}
	if strings.TrimSpace(candidate.URI) == "" {
		return nil, errors.New("candidate has no uri")
	}

	res := p.add(ctx, p.logger, candidate.URI)
	if !res.OK {
		return res, fmt.Errorf("add to playlist: %s", res.Error)
	}
	return res, nil
}

// add performs the playlist add, reporting failure in the result
func (p *Pipeline) add(ctx context.Context, log *zap.Logger, uri string) *model.AddResult {
	res := &model.AddResult{URI: uri, PlaylistID: p.config.Catalog.PlaylistID}
	if p.adder == nil {
		res.Error = ErrNoAdder.Error()
		return res
	}
	if err := ctx.Err(); err != nil {
		res.Error = err.Error()
		return res
	}

	if err := p.adder.AddToPlaylist(ctx, res.PlaylistID, uri); err != nil {
		log.Warn("playlist add failed", zap.String("uri", uri), zap.Error(err))
		res.Error = err.Error()
		return res
	}

	log.Info("added to playlist", zap.String("uri", uri), zap.String("playlist_id", res.PlaylistID))
	res.OK = true
	return res
}

// Renderer returns the pipeline's renderer
func (p *Pipeline) Renderer() *Renderer {
	return p.renderer
}

// RenderReport renders the report to the specified outputs
func (p *Pipeline) RenderReport(report *model.Report, jsonPath string, mdPath string, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	// LLM note goes to a separate file so it is never mistaken for the result
	if report.LLM != nil && report.LLM.Enabled && mdPath != "" {
		llmMdPath := strings.TrimSuffix(mdPath, ".md") + ".llm.md"
		if err := p.renderer.RenderLLMMarkdown(llm.RenderSeparateMarkdown(report.LLM), llmMdPath); err != nil {
			p.logger.Warn("failed to write LLM note", zap.Error(err))
		} else if verbose {
			fmt.Printf("✓ Wrote LLM Note: %s\n", llmMdPath)
		}
	}

	p.renderer.RenderSummary(report)

	return nil
}

func kindNames(kinds []model.SignalKind) []string {
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = k.String()
	}
	return out
}
