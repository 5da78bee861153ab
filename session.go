// Copyright 2025 RnD Map contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package rndmap

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/ionplatox-blip/rnd-map-moscow-2025/core"
	"github.com/ionplatox-blip/rnd-map-moscow-2025/ingestion"
	"github.com/ionplatox-blip/rnd-map-moscow-2025/search"
	"github.com/ionplatox-blip/rnd-map-moscow-2025/semantic"
	"github.com/ionplatox-blip/rnd-map-moscow-2025/storage/badger"
)

// DefaultDebounce is the quiet period between the last query edit and the
// recompute it commits.
const DefaultDebounce = 500 * time.Millisecond

// Mode names the active result view.
type Mode int

const (
	// ModeLocal shows the lexically ranked organization list.
	ModeLocal Mode = iota
	// ModeSemantic shows the remote semantic result list.
	ModeSemantic
)

func (m Mode) String() string {
	if m == ModeSemantic {
		return "semantic"
	}
	return "local"
}

// Session wires the record store, the dataset loader, the lexical scorer
// and the semantic orchestrator into one search state machine. Ranking and
// highlight recomputes are synchronous; the only suspension points are the
// detail fetch and the semantic call. Exactly one of the local and semantic
// views is active at any time.
type Session struct {
	backend   *badger.Backend
	loader    *ingestion.Loader
	scorer    *search.Scorer
	orch      *semantic.Orchestrator
	debouncer *Debouncer
	logger    *slog.Logger

	mu            sync.Mutex
	organizations []*core.Organization
	index         search.MapIndex
	query         string
	pending       string
	scope         core.SearchScope
	tier          core.FundingTier
	ranking       *search.Ranking
	highlights    []string
	mode          Mode
	selected      *core.OrganizationDetail
	detailView    *search.DetailRanking
	pinned        string
}

// SessionOption configures a Session.
type SessionOption func(*sessionOptions)

type sessionOptions struct {
	cachePath       string
	dataBaseURL     string
	semanticBaseURL string
	debounce        time.Duration
	semanticTimeout time.Duration
	httpClient      *http.Client
	logger          *slog.Logger
	source          ingestion.DataSource
	searcher        semantic.Searcher
}

// WithCachePath stores the session cache at path instead of in memory.
func WithCachePath(path string) SessionOption {
	return func(o *sessionOptions) {
		o.cachePath = path
	}
}

// WithDataBaseURL sets the host serving the published dataset files.
// Default is the semantic service base URL, which serves both in the
// standard deployment.
func WithDataBaseURL(baseURL string) SessionOption {
	return func(o *sessionOptions) {
		o.dataBaseURL = baseURL
	}
}

// WithSemanticBaseURL sets the semantic search service base URL.
func WithSemanticBaseURL(baseURL string) SessionOption {
	return func(o *sessionOptions) {
		o.semanticBaseURL = baseURL
	}
}

// WithDebounce sets the query debounce interval. Non-positive commits every
// edit immediately, which tests rely on.
func WithDebounce(interval time.Duration) SessionOption {
	return func(o *sessionOptions) {
		o.debounce = interval
	}
}

// WithSemanticTimeout caps one semantic search round trip.
func WithSemanticTimeout(timeout time.Duration) SessionOption {
	return func(o *sessionOptions) {
		o.semanticTimeout = timeout
	}
}

// WithHTTPClient replaces the HTTP client used for dataset and semantic
// calls, mainly for tests.
func WithHTTPClient(httpClient *http.Client) SessionOption {
	return func(o *sessionOptions) {
		o.httpClient = httpClient
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) SessionOption {
	return func(o *sessionOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithDataSource replaces the HTTP dataset client, mainly for tests.
func WithDataSource(source ingestion.DataSource) SessionOption {
	return func(o *sessionOptions) {
		o.source = source
	}
}

// WithSemanticSearcher replaces the HTTP semantic client, mainly for tests.
func WithSemanticSearcher(searcher semantic.Searcher) SessionOption {
	return func(o *sessionOptions) {
		o.searcher = searcher
	}
}

// NewSession assembles a search session. With no options it uses an
// in-memory cache and the default service hosts.
func NewSession(opts ...SessionOption) (*Session, error) {
	options := &sessionOptions{
		debounce: DefaultDebounce,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	semCfgOpts := []semantic.ConfigOption{}
	if options.semanticBaseURL != "" {
		semCfgOpts = append(semCfgOpts, semantic.WithBaseURL(options.semanticBaseURL))
	}
	if options.semanticTimeout > 0 {
		semCfgOpts = append(semCfgOpts, semantic.WithRequestTimeout(options.semanticTimeout))
	}
	semCfg := semantic.NewConfig(semCfgOpts...)
	if err := semCfg.Validate(); err != nil {
		return nil, err
	}

	dataBaseURL := options.dataBaseURL
	if dataBaseURL == "" {
		dataBaseURL = semCfg.BaseURL
	}

	backend, err := badger.OpenBackend(options.cachePath, options.cachePath == "")
	if err != nil {
		return nil, err
	}

	orgRepo := badger.NewOrganizationRepository(backend)
	detailRepo := badger.NewDetailRepository(backend)
	textRepo := badger.NewTextIndexRepository(backend)
	snapshotRepo := badger.NewSnapshotRepository(backend)

	source := options.source
	if source == nil {
		clientOpts := []ingestion.ClientOption{ingestion.WithClientLogger(options.logger)}
		if options.httpClient != nil {
			clientOpts = append(clientOpts, ingestion.WithHTTPClient(options.httpClient))
		}
		source, err = ingestion.NewDatasetClient(dataBaseURL, clientOpts...)
		if err != nil {
			backend.Close()
			return nil, err
		}
	}

	loader, err := ingestion.NewLoader(source, orgRepo, detailRepo, textRepo, snapshotRepo,
		ingestion.WithLogger(options.logger))
	if err != nil {
		backend.Close()
		return nil, err
	}

	scorer, err := search.NewScorer(search.WithLogger(options.logger))
	if err != nil {
		loader.Release()
		backend.Close()
		return nil, err
	}

	searcher := options.searcher
	if searcher == nil {
		searcherOpts := []semantic.ClientOption{semantic.WithClientLogger(options.logger)}
		if options.httpClient != nil {
			searcherOpts = append(searcherOpts, semantic.WithHTTPClient(options.httpClient))
		}
		searcher, err = semantic.NewClient(semCfg, searcherOpts...)
		if err != nil {
			loader.Release()
			backend.Close()
			return nil, err
		}
	}

	orchOpts := []semantic.OrchestratorOption{semantic.WithLogger(options.logger)}
	if options.semanticTimeout > 0 {
		orchOpts = append(orchOpts, semantic.WithTimeout(options.semanticTimeout))
	}
	orch, err := semantic.NewOrchestrator(searcher, orchOpts...)
	if err != nil {
		loader.Release()
		backend.Close()
		return nil, err
	}

	s := &Session{
		backend: backend,
		loader:  loader,
		scorer:  scorer,
		orch:    orch,
		logger:  options.logger,
	}
	s.debouncer = NewDebouncer(options.debounce, s.commitPending)
	return s, nil
}

// Load fetches the dataset and computes the initial ranking. When the fetch
// fails but a cached snapshot exists, the session serves the cache and the
// fetch error is only logged.
func (s *Session) Load(ctx context.Context) error {
	result, err := s.loader.Load(ctx)
	if err != nil {
		cached, cacheErr := s.loader.LoadCached(ctx)
		if cacheErr != nil {
			return err
		}
		s.logger.Warn("dataset fetch failed, serving cached snapshot", "err", err)
		result = cached
	}

	s.mu.Lock()
	s.organizations = result.Organizations
	s.index = search.MapIndex(result.Entries)
	s.recomputeLocked()
	s.mu.Unlock()
	return nil
}

// recomputeLocked applies the funding filter and refreshes the ranking and
// the highlight set. Callers hold s.mu.
func (s *Session) recomputeLocked() {
	filtered := s.organizations
	if s.tier != core.TierAll {
		filtered = make([]*core.Organization, 0, len(s.organizations))
		for _, org := range s.organizations {
			if s.tier.Matches(org.TotalFunding) {
				filtered = append(filtered, org)
			}
		}
	}
	s.ranking = s.scorer.Rank(filtered, s.query, s.scope, s.index)
	s.highlights = search.Highlights(s.ranking, s.query)
}

// SetQueryInput records a query edit. The edit is committed after the
// debounce interval of quiet; each further edit restarts the interval.
func (s *Session) SetQueryInput(input string) {
	s.mu.Lock()
	s.pending = input
	s.mu.Unlock()
	s.debouncer.Trigger()
}

func (s *Session) commitPending() {
	s.mu.Lock()
	s.query = s.pending
	s.recomputeLocked()
	s.mu.Unlock()
}

// CommitQuery sets the query and recomputes immediately, superseding any
// pending debounced edit.
func (s *Session) CommitQuery(query string) {
	s.debouncer.Stop()
	s.mu.Lock()
	s.pending = query
	s.query = query
	s.recomputeLocked()
	s.mu.Unlock()
}

// ToggleScope applies a scope selection and recomputes. Selecting the
// active scope again returns to unrestricted matching. The new scope is
// returned.
func (s *Session) ToggleScope(target core.SearchScope) core.SearchScope {
	s.mu.Lock()
	s.scope = s.scope.Toggle(target)
	scope := s.scope
	s.recomputeLocked()
	s.mu.Unlock()
	return scope
}

// SetFundingTier sets the funding filter and recomputes.
func (s *Session) SetFundingTier(tier core.FundingTier) {
	s.mu.Lock()
	s.tier = tier
	s.recomputeLocked()
	s.mu.Unlock()
}

// SelectOrganization loads the detail record for ogrn, makes it the current
// selection and ranks its lists against the committed query. Reselecting
// while a fetch is in flight is allowed; the last response to arrive wins.
func (s *Session) SelectOrganization(ctx context.Context, ogrn string) (*core.OrganizationDetail, error) {
	return s.selectWithPin(ctx, ogrn, "")
}

// SelectPinned selects ogrn like SelectOrganization and pins the given
// project or asset identifier at the head of the detail ranking.
func (s *Session) SelectPinned(ctx context.Context, ogrn, pinned string) (*core.OrganizationDetail, error) {
	return s.selectWithPin(ctx, ogrn, pinned)
}

func (s *Session) selectWithPin(ctx context.Context, ogrn, pinned string) (*core.OrganizationDetail, error) {
	detail, err := s.loader.GetDetail(ctx, ogrn)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.selected = detail
	s.pinned = pinned
	s.detailView = search.RankDetail(detail, s.query, pinned)
	s.mode = ModeLocal
	s.mu.Unlock()
	return detail, nil
}

// ClearSelection drops the current selection and its ranked detail view.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	s.clearSelectionLocked()
	s.mu.Unlock()
}

func (s *Session) clearSelectionLocked() {
	s.selected = nil
	s.detailView = nil
	s.pinned = ""
}

// InvokeSemanticSearch switches to the semantic view, clears the selection
// and starts a remote search. Progress and results are read through
// SemanticState and SemanticResults.
func (s *Session) InvokeSemanticSearch(query string) {
	s.mu.Lock()
	s.mode = ModeSemantic
	s.clearSelectionLocked()
	s.mu.Unlock()
	s.orch.Invoke(query)
}

// SelectSemanticResult returns to the local view, loads the organization
// owning the result and pins the result's project at the head of the detail
// ranking.
func (s *Session) SelectSemanticResult(ctx context.Context, result core.SemanticResult) (*core.OrganizationDetail, error) {
	return s.selectWithPin(ctx, result.CenterID, result.ProjectID)
}

// ReturnToSearchResults restores the semantic view with its retained result
// list. The remote call is not re-invoked.
func (s *Session) ReturnToSearchResults() {
	s.mu.Lock()
	s.mode = ModeSemantic
	s.clearSelectionLocked()
	s.mu.Unlock()
}

// WarmDetails prefetches detail records into the session cache.
func (s *Session) WarmDetails(ctx context.Context, ogrns []string) (*ingestion.WarmStats, error) {
	return s.loader.WarmDetails(ctx, ogrns)
}

// Organizations returns the loaded dataset in dataset order.
func (s *Session) Organizations() []*core.Organization {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.organizations
}

// Query returns the committed query.
func (s *Session) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// Scope returns the active search scope.
func (s *Session) Scope() core.SearchScope {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scope
}

// FundingTier returns the active funding filter.
func (s *Session) FundingTier() core.FundingTier {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tier
}

// Ranking returns the current ranked view, nil before the first Load.
func (s *Session) Ranking() *search.Ranking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ranking
}

// Highlights returns the OGRNs the map surface should emphasize.
func (s *Session) Highlights() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.highlights
}

// Mode returns the active result view.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Selected returns the current detail selection, nil when none.
func (s *Session) Selected() *core.OrganizationDetail {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// DetailView returns the ranked lists of the current selection, nil when
// none.
func (s *Session) DetailView() *search.DetailRanking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detailView
}

// Pinned returns the identifier pinned at the head of the detail ranking.
func (s *Session) Pinned() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pinned
}

// SemanticState returns the orchestrator state.
func (s *Session) SemanticState() semantic.State {
	return s.orch.State()
}

// SemanticResults returns the retained semantic result list.
func (s *Session) SemanticResults() []core.SemanticResult {
	return s.orch.Results()
}

// SemanticErr returns the failure of the last semantic search, if any.
func (s *Session) SemanticErr() error {
	return s.orch.Err()
}

// RewrittenQuery returns the service's rewritten form of the last semantic
// query, when provided.
func (s *Session) RewrittenQuery() string {
	return s.orch.RewrittenQuery()
}

// Close stops timers, the orchestrator and the loader, then closes the
// session store.
func (s *Session) Close() error {
	s.debouncer.Stop()
	if err := s.orch.Close(); err != nil {
		s.logger.Error("error closing semantic orchestrator", "err", err)
	}
	s.loader.Release()

	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing session store", "err", err)
		return err
	}
	return nil
}
