package narrative

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/ridgeline/caseflow/internal/config"
	log "github.com/ridgeline/caseflow/internal/logging"
	"github.com/ridgeline/caseflow/internal/narrative/cache"
	"github.com/ridgeline/caseflow/internal/narrative/ledger"
	"github.com/ridgeline/caseflow/internal/narrative/upstream"
	"github.com/ridgeline/caseflow/internal/resilience"
	"github.com/ridgeline/caseflow/internal/usage"
)

// Endpoint names used for fingerprints, audit records and error logs.
const (
	endpointSummarize = "summarize-report"
	endpointInsights  = "behavioral-insights"
	endpointEnhance   = "enhance-report"
)

// Freshness windows per endpoint. Summaries and insights go stale with
// new point data; enhancement of a fixed draft can live longer.
const (
	summarizeTTL = 10 * time.Minute
	insightsTTL  = 10 * time.Minute
	enhanceTTL   = 30 * time.Minute
)

const codeServiceUnavailable = "service_unavailable"

// Service orchestrates one inbound request through cache lookup, quota
// admission, upstream invocation, classification and caching.
type Service struct {
	cfg     *config.Config
	models  ModelTable
	ledger  ledger.Store
	cache   *cache.Cache
	invoker upstream.Invoker
	errors  *errorRing
	audit   usage.Backend
	probes  singleflight.Group
}

// NewService wires a gateway service. audit may be nil.
func NewService(cfg *config.Config, invoker upstream.Invoker, audit usage.Backend) *Service {
	return &Service{
		cfg:     cfg,
		models:  NewModelTable(cfg.AI.StandardModel, cfg.AI.PremiumModel),
		ledger:  ledger.New(ledger.Limits(cfg.AI.Quotas)),
		cache:   cache.New(cfg.AI.CacheCapacity),
		invoker: invoker,
		errors:  newErrorRing(),
		audit:   audit,
	}
}

// Ledger exposes the admission store. Tests only.
func (s *Service) Ledger() ledger.Store { return s.ledger }

// Cache exposes the response cache. Tests only.
func (s *Service) Cache() *cache.Cache { return s.cache }

// SummarizeReport generates a prose summary for a report's raw data.
func (s *Service) SummarizeReport(ctx context.Context, clientKey string, req SummarizeRequest) (*SummarizeResponse, *Failure) {
	requestID := uuid.NewString()

	payload := map[string]any{
		"youth":      req.Youth,
		"reportType": req.ReportType,
		"period":     req.Period,
		"data":       req.Data,
	}
	result, cached, model, failure := s.generate(ctx, generateSpec{
		clientKey: clientKey,
		requestID: requestID,
		endpoint:  endpointSummarize,
		tier:      TierStandard,
		ttl:       summarizeTTL,
		payload:   payload,
		system:    summarizeSystemPrompt,
		user:      summarizeUserPrompt(req),
	})
	if failure != nil {
		return nil, failure
	}
	return &SummarizeResponse{
		Summary:   result.Text,
		Model:     model,
		Usage:     Usage{TokensUsed: tokensFor(result, cached)},
		RequestID: requestID,
		Cached:    cached,
	}, nil
}

// BehavioralInsights analyzes point-sheet data for patterns.
func (s *Service) BehavioralInsights(ctx context.Context, clientKey string, req InsightsRequest) (*InsightsResponse, *Failure) {
	requestID := uuid.NewString()

	payload := map[string]any{
		"behaviorData": req.BehaviorData,
		"youth":        req.Youth,
		"period":       req.Period,
	}
	result, cached, _, failure := s.generate(ctx, generateSpec{
		clientKey:  clientKey,
		requestID:  requestID,
		endpoint:   endpointInsights,
		tier:       TierPremium,
		ttl:        insightsTTL,
		payload:    payload,
		system:     insightsSystemPrompt,
		user:       insightsUserPrompt(req),
		structured: true,
	})
	if failure != nil {
		return nil, failure
	}

	insights := result.Structured
	if len(insights) == 0 {
		insights = map[string]any{"narrative": result.Text}
	}
	return &InsightsResponse{
		Insights:  insights,
		Usage:     Usage{TokensUsed: tokensFor(result, cached)},
		RequestID: requestID,
		Cached:    cached,
	}, nil
}

// EnhanceReport rewrites drafted report content into polished clinical
// language.
func (s *Service) EnhanceReport(ctx context.Context, clientKey string, req EnhanceRequest) (*EnhanceResponse, *Failure) {
	requestID := uuid.NewString()

	payload := map[string]any{
		"reportContent": req.ReportContent,
		"reportType":    req.ReportType,
		"youth":         req.Youth,
	}
	result, cached, _, failure := s.generate(ctx, generateSpec{
		clientKey: clientKey,
		requestID: requestID,
		endpoint:  endpointEnhance,
		tier:      TierPremium,
		ttl:       enhanceTTL,
		payload:   payload,
		system:    enhanceSystemPrompt,
		user:      enhanceUserPrompt(req),
	})
	if failure != nil {
		return nil, failure
	}
	return &EnhanceResponse{
		EnhancedContent: result.Text,
		OriginalLength:  len(req.ReportContent),
		EnhancedLength:  len(result.Text),
		Usage:           Usage{TokensUsed: tokensFor(result, cached)},
		RequestID:       requestID,
		Cached:          cached,
	}, nil
}

// tokensFor reports tokens charged for this response: zero on a cache
// hit, the real usage otherwise.
func tokensFor(result *upstream.GenerationResult, cached bool) int64 {
	if cached {
		return 0
	}
	return result.TokensUsed
}

type generateSpec struct {
	clientKey  string
	requestID  string
	endpoint   string
	tier       Tier
	ttl        time.Duration
	payload    map[string]any
	system     string
	user       string
	structured bool
}

// generate runs the per-request state machine: availability check,
// admission, cache lookup, upstream call, classification and cache
// write. Admission is charged exactly once per request, before the cache
// check, so hits and misses cost the same request unit. Token usage is
// recorded only for real upstream calls.
func (s *Service) generate(ctx context.Context, spec generateSpec) (*upstream.GenerationResult, bool, string, *Failure) {
	model := s.models.Resolve(spec.tier)

	if !s.cfg.UpstreamConfigured() {
		return nil, false, model, s.unavailable(spec, "ai generation is not configured")
	}

	if admission := s.ledger.Admit(spec.clientKey); !admission.Allowed {
		failure := &Failure{
			Error:      "daily usage limit reached",
			Code:       string(admission.Reason),
			Retryable:  false,
			Fallback:   true,
			RequestID:  spec.requestID,
			HTTPStatus: http.StatusTooManyRequests,
		}
		s.recordFailure(spec, failure)
		return nil, false, model, failure
	}

	fingerprint := cache.Fingerprint(spec.endpoint, model, spec.payload)
	if value, ok := s.cache.Lookup(fingerprint); ok {
		if result, ok := value.(*upstream.GenerationResult); ok {
			// Hits consume no upstream tokens.
			s.enqueueAudit(spec, 0, true, false)
			return result, true, model, nil
		}
	}

	result, err := s.invoker.Generate(ctx, upstream.GenerateParams{
		Model:            model,
		SystemPrompt:     spec.system,
		UserPrompt:       spec.user,
		MaxTokens:        s.cfg.AI.MaxTokens,
		Temperature:      s.cfg.AI.Temperature,
		StructuredOutput: spec.structured,
	})
	if err != nil {
		if errors.Is(err, upstream.ErrNotConfigured) || resilience.IsOpen(err) {
			return nil, false, model, s.unavailable(spec, "ai generation is temporarily unavailable")
		}
		classified := upstream.Classify(err)
		failure := &Failure{
			Error:      classified.Message,
			Code:       string(classified.Kind),
			Retryable:  classified.Retryable,
			Fallback:   true,
			RequestID:  spec.requestID,
			HTTPStatus: classified.HTTPStatus,
		}
		s.recordFailure(spec, failure)
		return nil, false, model, failure
	}

	s.ledger.RecordTokens(spec.clientKey, result.TokensUsed)
	s.cache.Store(fingerprint, result, spec.ttl)
	s.enqueueAudit(spec, result.TokensUsed, false, false)
	return result, false, model, nil
}

func (s *Service) unavailable(spec generateSpec, message string) *Failure {
	failure := &Failure{
		Error:      message,
		Code:       codeServiceUnavailable,
		Retryable:  true,
		Fallback:   true,
		RequestID:  spec.requestID,
		HTTPStatus: http.StatusServiceUnavailable,
	}
	s.recordFailure(spec, failure)
	return failure
}

func (s *Service) recordFailure(spec generateSpec, failure *Failure) {
	log.Warnf("narrative %s failed: %s (%s)", spec.endpoint, failure.Error, failure.Code)
	s.errors.add(ErrorRecord{
		Time:     time.Now(),
		Endpoint: spec.endpoint,
		Code:     failure.Code,
		Status:   failure.HTTPStatus,
		Message:  failure.Error,
	})
	s.enqueueAudit(spec, 0, false, true)
}

func (s *Service) enqueueAudit(spec generateSpec, tokens int64, cached, failed bool) {
	if s.audit == nil {
		return
	}
	s.audit.Enqueue(usage.Record{
		Endpoint:    spec.endpoint,
		Model:       s.models.Resolve(spec.tier),
		ClientKey:   spec.clientKey,
		RequestedAt: time.Now(),
		Cached:      cached,
		Failed:      failed,
		Tokens:      tokens,
	})
}

// Status reports governance and upstream health without charging quota.
// Concurrent probes are collapsed to a single upstream call.
func (s *Service) Status(ctx context.Context, clientKey string) StatusResponse {
	snap := s.ledger.Snapshot()

	resp := StatusResponse{
		Configured: s.cfg.UpstreamConfigured(),
		Model:      s.models.Resolve(TierStandard),
		Models:     s.models.Models(),
		Breaker:    s.invoker.BreakerState(),
		Limits: StatusLimits{
			GlobalDailyRequests:    snap.Limits.GlobalDailyRequests,
			GlobalDailyTokens:      snap.Limits.GlobalDailyTokens,
			PerClientDailyRequests: snap.Limits.PerClientDailyRequests,
			PerClientDailyTokens:   snap.Limits.PerClientDailyTokens,
		},
		DailyUsage: StatusUsage{
			Global:  snap.Global,
			Client:  s.ledger.ClientCounter(clientKey),
			Clients: snap.Clients,
		},
		Cache:  s.cache.Stats(),
		Errors: s.errors.recent(),
	}

	if s.audit != nil {
		resp.Audit = s.auditSummary(ctx)
	}

	if resp.Configured {
		_, err, _ := s.probes.Do("probe", func() (any, error) {
			return nil, s.invoker.Probe(ctx)
		})
		if err != nil {
			log.Debugf("upstream probe failed: %v", err)
		}
		resp.Available = err == nil
	}
	return resp
}

// auditSummary queries the audit backend for the trailing week. Any
// storage error degrades to a missing section rather than failing status.
func (s *Service) auditSummary(ctx context.Context) *StatusAudit {
	since := time.Now().AddDate(0, 0, -7)

	totals, err := s.audit.QueryGlobalStats(ctx, since)
	if err != nil {
		log.Debugf("audit totals unavailable: %v", err)
		return nil
	}
	summary := &StatusAudit{Totals: *totals}
	if daily, err := s.audit.QueryDailyStats(ctx, since); err == nil {
		summary.Daily = daily
	}
	if endpoints, err := s.audit.QueryEndpointStats(ctx, since); err == nil {
		summary.Endpoints = endpoints
	}
	return summary
}
