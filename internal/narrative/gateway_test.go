package narrative

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/ridgeline/caseflow/internal/config"
	"github.com/ridgeline/caseflow/internal/narrative/ledger"
	"github.com/ridgeline/caseflow/internal/narrative/upstream"
	"github.com/ridgeline/caseflow/internal/records"
	"github.com/ridgeline/caseflow/internal/usage"
)

type stubInvoker struct {
	calls  int
	result *upstream.GenerationResult
	err    error
	probe  error
}

func (s *stubInvoker) Generate(_ context.Context, _ upstream.GenerateParams) (*upstream.GenerationResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubInvoker) Probe(context.Context) error { return s.probe }

func (s *stubInvoker) BreakerState() string { return "closed" }

func testConfig() *config.Config {
	cfg := config.NewDefaultConfig()
	cfg.AI.APIKey = "sk-test"
	return cfg
}

func summarizeReq() SummarizeRequest {
	return SummarizeRequest{
		Youth:      records.Youth{FirstName: "Jamal", LastName: "Washington"},
		ReportType: "weekly",
		Period:     records.Period{Start: "2026-03-01", End: "2026-03-07"},
		Data:       map[string]any{"notes": []any{"Calm week."}},
	}
}

func TestSummarizeSuccessRecordsUsage(t *testing.T) {
	invoker := &stubInvoker{result: &upstream.GenerationResult{Text: "A calm week.", TokensUsed: 120}}
	svc := NewService(testConfig(), invoker, nil)

	resp, failure := svc.SummarizeReport(context.Background(), "client-a", summarizeReq())
	if failure != nil {
		t.Fatalf("unexpected failure: %+v", failure)
	}
	if resp.Summary != "A calm week." {
		t.Errorf("summary = %q", resp.Summary)
	}
	if resp.Cached {
		t.Error("first response marked cached")
	}
	if resp.Usage.TokensUsed != 120 {
		t.Errorf("tokens = %d, want 120", resp.Usage.TokensUsed)
	}
	if resp.RequestID == "" {
		t.Error("request id empty")
	}

	counter := svc.Ledger().ClientCounter("client-a")
	if counter.Requests != 1 || counter.Tokens != 120 {
		t.Errorf("client counter = %+v, want 1 request / 120 tokens", counter)
	}
}

func TestRepeatRequestServedFromCache(t *testing.T) {
	invoker := &stubInvoker{result: &upstream.GenerationResult{Text: "A calm week.", TokensUsed: 120}}
	svc := NewService(testConfig(), invoker, nil)

	if _, failure := svc.SummarizeReport(context.Background(), "client-a", summarizeReq()); failure != nil {
		t.Fatalf("first request failed: %+v", failure)
	}
	resp, failure := svc.SummarizeReport(context.Background(), "client-a", summarizeReq())
	if failure != nil {
		t.Fatalf("second request failed: %+v", failure)
	}

	if !resp.Cached {
		t.Error("repeat response not marked cached")
	}
	if resp.Usage.TokensUsed != 0 {
		t.Errorf("cached tokens = %d, want 0", resp.Usage.TokensUsed)
	}
	if invoker.calls != 1 {
		t.Errorf("upstream calls = %d, want 1", invoker.calls)
	}

	// Cache hits still consume a request unit, just no tokens.
	counter := svc.Ledger().ClientCounter("client-a")
	if counter.Requests != 2 {
		t.Errorf("client requests = %d, want 2", counter.Requests)
	}
	if counter.Tokens != 120 {
		t.Errorf("client tokens = %d, want 120", counter.Tokens)
	}
}

func TestClientQuotaDenial(t *testing.T) {
	cfg := testConfig()
	cfg.AI.Quotas.PerClientDailyRequests = 1
	invoker := &stubInvoker{result: &upstream.GenerationResult{Text: "ok", TokensUsed: 10}}
	svc := NewService(cfg, invoker, nil)

	if _, failure := svc.SummarizeReport(context.Background(), "client-a", summarizeReq()); failure != nil {
		t.Fatalf("first request failed: %+v", failure)
	}

	_, failure := svc.SummarizeReport(context.Background(), "client-a", summarizeReq())
	if failure == nil {
		t.Fatal("second request allowed past client quota")
	}
	if failure.HTTPStatus != http.StatusTooManyRequests {
		t.Errorf("http status = %d, want 429", failure.HTTPStatus)
	}
	if failure.Code != string(ledger.DenyClientDailyLimit) {
		t.Errorf("code = %q, want %q", failure.Code, ledger.DenyClientDailyLimit)
	}
	if !failure.Fallback {
		t.Error("quota denial not flagged for fallback")
	}
	if failure.Retryable {
		t.Error("quota denial flagged retryable")
	}
	if invoker.calls != 1 {
		t.Errorf("upstream calls = %d, want 1", invoker.calls)
	}
}

func TestUnconfiguredUpstreamIsUnavailable(t *testing.T) {
	cfg := testConfig()
	cfg.AI.APIKey = ""
	svc := NewService(cfg, upstream.NoopInvoker{}, nil)

	_, failure := svc.SummarizeReport(context.Background(), "client-a", summarizeReq())
	if failure == nil {
		t.Fatal("unconfigured upstream returned success")
	}
	if failure.HTTPStatus != http.StatusServiceUnavailable {
		t.Errorf("http status = %d, want 503", failure.HTTPStatus)
	}
	if failure.Code != codeServiceUnavailable {
		t.Errorf("code = %q, want %q", failure.Code, codeServiceUnavailable)
	}
	if !failure.Fallback {
		t.Error("unavailability not flagged for fallback")
	}

	// No quota charged for requests that never reach admission.
	if got := svc.Ledger().ClientCounter("client-a").Requests; got != 0 {
		t.Errorf("client requests = %d, want 0", got)
	}
}

func TestUpstreamErrorMapsToTaxonomy(t *testing.T) {
	invoker := &stubInvoker{err: &upstream.Error{
		Kind:       upstream.KindInsufficientQuota,
		HTTPStatus: http.StatusPaymentRequired,
		Message:    "billing hard limit reached",
		Retryable:  false,
	}}
	svc := NewService(testConfig(), invoker, nil)

	_, failure := svc.SummarizeReport(context.Background(), "client-a", summarizeReq())
	if failure == nil {
		t.Fatal("upstream error returned success")
	}
	if failure.HTTPStatus != http.StatusPaymentRequired {
		t.Errorf("http status = %d, want 402", failure.HTTPStatus)
	}
	if failure.Code != string(upstream.KindInsufficientQuota) {
		t.Errorf("code = %q", failure.Code)
	}
	if failure.Retryable {
		t.Error("quota exhaustion flagged retryable")
	}
	if !failure.Fallback {
		t.Error("upstream failure not flagged for fallback")
	}
}

func TestFailedRequestsAreNotCached(t *testing.T) {
	invoker := &stubInvoker{err: &upstream.Error{
		Kind:       upstream.KindRateLimited,
		HTTPStatus: http.StatusTooManyRequests,
		Message:    "slow down",
		Retryable:  true,
	}}
	svc := NewService(testConfig(), invoker, nil)

	svc.SummarizeReport(context.Background(), "client-a", summarizeReq())
	svc.SummarizeReport(context.Background(), "client-a", summarizeReq())

	if invoker.calls != 2 {
		t.Errorf("upstream calls = %d, want 2 (failures must not populate cache)", invoker.calls)
	}
	if svc.Cache().Len() != 0 {
		t.Errorf("cache len = %d, want 0", svc.Cache().Len())
	}
}

func TestInsightsFallsBackToNarrativeText(t *testing.T) {
	invoker := &stubInvoker{result: &upstream.GenerationResult{Text: "Plain analysis.", TokensUsed: 50}}
	svc := NewService(testConfig(), invoker, nil)

	resp, failure := svc.BehavioralInsights(context.Background(), "client-a", InsightsRequest{
		BehaviorData: map[string]any{"ratings": []any{}},
		Youth:        records.Youth{FirstName: "Jamal"},
	})
	if failure != nil {
		t.Fatalf("unexpected failure: %+v", failure)
	}
	if resp.Insights["narrative"] != "Plain analysis." {
		t.Errorf("insights = %+v, want narrative wrapper", resp.Insights)
	}
}

type fakeAudit struct {
	records []usage.Record
	stats   usage.AggregatedStats
	err     error
}

func (f *fakeAudit) Enqueue(record usage.Record) { f.records = append(f.records, record) }

func (f *fakeAudit) Flush(context.Context) error { return nil }

func (f *fakeAudit) QueryGlobalStats(context.Context, time.Time) (*usage.AggregatedStats, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &f.stats, nil
}

func (f *fakeAudit) QueryDailyStats(context.Context, time.Time) ([]usage.DailyStats, error) {
	return nil, f.err
}

func (f *fakeAudit) QueryEndpointStats(context.Context, time.Time) ([]usage.EndpointStats, error) {
	return nil, f.err
}

func (f *fakeAudit) Cleanup(context.Context, time.Time) (int64, error) { return 0, nil }

func (f *fakeAudit) Start() error { return nil }

func (f *fakeAudit) Stop() error { return nil }

func TestAuditTrailRecordsOutcomes(t *testing.T) {
	invoker := &stubInvoker{result: &upstream.GenerationResult{Text: "ok", TokensUsed: 40}}
	audit := &fakeAudit{}
	svc := NewService(testConfig(), invoker, audit)

	svc.SummarizeReport(context.Background(), "client-a", summarizeReq())
	svc.SummarizeReport(context.Background(), "client-a", summarizeReq())

	if len(audit.records) != 2 {
		t.Fatalf("audit records = %d, want 2", len(audit.records))
	}
	if audit.records[0].Cached || audit.records[0].Tokens != 40 {
		t.Errorf("first record = %+v, want uncached with 40 tokens", audit.records[0])
	}
	if !audit.records[1].Cached {
		t.Errorf("second record = %+v, want cached", audit.records[1])
	}
	if audit.records[1].Tokens != 0 {
		t.Errorf("cached record tokens = %d, want 0 (no upstream spend)", audit.records[1].Tokens)
	}
	if audit.records[0].Endpoint != endpointSummarize {
		t.Errorf("endpoint = %q", audit.records[0].Endpoint)
	}
}

func TestAuditTrailRecordsFailures(t *testing.T) {
	invoker := &stubInvoker{err: &upstream.Error{
		Kind:       upstream.KindRateLimited,
		HTTPStatus: http.StatusTooManyRequests,
		Message:    "slow down",
		Retryable:  true,
	}}
	audit := &fakeAudit{}
	svc := NewService(testConfig(), invoker, audit)

	svc.SummarizeReport(context.Background(), "client-a", summarizeReq())

	if len(audit.records) != 1 {
		t.Fatalf("audit records = %d, want 1", len(audit.records))
	}
	if !audit.records[0].Failed {
		t.Errorf("record = %+v, want failed", audit.records[0])
	}
}

func TestStatusIncludesAuditSummary(t *testing.T) {
	invoker := &stubInvoker{result: &upstream.GenerationResult{Text: "ok", TokensUsed: 10}}
	audit := &fakeAudit{stats: usage.AggregatedStats{TotalRequests: 12, TotalTokens: 900}}
	svc := NewService(testConfig(), invoker, audit)

	status := svc.Status(context.Background(), "client-a")
	if status.Audit == nil {
		t.Fatal("audit section missing with backend configured")
	}
	if status.Audit.Totals.TotalRequests != 12 {
		t.Errorf("audit totals = %+v", status.Audit.Totals)
	}

	// A failing backend degrades to a missing section, never an error.
	svc = NewService(testConfig(), invoker, &fakeAudit{err: context.DeadlineExceeded})
	if status := svc.Status(context.Background(), "client-a"); status.Audit != nil {
		t.Errorf("audit section = %+v, want nil when backend is down", status.Audit)
	}
}

func TestStatusReportsStateWithoutCharge(t *testing.T) {
	invoker := &stubInvoker{result: &upstream.GenerationResult{Text: "ok", TokensUsed: 10}}
	svc := NewService(testConfig(), invoker, nil)

	status := svc.Status(context.Background(), "client-a")
	if !status.Configured {
		t.Error("configured = false with credential set")
	}
	if !status.Available {
		t.Error("available = false with healthy probe")
	}
	if status.Limits.PerClientDailyRequests != 100 {
		t.Errorf("limits = %+v", status.Limits)
	}
	if got := svc.Ledger().ClientCounter("client-a").Requests; got != 0 {
		t.Errorf("status charged %d requests, want 0", got)
	}
}

func TestStatusUnavailableWhenProbeFails(t *testing.T) {
	invoker := &stubInvoker{probe: context.DeadlineExceeded}
	svc := NewService(testConfig(), invoker, nil)

	if status := svc.Status(context.Background(), "client-a"); status.Available {
		t.Error("available = true with failing probe")
	}
}

func TestEnhanceReportLengths(t *testing.T) {
	invoker := &stubInvoker{result: &upstream.GenerationResult{Text: "Polished clinical prose.", TokensUsed: 30}}
	svc := NewService(testConfig(), invoker, nil)

	resp, failure := svc.EnhanceReport(context.Background(), "client-a", EnhanceRequest{
		ReportContent: "rough draft",
		ReportType:    "weekly",
		Youth:         records.Youth{FirstName: "Jamal"},
	})
	if failure != nil {
		t.Fatalf("unexpected failure: %+v", failure)
	}
	if resp.OriginalLength != len("rough draft") {
		t.Errorf("original length = %d", resp.OriginalLength)
	}
	if resp.EnhancedLength != len("Polished clinical prose.") {
		t.Errorf("enhanced length = %d", resp.EnhancedLength)
	}
}
