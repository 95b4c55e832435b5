package narrative

import (
	"github.com/ridgeline/caseflow/internal/narrative/cache"
	"github.com/ridgeline/caseflow/internal/narrative/ledger"
	"github.com/ridgeline/caseflow/internal/records"
	"github.com/ridgeline/caseflow/internal/usage"
)

// SummarizeRequest asks for a prose summary of a report's raw data.
type SummarizeRequest struct {
	Youth      records.Youth  `json:"youth"`
	ReportType string         `json:"reportType"`
	Period     records.Period `json:"period"`
	Data       map[string]any `json:"data"`
}

// InsightsRequest asks for behavioral pattern analysis over point data.
type InsightsRequest struct {
	BehaviorData map[string]any `json:"behaviorData"`
	Youth        records.Youth  `json:"youth"`
	Period       records.Period `json:"period"`
}

// EnhanceRequest asks for a polished rewrite of drafted report content.
type EnhanceRequest struct {
	ReportContent string        `json:"reportContent"`
	ReportType    string        `json:"reportType"`
	Youth         records.Youth `json:"youth"`
}

// Usage reports token consumption for one response.
type Usage struct {
	TokensUsed int64 `json:"tokensUsed"`
}

// SummarizeResponse is the summarize-report success body.
type SummarizeResponse struct {
	Summary   string `json:"summary"`
	Model     string `json:"model"`
	Usage     Usage  `json:"usage"`
	RequestID string `json:"requestId"`
	Cached    bool   `json:"cached"`
}

// InsightsResponse is the behavioral-insights success body.
type InsightsResponse struct {
	Insights  map[string]any `json:"insights"`
	Usage     Usage          `json:"usage"`
	RequestID string         `json:"requestId"`
	Cached    bool           `json:"cached"`
}

// EnhanceResponse is the enhance-report success body.
type EnhanceResponse struct {
	EnhancedContent string `json:"enhancedContent"`
	OriginalLength  int    `json:"originalLength"`
	EnhancedLength  int    `json:"enhancedLength"`
	Usage           Usage  `json:"usage"`
	RequestID       string `json:"requestId"`
	Cached          bool   `json:"cached"`
}

// Failure is the error body shared by every narrative endpoint. Fallback
// tells callers it is safe to substitute locally generated text.
type Failure struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	Retryable bool   `json:"retryable"`
	Fallback  bool   `json:"fallback"`
	RequestID string `json:"requestId"`

	// HTTPStatus is the transport status for this failure.
	HTTPStatus int `json:"-"`
}

// StatusResponse is the status endpoint body. It degrades field by field
// rather than erroring.
type StatusResponse struct {
	Available  bool              `json:"available"`
	Configured bool              `json:"configured"`
	Model      string            `json:"model"`
	Models     map[string]string `json:"models"`
	Breaker    string            `json:"breaker"`
	Limits     StatusLimits      `json:"limits"`
	DailyUsage StatusUsage       `json:"dailyUsage"`
	Cache      cache.Stats       `json:"cache"`
	Errors     []ErrorRecord     `json:"recentErrors,omitempty"`
	Audit      *StatusAudit      `json:"audit,omitempty"`
}

// StatusAudit summarizes the persisted audit trail over the last week.
// Absent when no audit backend is configured or the backend is down.
type StatusAudit struct {
	Totals    usage.AggregatedStats `json:"totals"`
	Daily     []usage.DailyStats    `json:"daily,omitempty"`
	Endpoints []usage.EndpointStats `json:"endpoints,omitempty"`
}

// StatusLimits mirrors the configured daily quotas.
type StatusLimits struct {
	GlobalDailyRequests    int64 `json:"globalDailyRequests"`
	GlobalDailyTokens      int64 `json:"globalDailyTokens"`
	PerClientDailyRequests int64 `json:"perClientDailyRequests"`
	PerClientDailyTokens   int64 `json:"perClientDailyTokens"`
}

// StatusUsage reports today's consumption.
type StatusUsage struct {
	Global  ledger.Counter `json:"global"`
	Client  ledger.Counter `json:"client"`
	Clients int            `json:"trackedClients"`
}
