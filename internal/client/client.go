// Package client is the in-process consumer wrapper around the
// narrative gateway API. Callers always receive usable text: every
// transport, quota or upstream failure degrades to locally generated
// fallback prose instead of an error.
package client

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/ridgeline/caseflow/internal/json"
	log "github.com/ridgeline/caseflow/internal/logging"
	"github.com/ridgeline/caseflow/internal/narrative/fallback"
	"github.com/ridgeline/caseflow/internal/records"
)

// Source names which path produced the returned text.
type Source string

const (
	SourceUpstream Source = "upstream"
	SourceCache    Source = "cache"
	SourceFallback Source = "fallback"
)

const (
	defaultTimeout  = 60 * time.Second
	maxResponseSize = 4 * 1024 * 1024
)

// Config holds the wrapper's connection settings.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Request describes one narrative generation request. Bundle is always
// required; it feeds both the remote payload and any local fallback.
type Request struct {
	Kind   fallback.Kind
	Bundle records.CaseBundle

	// ReportType labels summarize and enhance requests.
	ReportType string

	// Data carries raw report data for summarize requests.
	Data map[string]any

	// ReportContent is the draft to rewrite for enhance requests.
	ReportContent string
}

// Result is the text outcome of a narrative request.
type Result struct {
	Text      string
	Source    Source
	RequestID string
	Cached    bool
}

// Client calls the narrative gateway with local fallback.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a wrapper client for the given gateway.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// RequestNarrative produces narrative text for the request. It never
// returns an error; any failure along the way yields locally generated
// fallback text.
func (c *Client) RequestNarrative(ctx context.Context, req Request) Result {
	body, err := c.call(ctx, req)
	if err != nil {
		log.Debugf("narrative request failed, using fallback: %v", err)
		return c.localFallback(req)
	}

	if gjson.GetBytes(body, "fallback").Bool() || gjson.GetBytes(body, "error").Exists() {
		return c.localFallback(req)
	}

	text := extractText(req.Kind, body)
	if strings.TrimSpace(text) == "" {
		return c.localFallback(req)
	}

	return Result{
		Text:      fallback.StripMarkdown(text),
		Source:    sourceOf(body),
		RequestID: gjson.GetBytes(body, "requestId").String(),
		Cached:    gjson.GetBytes(body, "cached").Bool(),
	}
}

func sourceOf(body []byte) Source {
	if gjson.GetBytes(body, "cached").Bool() {
		return SourceCache
	}
	return SourceUpstream
}

// localFallback synthesizes text from the case bundle alone. Enhance
// requests keep the caller's draft, stripped of markup, since a
// templated report would discard their writing.
func (c *Client) localFallback(req Request) Result {
	if req.Kind == fallback.KindEnhanceReport && strings.TrimSpace(req.ReportContent) != "" {
		return Result{Text: fallback.StripMarkdown(req.ReportContent), Source: SourceFallback}
	}
	return Result{Text: fallback.Generate(req.Kind, req.Bundle), Source: SourceFallback}
}

func (c *Client) call(ctx context.Context, req Request) ([]byte, error) {
	payload, err := json.Marshal(buildPayload(req))
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/narrative/"+string(req.Kind), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, err
	}
	return body, nil
}

func buildPayload(req Request) map[string]any {
	switch req.Kind {
	case fallback.KindBehavioralInsights:
		data := req.Data
		if data == nil {
			data = map[string]any{}
		}
		return map[string]any{
			"behaviorData": data,
			"youth":        req.Bundle.Youth,
			"period":       req.Bundle.Period,
		}
	case fallback.KindEnhanceReport:
		return map[string]any{
			"reportContent": req.ReportContent,
			"reportType":    req.ReportType,
			"youth":         req.Bundle.Youth,
		}
	default:
		return map[string]any{
			"youth":      req.Bundle.Youth,
			"reportType": req.ReportType,
			"period":     req.Bundle.Period,
			"data":       req.Data,
		}
	}
}

// insight section order for flattening structured responses to prose.
var insightKeys = []string{"summary", "patterns", "concerns", "recommendations"}

func extractText(kind fallback.Kind, body []byte) string {
	switch kind {
	case fallback.KindBehavioralInsights:
		insights := gjson.GetBytes(body, "insights")
		if !insights.Exists() {
			return ""
		}
		var parts []string
		for _, key := range insightKeys {
			if v := insights.Get(key); v.Exists() && v.String() != "" {
				parts = append(parts, v.String())
			}
		}
		if len(parts) == 0 {
			insights.ForEach(func(_, value gjson.Result) bool {
				if s := value.String(); s != "" {
					parts = append(parts, s)
				}
				return true
			})
		}
		return strings.Join(parts, "\n\n")
	case fallback.KindEnhanceReport:
		return gjson.GetBytes(body, "enhancedContent").String()
	default:
		return gjson.GetBytes(body, "summary").String()
	}
}
