package upstream

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/ridgeline/caseflow/internal/json"
	log "github.com/ridgeline/caseflow/internal/logging"
	"github.com/ridgeline/caseflow/internal/resilience"
)

// GenerationResult is the outcome of one successful generation call.
// Immutable once produced; shared by reference between the cache and
// every caller that hits the same fingerprint.
type GenerationResult struct {
	Text       string
	Structured map[string]any
	TokensUsed int64
}

// GenerateParams are the inputs to a single generation call.
type GenerateParams struct {
	Model            string
	SystemPrompt     string
	UserPrompt       string
	MaxTokens        int
	Temperature      float64
	StructuredOutput bool
}

// Invoker is the abstract generate-text capability the gateway depends
// on. Nothing outside this package knows the concrete protocol.
type Invoker interface {
	Generate(ctx context.Context, params GenerateParams) (*GenerationResult, error)
	Probe(ctx context.Context) error
	BreakerState() string
}

const maxResponseBytes = 4 * 1024 * 1024

// Client talks to an OpenAI-compatible chat-completions endpoint, with
// retries on retryable classifications and a circuit breaker so a dead
// upstream fails fast instead of tying up request handlers.
type Client struct {
	baseURL    string
	apiKey     string
	timeout    time.Duration
	httpClient *http.Client
	exec       *resilience.Executor[*GenerationResult]
}

var _ Invoker = (*Client)(nil)

// NewClient creates an upstream client. timeout bounds each attempt.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	retryCfg := resilience.DefaultRetryConfig
	retryCfg.ShouldRetry = IsRetryable

	breakerCfg := resilience.DefaultBreakerConfig("narrative-upstream")
	breakerCfg.IsSuccessful = func(err error) bool {
		// Only transient upstream failures count against the breaker;
		// credential and billing errors need operator action, not tripping.
		return err == nil || !IsRetryable(err)
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		timeout: timeout,
		httpClient: &http.Client{
			Timeout: timeout + 5*time.Second,
		},
		exec: resilience.NewExecutor[*GenerationResult](retryCfg, &breakerCfg),
	}
}

// Generate issues one generation call (plus retries on retryable
// failures) and returns the classified error on failure.
func (c *Client) Generate(ctx context.Context, params GenerateParams) (*GenerationResult, error) {
	result, err := c.exec.Execute(ctx, func() (*GenerationResult, error) {
		return c.generateOnce(ctx, params)
	})
	if err != nil {
		if resilience.IsOpen(err) {
			return nil, err
		}
		return nil, Classify(err)
	}
	return result, nil
}

func (c *Client) generateOnce(ctx context.Context, params GenerateParams) (*GenerationResult, error) {
	body, err := c.buildRequestBody(params)
	if err != nil {
		return nil, &Error{Kind: KindRequestFailed, HTTPStatus: http.StatusInternalServerError, Message: "encode request: " + err.Error(), Retryable: false}
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, Classify(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, Classify(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, Classify(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, classifyStatus(resp.StatusCode, respBody)
	}

	return parseGeneration(respBody, params), nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

func (c *Client) buildRequestBody(params GenerateParams) ([]byte, error) {
	messages := make([]chatMessage, 0, 2)
	if params.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: params.SystemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: params.UserPrompt})

	body, err := json.Marshal(chatRequest{
		Model:       params.Model,
		Messages:    messages,
		MaxTokens:   params.MaxTokens,
		Temperature: params.Temperature,
	})
	if err != nil {
		return nil, err
	}
	if params.StructuredOutput {
		body, err = sjson.SetBytes(body, "response_format.type", "json_object")
		if err != nil {
			return nil, err
		}
	}
	return body, nil
}

// parseGeneration extracts text, token usage and (best-effort) structured
// content from a successful upstream response. Parse problems degrade,
// never fail: missing usage is estimated, unparseable structured output
// becomes an empty structure.
func parseGeneration(body []byte, params GenerateParams) *GenerationResult {
	text := gjson.GetBytes(body, "choices.0.message.content").String()

	tokens := gjson.GetBytes(body, "usage.total_tokens").Int()
	if tokens <= 0 {
		tokens = estimateTokens(params.SystemPrompt) + estimateTokens(params.UserPrompt) + estimateTokens(text)
		log.Debugf("upstream response carried no usage metadata, estimated %d tokens", tokens)
	}

	result := &GenerationResult{Text: text, TokensUsed: tokens}
	if params.StructuredOutput {
		result.Structured = parseStructured(text)
	}
	return result
}

// parseStructured attempts to read the generated text as a JSON object,
// tolerating markdown code fences around it.
func parseStructured(text string) map[string]any {
	trimmed := strings.TrimSpace(text)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	structured := map[string]any{}
	if trimmed == "" {
		return structured
	}
	if err := json.Unmarshal([]byte(trimmed), &structured); err != nil {
		log.Debugf("structured output parse failed, returning empty structure: %v", err)
		return map[string]any{}
	}
	return structured
}

// Probe checks upstream reachability with a cheap model-listing call.
// It never consumes generation quota.
func (c *Client) Probe(ctx context.Context) error {
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, c.baseURL+"/models", nil)
	if err != nil {
		return Classify(err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Classify(err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return classifyStatus(resp.StatusCode, nil)
	}
	return nil
}

// BreakerState reports the circuit breaker state for the status endpoint.
func (c *Client) BreakerState() string {
	if cb := c.exec.CircuitBreaker(); cb != nil {
		return cb.State().String()
	}
	return "disabled"
}

// ErrNotConfigured is returned by NoopInvoker when no upstream credential
// is configured.
var ErrNotConfigured = fmt.Errorf("upstream: not configured")

// NoopInvoker stands in when no upstream credential is configured; every
// call reports the capability as absent so callers fall back locally.
type NoopInvoker struct{}

var _ Invoker = (*NoopInvoker)(nil)

func (NoopInvoker) Generate(context.Context, GenerateParams) (*GenerationResult, error) {
	return nil, ErrNotConfigured
}

func (NoopInvoker) Probe(context.Context) error { return ErrNotConfigured }

func (NoopInvoker) BreakerState() string { return "disabled" }
