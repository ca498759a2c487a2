package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"intelligent-chatbot/backend/pkg/config"
	"intelligent-chatbot/backend/pkg/logger"
	"intelligent-chatbot/backend/pkg/resilience"
	"intelligent-chatbot/backend/pkg/secrets"
)

// Message is one role-tagged turn sent to the provider.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request describes one completion attempt.
type Request struct {
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
	// Knowledge is the formatted knowledge blob, or "" when lookup
	// found nothing. It is embedded in the system prompt.
	Knowledge string
	// Language is the caller's requested reply language.
	Language string
}

// Error reasons.
const (
	ReasonMissingKey    = "missing_api_key"
	ReasonProviderError = "provider_error"
	ReasonUnreachable   = "provider_unreachable"
)

// Error is a failed completion attempt. The caller is responsible for
// recovering via the fallback responder; this error never reaches the
// end user directly.
type Error struct {
	Reason     string
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("completion failed (%s): status %d: %s", e.Reason, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("completion failed (%s): %s", e.Reason, e.Body)
}

// Options configures the gateway.
type Options struct {
	Endpoint        string
	DefaultModel    string
	Temperature     float64
	MaxTokens       int
	Referer         string
	Title           string
	KeyRules        []config.KeyRule
	DefaultSecret   string
	DefaultLanguage string
	Timeout         time.Duration
}

// OptionsFromConfig builds gateway options from the application config.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Endpoint:        cfg.Completion.Endpoint,
		DefaultModel:    cfg.Completion.DefaultModel,
		Temperature:     cfg.Completion.Temperature,
		MaxTokens:       cfg.Completion.MaxTokens,
		Referer:         cfg.Completion.Referer,
		Title:           cfg.Completion.Title,
		KeyRules:        cfg.Completion.KeyRules,
		DefaultSecret:   cfg.Completion.DefaultKeySecret,
		DefaultLanguage: cfg.Completion.DefaultLanguage,
		Timeout:         cfg.Completion.Timeout,
	}
}

// Gateway wraps the provider's chat-completion HTTP API with model
// selection, credential resolution and system-prompt assembly.
type Gateway struct {
	opts       Options
	httpClient *http.Client
	secrets    secrets.Manager
	breaker    *resilience.CircuitBreaker
	log        *logger.Logger
}

// NewGateway creates a gateway. The circuit breaker is optional;
// without one every attempt goes straight to the provider.
func NewGateway(opts Options, sm secrets.Manager, breaker *resilience.CircuitBreaker, log *logger.Logger) *Gateway {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.DefaultLanguage == "" {
		opts.DefaultLanguage = "en"
	}
	return &Gateway{
		opts:       opts,
		httpClient: &http.Client{Timeout: opts.Timeout},
		secrets:    sm,
		breaker:    breaker,
		log:        log,
	}
}

// DefaultModel returns the model used when the caller does not pick one.
func (g *Gateway) DefaultModel() string {
	return g.opts.DefaultModel
}

type providerRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
	Stream      bool      `json:"stream"`
}

type providerResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Complete sends one completion request and returns the first choice's
// text. A single attempt is made; any failure is returned as *Error for
// the caller to recover from.
func (g *Gateway) Complete(ctx context.Context, req Request) (string, error) {
	apiKey, err := g.resolveKey(ctx, req.Model)
	if err != nil {
		return "", err
	}

	if req.Model == "" {
		req.Model = g.opts.DefaultModel
	}
	if req.Temperature == 0 {
		req.Temperature = g.opts.Temperature
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = g.opts.MaxTokens
	}

	messages := append([]Message{{Role: "system", Content: g.systemPrompt(req)}}, req.Messages...)

	var text string
	call := func() error {
		var callErr error
		text, callErr = g.send(ctx, providerRequest{
			Model:       req.Model,
			Messages:    messages,
			Temperature: req.Temperature,
			MaxTokens:   req.MaxTokens,
			Stream:      false,
		}, apiKey)
		return callErr
	}

	if g.breaker != nil {
		err = g.breaker.Execute(call)
		if err == resilience.ErrCircuitOpen {
			return "", &Error{Reason: ReasonUnreachable, Body: "circuit open"}
		}
	} else {
		err = call()
	}
	if err != nil {
		return "", err
	}
	return text, nil
}

// resolveKey walks the ordered prefix rules and falls back to the
// default credential.
func (g *Gateway) resolveKey(ctx context.Context, model string) (string, error) {
	secretName := g.opts.DefaultSecret
	for _, rule := range g.opts.KeyRules {
		if strings.HasPrefix(model, rule.Prefix) {
			secretName = rule.Secret
			break
		}
	}

	apiKey, err := g.secrets.GetSecret(ctx, secretName)
	if err != nil || apiKey == "" {
		return "", &Error{Reason: ReasonMissingKey, Body: "no API key configured for model " + model}
	}
	return apiKey, nil
}

// systemPrompt assembles assistant instructions, the knowledge context
// and the language directive.
func (g *Gateway) systemPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("You are a helpful AI assistant. Respond in the same language as the user's message.")

	if req.Knowledge != "" {
		b.WriteString("\n\nUse the following information to answer when it is relevant, ")
		b.WriteString("but do not mention that it was provided to you:\n\n")
		b.WriteString(req.Knowledge)
	}

	if req.Language != "" && req.Language != g.opts.DefaultLanguage {
		fmt.Fprintf(&b, "\n\nAlways respond in the language with code %q.", req.Language)
	}

	return b.String()
}

func (g *Gateway) send(ctx context.Context, body providerRequest, apiKey string) (string, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("error marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.opts.Endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)
	if g.opts.Referer != "" {
		httpReq.Header.Set("HTTP-Referer", g.opts.Referer)
	}
	if g.opts.Title != "" {
		httpReq.Header.Set("X-Title", g.opts.Title)
	}

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return "", &Error{Reason: ReasonUnreachable, Body: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &Error{
			Reason:     ReasonProviderError,
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
	}

	var parsed providerResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("error unmarshaling response: %w", err)
	}
	if parsed.Error != nil {
		return "", &Error{Reason: ReasonProviderError, Body: parsed.Error.Message}
	}
	if len(parsed.Choices) == 0 {
		return "", &Error{Reason: ReasonProviderError, Body: "no choices returned"}
	}

	return parsed.Choices[0].Message.Content, nil
}
