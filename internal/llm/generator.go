package llm

import (
	"context"
	"regexp"
	"strings"
	"sync"

	"github.com/guttosm/stockchat/internal/logger"
	"google.golang.org/genai"
)

// DefaultResponse is returned whenever the generative capability is
// unavailable or fails. Callers never see an error from Generate.
const DefaultResponse = "I understand your query. How can I assist you with stock information?"

// Config holds the fixed decoding configuration for fallback generation.
// Values are fixed per deployment so fallback latency stays bounded.
type Config struct {
	APIKey      string  // Empty disables the generative capability entirely
	Model       string  // e.g. "gemini-2.0-flash"
	Temperature float64 // Sampling temperature
	MaxTokens   int     // Upper bound on generated output tokens
}

// Generator produces best-effort conversational text for queries that have
// no deterministic answer.
//
// Implementations must never return an error: any failure of the
// underlying capability degrades to DefaultResponse. Available reports
// whether the capability is configured and usable, so callers can probe
// it explicitly instead of null-checking.
type Generator interface {
	Generate(ctx context.Context, contextText string) string
	Available() bool
	Model() string
}

// geminiGenerator wraps the Gemini API behind the Generator contract.
//
// The client is a lazily initialized process-wide resource: the first
// Generate call creates it, and a failed initialization parks the
// generator in an explicit unavailable state rather than retrying on
// every request.
type geminiGenerator struct {
	cfg Config

	initOnce sync.Once

	// mu guards client and initErr. Generate reads them after initOnce.Do,
	// which is already ordered, but Available may race the first Generate.
	mu      sync.Mutex
	client  *genai.Client
	initErr error
}

// NewGenerator builds a Generator from config. Construction never fails
// and performs no network I/O; with an empty API key the generator starts
// in the unavailable state and answers with DefaultResponse.
func NewGenerator(cfg Config) Generator {
	return &geminiGenerator{cfg: cfg}
}

func (g *geminiGenerator) init(ctx context.Context) {
	g.initOnce.Do(func() {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  g.cfg.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			logger.L().Error().Err(err).Msg("gemini client init failed, fallback generation disabled")
			g.mu.Lock()
			g.initErr = err
			g.mu.Unlock()
			return
		}
		g.mu.Lock()
		g.client = client
		g.mu.Unlock()
		logger.L().Info().Str("model", g.cfg.Model).Msg("gemini client initialized")
	})
}

// Available reports whether the generative capability can serve requests.
// Before the first Generate call this reflects configuration only; after
// a failed initialization it stays false for the process lifetime.
func (g *geminiGenerator) Available() bool {
	if g.cfg.APIKey == "" {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.initErr == nil
}

func (g *geminiGenerator) Model() string {
	return g.cfg.Model
}

// Generate produces a conversational response for the given context text.
// Best-effort: every failure path returns DefaultResponse. No retries; a
// single failure immediately degrades, and timeouts are the caller's
// concern via ctx.
func (g *geminiGenerator) Generate(ctx context.Context, contextText string) string {
	if g.cfg.APIKey == "" {
		return DefaultResponse
	}

	g.init(ctx)
	if g.initErr != nil {
		return DefaultResponse
	}

	prompt := "User: " + contextText + "\nAssistant:"

	temp := float32(g.cfg.Temperature)
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(temp),
		MaxOutputTokens: int32(g.cfg.MaxTokens),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.cfg.Model, genai.Text(prompt), cfg)
	if err != nil {
		logger.L().Error().Err(err).Msg("fallback generation failed")
		return DefaultResponse
	}

	text := strings.TrimSpace(resp.Text())
	text = stripPromptArtifacts(text, prompt)
	if text == "" {
		return DefaultResponse
	}
	return text
}

var userTurnPattern = regexp.MustCompile(`(?s)User:.*`)

// stripPromptArtifacts removes echoed prompt/turn markers that chat-tuned
// models sometimes reproduce in their output.
func stripPromptArtifacts(text, prompt string) string {
	if i := strings.LastIndex(text, "Assistant:"); i >= 0 {
		text = text[i+len("Assistant:"):]
		text = userTurnPattern.ReplaceAllString(text, "")
		return strings.TrimSpace(text)
	}
	text = strings.ReplaceAll(text, prompt, "")
	text = userTurnPattern.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
