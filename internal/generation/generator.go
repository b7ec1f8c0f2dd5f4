package generation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/portfolio-ai-assistant/internal/retrieval"
)

const (
	// maxContextItems caps the context bullets in the prompt to prevent
	// token overflow.
	maxContextItems = 3

	// maxSources caps the source labels returned with a response.
	maxSources = 3

	// maxResponseLength is the truncation threshold for raw model output.
	maxResponseLength = 500

	// fallbackConfidence is the fixed score for canned fallback replies.
	fallbackConfidence = 0.5
)

const systemPrompt = `You are an AI assistant for a professional portfolio website.
You help visitors learn about the portfolio owner's skills, experience, and projects.
Be helpful, professional, and concise. Base your answers on the provided context.
If you don't have specific information, acknowledge it and suggest where to find more details.

Context information:`

// roleArtifacts are leading role labels the model sometimes echoes back.
var roleArtifacts = []string{"User:", "Assistant:", "Human:", "AI:"}

// Result is a generated chat reply with its confidence and source labels.
type Result struct {
	Response   string   `json:"response"`
	Confidence float64  `json:"confidence"`
	Sources    []string `json:"sources"`
}

// Info describes the generation model configuration.
type Info struct {
	ModelName   string  `json:"model_name"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	Loaded      bool    `json:"loaded"`
}

// Generator turns a user message plus retrieved context into a response.
// Generate returns an error when the model is unavailable or times out; the
// caller decides to substitute Fallback, so failure handling stays explicit
// at the call site instead of hiding inside a broad catch.
type Generator struct {
	client      Client
	temperature float64
	maxTokens   int
	timeout     time.Duration
	logger      *zap.Logger
}

// NewGenerator creates a generator around the given model client. The
// timeout bounds each model call; zero means 60 seconds.
func NewGenerator(client Client, temperature float64, maxTokens int, timeout time.Duration, logger *zap.Logger) *Generator {
	if temperature <= 0 {
		temperature = 0.7
	}
	if maxTokens <= 0 {
		maxTokens = MaxNewTokens
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		client:      client,
		temperature: temperature,
		maxTokens:   maxTokens,
		timeout:     timeout,
		logger:      logger.Named("generation"),
	}
}

// Generate produces a response for the message grounded in the retrieved
// context items. The model call is bounded by the generator's timeout.
func (g *Generator) Generate(ctx context.Context, message string, contextItems []retrieval.ScoredItem, sessionID string) (Result, error) {
	if g.client == nil {
		return Result{}, fmt.Errorf("generation model not loaded")
	}

	prompt := g.buildPrompt(message, contextItems)

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	raw, err := g.client.Complete(callCtx, prompt)
	if err != nil {
		g.logger.Warn("generation failed",
			zap.String("session_id", sessionID),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return Result{}, fmt.Errorf("generation failed: %w", err)
	}

	response := postProcess(raw)

	return Result{
		Response:   response,
		Confidence: confidence(response, contextItems),
		Sources:    sources(contextItems),
	}, nil
}

// buildPrompt composes the system preamble, up to three context bullets, and
// the user turn.
func (g *Generator) buildPrompt(message string, contextItems []retrieval.ScoredItem) string {
	var b strings.Builder
	b.WriteString(systemPrompt)
	for i, item := range contextItems {
		if i == maxContextItems {
			break
		}
		b.WriteString("\n- ")
		b.WriteString(item.Content)
	}
	fmt.Fprintf(&b, "\n\nUser: %s\nAssistant:", message)
	return b.String()
}

// Info returns the generation model configuration.
func (g *Generator) Info() Info {
	info := Info{
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
		Loaded:      g.client != nil,
	}
	if g.client != nil {
		info.ModelName = g.client.Model()
	}
	return info
}

// postProcess cleans raw model output: strips leading role labels, keeps at
// most three sentences of an over-long reply, and guarantees terminal
// punctuation.
func postProcess(response string) string {
	response = strings.TrimSpace(response)

	for _, artifact := range roleArtifacts {
		if strings.HasPrefix(response, artifact) {
			response = strings.TrimSpace(strings.TrimPrefix(response, artifact))
		}
	}

	if len(response) > maxResponseLength {
		sentences := strings.Split(response, ". ")
		if len(sentences) > 3 {
			sentences = sentences[:3]
		}
		response = strings.Join(sentences, ". ") + "."
	}

	if !strings.HasSuffix(response, ".") && !strings.HasSuffix(response, "!") && !strings.HasSuffix(response, "?") {
		response += "."
	}

	return response
}

// confidence scores a response by lexical overlap with the context: base
// 0.7, up to +0.2 for shared vocabulary, -0.1 for very short replies,
// clamped to [0, 1]. Empirically chosen constants.
func confidence(response string, contextItems []retrieval.ScoredItem) float64 {
	score := 0.7

	if len(contextItems) > 0 {
		contextWords := make(map[string]struct{})
		for _, item := range contextItems {
			for _, w := range strings.Fields(strings.ToLower(item.Content)) {
				contextWords[w] = struct{}{}
			}
		}

		overlap := 0
		seen := make(map[string]struct{})
		for _, w := range strings.Fields(strings.ToLower(response)) {
			if _, dup := seen[w]; dup {
				continue
			}
			seen[w] = struct{}{}
			if _, ok := contextWords[w]; ok {
				overlap++
			}
		}

		if overlap > 0 {
			bonus := float64(overlap) * 0.05
			if bonus > 0.2 {
				bonus = 0.2
			}
			score += bonus
		}
	}

	if len(response) < 50 {
		score -= 0.1
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// sources collects the source label of each context item actually used,
// truncated to the first three.
func sources(contextItems []retrieval.ScoredItem) []string {
	out := make([]string, 0, maxSources)
	for _, item := range contextItems {
		if item.Source == "" {
			continue
		}
		out = append(out, item.Source)
		if len(out) == maxSources {
			break
		}
	}
	return out
}
