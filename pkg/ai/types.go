package ai

import "context"

// PromptSpec describes a single generation request. JSONOnly asks the
// provider for a bare JSON object response where the API supports it; the
// decoder still defends against fenced output regardless.
type PromptSpec struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float32
	JSONOnly    bool
}

// Generator is the capability the scoring pipeline depends on: turn a prompt
// into raw model text. Production implementations call a provider API; tests
// return canned text.
type Generator interface {
	Generate(ctx context.Context, spec PromptSpec) (string, error)
}

// GeneratorFunc adapts a plain function to the Generator interface.
type GeneratorFunc func(ctx context.Context, spec PromptSpec) (string, error)

// Generate implements Generator.
func (f GeneratorFunc) Generate(ctx context.Context, spec PromptSpec) (string, error) {
	return f(ctx, spec)
}
