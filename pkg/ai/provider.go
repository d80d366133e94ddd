package ai

import (
	"context"
	"errors"
	"sync"
)

// ErrNoActiveKey indicates no active credential exists for the provider.
var ErrNoActiveKey = errors.New("no active api key")

// Credential is an active provider credential plus the model it is bound to.
type Credential struct {
	Key       string
	Model     string
	MaxTokens int
}

// CredentialSource resolves the currently active credential for a service.
// The production implementation reads the api_keys table.
type CredentialSource interface {
	ActiveCredential(ctx context.Context, service string) (Credential, error)
}

// GeneratorFactory builds a Generator from a resolved credential.
type GeneratorFactory func(cred Credential) (Generator, error)

// FallbackSource tries a primary source first and falls back to a static
// credential when no active key is stored. Used to bootstrap deployments
// before any key has been registered through the admin API.
type FallbackSource struct {
	Primary  CredentialSource
	Fallback Credential
}

// ActiveCredential resolves from the primary source, then the static fallback.
func (f FallbackSource) ActiveCredential(ctx context.Context, service string) (Credential, error) {
	cred, err := f.Primary.ActiveCredential(ctx, service)
	if err == nil {
		return cred, nil
	}
	if errors.Is(err, ErrNoActiveKey) && f.Fallback.Key != "" {
		return f.Fallback, nil
	}
	return Credential{}, err
}

// ProviderCache lazily constructs a Generator from the active credential and
// reuses it across requests. Invalidate must be called whenever the active
// key changes; the next Generate rebuilds from storage.
type ProviderCache struct {
	service string
	source  CredentialSource
	factory GeneratorFactory

	mu  sync.Mutex
	gen Generator
}

// NewProviderCache wires a cache for the given service.
func NewProviderCache(service string, source CredentialSource, factory GeneratorFactory) *ProviderCache {
	return &ProviderCache{
		service: service,
		source:  source,
		factory: factory,
	}
}

// Generate delegates to the cached generator, building it first if needed.
func (p *ProviderCache) Generate(ctx context.Context, spec PromptSpec) (string, error) {
	gen, err := p.generator(ctx)
	if err != nil {
		return "", err
	}
	return gen.Generate(ctx, spec)
}

// Invalidate drops the cached generator so the next call re-resolves the
// active credential.
func (p *ProviderCache) Invalidate() {
	p.mu.Lock()
	p.gen = nil
	p.mu.Unlock()
}

func (p *ProviderCache) generator(ctx context.Context) (Generator, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.gen != nil {
		return p.gen, nil
	}

	cred, err := p.source.ActiveCredential(ctx, p.service)
	if err != nil {
		return nil, err
	}

	gen, err := p.factory(cred)
	if err != nil {
		return nil, err
	}

	p.gen = gen
	return gen, nil
}
