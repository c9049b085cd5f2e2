package ai

import (
	"context"

	"github.com/agencyops/seo-intel/internal/models"
)

// BatchArticle pairs a persisted fetch result with its originating source,
// which supplies the tier/category framing for the prompt
type BatchArticle struct {
	Result *models.FetchResult
	Source *models.Source
}

// ParsedRecommendation is one recommendation extracted from a provider
// response, before it is assigned a digest-wide index and persisted
type ParsedRecommendation struct {
	Category  string
	Title     string
	Summary   string
	Details   string
	Impact    models.Impact
	Citations []models.Citation
}

// Provider analyzes one batch of articles and returns structured
// recommendations. A provider performs exactly one model call per batch
// with no retry; transient failures propagate to the orchestrator's
// per-stage failure handling.
type Provider interface {
	Analyze(ctx context.Context, articles []BatchArticle) ([]ParsedRecommendation, error)
}

// TestConnection is an optional interface for providers that can verify
// their credentials without running an analysis
type TestConnection interface {
	Ping(ctx context.Context) error
}

// ProviderFactory creates a provider from string configuration
type ProviderFactory func(config map[string]string) (Provider, error)

// ProviderRegistry stores available analysis providers
type ProviderRegistry struct {
	providers map[string]ProviderFactory
}

// NewProviderRegistry creates a new provider registry
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[string]ProviderFactory),
	}
}

// Register registers a provider factory
func (r *ProviderRegistry) Register(name string, factory ProviderFactory) {
	r.providers[name] = factory
}

// GetProvider gets a provider by name
func (r *ProviderRegistry) GetProvider(name string, config map[string]string) (Provider, error) {
	factory, ok := r.providers[name]
	if !ok {
		return nil, &ErrProviderNotFound{Name: name}
	}

	return factory(config)
}

// ErrProviderNotFound is returned when a provider is not registered
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	return "analysis provider not found: " + e.Name
}
