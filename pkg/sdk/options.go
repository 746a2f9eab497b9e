package reachout

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	companies  CompanyDirectory
	activities ActivityStore
	semantic   SemanticService

	semanticURL    string
	semanticAPIKey string

	openAIKey     string
	openAIBaseURL string
	openAIModel   string

	semanticTimeout time.Duration
	upgradeMargin   float64
	chunkSize       int
	minConfidence   float64

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithCompanyDirectory enables the company bridge strategy.
func WithCompanyDirectory(d CompanyDirectory) Option {
	return optionFunc(func(c *clientConfig) {
		c.companies = d
	})
}

// WithActivityStore enables the engagement bridge strategy.
// If the store also implements OutboundActivitySource, the requester's own
// engagement counts toward stepping stones.
func WithActivityStore(s ActivityStore) Option {
	return optionFunc(func(c *clientConfig) {
		c.activities = s
	})
}

// WithSemanticService sets a custom semantic similarity backend.
// Takes precedence over WithSemanticBackend and WithOpenAIEmbeddings.
func WithSemanticService(s SemanticService) Option {
	return optionFunc(func(c *clientConfig) {
		c.semantic = s
	})
}

// WithSemanticBackend uses a remote HTTP similarity backend exposing
// POST /compare and GET /health.
func WithSemanticBackend(baseURL, apiKey string) Option {
	return optionFunc(func(c *clientConfig) {
		c.semanticURL = baseURL
		c.semanticAPIKey = apiKey
	})
}

// WithOpenAIEmbeddings scores profiles by cosine similarity of embeddings
// from an OpenAI-compatible API. An empty baseURL uses api.openai.com.
func WithOpenAIEmbeddings(apiKey, baseURL, model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.openAIKey = apiKey
		c.openAIBaseURL = baseURL
		c.openAIModel = model
	})
}

// WithSemanticTimeout bounds each semantic call. Default: 5s.
func WithSemanticTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.semanticTimeout = d
	})
}

// WithUpgradeMargin sets how far semantic confidence must exceed cold
// confidence before it replaces the cold strategy. Default: 0.
func WithUpgradeMargin(m float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.upgradeMargin = m
	})
}

// WithBatchChunkSize sets how many batch targets are evaluated concurrently.
// Default: 100.
func WithBatchChunkSize(size int) Option {
	return optionFunc(func(c *clientConfig) {
		c.chunkSize = size
	})
}

// WithMinConfidence sets the batch confidence floor. Default: 0.45.
func WithMinConfidence(v float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.minConfidence = v
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
