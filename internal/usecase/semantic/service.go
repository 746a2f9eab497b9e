// Package semantic scores two condensed profiles by the cosine similarity of
// their embeddings and explains the score from the attributes they share.
package semantic

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/blas/blas32"

	"github.com/kailas-cloud/reachout/internal/domain"
	"github.com/kailas-cloud/reachout/internal/domain/network"
	"github.com/kailas-cloud/reachout/internal/domain/profile"
	"github.com/kailas-cloud/reachout/internal/logger"
)

const maxTalkingPoints = 3

// Service implements network.SemanticService on top of an embedding provider.
type Service struct {
	embedder Embedder
	provider string
	logger   *zap.Logger
}

// New creates a semantic similarity service.
func New(embedder Embedder, provider string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{embedder: embedder, provider: provider, logger: logger}
}

// Compare embeds both profiles in one batch and returns their cosine
// similarity clamped to [0, 1]. Profiles with nothing comparable score 0
// without calling the provider.
func (s *Service) Compare(ctx context.Context, source, target profile.Condensed) (network.SemanticMatch, error) {
	if source.IsEmpty() || target.IsEmpty() {
		return network.SemanticMatch{}, nil
	}

	start := time.Now()
	res, err := domain.EmbedTexts(ctx, s.embedder, []string{source.Text(), target.Text()})
	if err != nil {
		return network.SemanticMatch{}, fmt.Errorf("embed profiles: %w", err)
	}

	sim, err := Cosine(res.Embeddings[0], res.Embeddings[1])
	if err != nil {
		return network.SemanticMatch{}, err
	}

	shared, points := sharedContext(source, target)
	match := network.SemanticMatch{
		Similarity:    sim,
		SharedContext: shared,
		Reasoning:     reasoning(sim, shared, target),
		TalkingPoints: points,
	}

	logger.FromContextOr(ctx, s.logger).Debug("Semantic comparison completed",
		zap.String("provider", s.provider),
		zap.Float64("similarity", sim),
		zap.Int("shared", len(shared)),
		zap.Int("total_tokens", res.TotalTokens),
		zap.Duration("duration", time.Since(start)),
	)
	return match, nil
}

// HealthCheck verifies the embedding provider when it supports health checks.
func (s *Service) HealthCheck(ctx context.Context) error {
	if hc, ok := s.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("semantic provider %s: %w", s.provider, err)
		}
	}
	return nil
}

// Cosine returns the cosine similarity of a and b clamped to [0, 1].
// Zero vectors score 0.
func Cosine(a, b []float32) (float64, error) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, fmt.Errorf("vector dimensions %d and %d: %w", len(a), len(b), domain.ErrMalformedResponse)
	}
	va := blas32.Vector{N: len(a), Inc: 1, Data: a}
	vb := blas32.Vector{N: len(b), Inc: 1, Data: b}

	na, nb := blas32.Nrm2(va), blas32.Nrm2(vb)
	if na == 0 || nb == 0 {
		return 0, nil
	}
	cos := float64(blas32.Dot(va, vb)) / (float64(na) * float64(nb))
	return min(1, max(0, cos)), nil
}

func sharedContext(a, b profile.Condensed) (shared, points []string) {
	if schools := intersect(a.Schools, b.Schools); len(schools) > 0 {
		shared = append(shared, "school: "+strings.Join(schools, ", "))
		points = append(points, "You both studied at "+schools[0])
	}
	if companies := intersect(a.Companies, b.Companies); len(companies) > 0 {
		shared = append(shared, "companies: "+strings.Join(companies, ", "))
		points = append(points, "You both worked at "+companies[0])
	}
	if skills := intersect(a.Skills, b.Skills); len(skills) > 0 {
		shared = append(shared, "skills: "+strings.Join(skills, ", "))
		points = append(points, "Your shared experience with "+strings.Join(skills[:min(3, len(skills))], ", "))
	}
	if a.Industry != "" && profile.Normalize(a.Industry) == profile.Normalize(b.Industry) {
		shared = append(shared, "industry: "+b.Industry)
		points = append(points, "Your common background in "+b.Industry)
	}
	if a.Location != "" && profile.Normalize(a.Location) == profile.Normalize(b.Location) {
		shared = append(shared, "location: "+b.Location)
		points = append(points, "You are both based in "+b.Location)
	}
	if len(points) > maxTalkingPoints {
		points = points[:maxTalkingPoints]
	}
	return shared, points
}

func reasoning(sim float64, shared []string, target profile.Condensed) string {
	name := target.Name
	if name == "" {
		name = "the target"
	}
	if len(shared) == 0 {
		return fmt.Sprintf("Profile embeddings are %.0f%% similar to %s.", sim*100, name)
	}
	return fmt.Sprintf("Profile embeddings are %.0f%% similar to %s, with %s in common.",
		sim*100, name, strings.Join(shared, "; "))
}

// intersect returns the entries of b whose normalized form also appears in a,
// in b's order and without duplicates.
func intersect(a, b []string) []string {
	set := make(map[string]struct{}, len(a))
	for _, s := range a {
		if n := profile.Normalize(s); n != "" {
			set[n] = struct{}{}
		}
	}
	var out []string
	for _, s := range b {
		n := profile.Normalize(s)
		if _, ok := set[n]; ok {
			out = append(out, s)
			delete(set, n)
		}
	}
	return out
}
