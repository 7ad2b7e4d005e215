package core

import (
	"context"
	"fmt"
	"sort"
)

// LayoutMatchThreshold is the share of a saved layout's headers that must be
// present in a file for the configuration to be offered as similar.
const LayoutMatchThreshold = 0.6

// ConfigurationMatch is a saved configuration whose layout resembles a file.
type ConfigurationMatch struct {
	Configuration ImportConfiguration `json:"configuration"`
	Score         float64             `json:"score"`
}

// ListConfigurations returns every saved configuration.
func (s *Service) ListConfigurations(ctx context.Context) ([]ImportConfiguration, error) {
	cfgs, err := s.mappings.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list configurations: %w", err)
	}
	return cfgs, nil
}

// DeleteConfiguration forgets the mapping saved for a layout signature.
func (s *Service) DeleteConfiguration(ctx context.Context, signature string) error {
	if err := s.mappings.Delete(ctx, signature); err != nil {
		return fmt.Errorf("delete configuration: %w", err)
	}
	return nil
}

// SimilarConfigurations ranks saved configurations by how many of their
// headers appear in headers. An exact layout match is handled by the
// signature lookup; this helps when a bank adds or renames a column.
func (s *Service) SimilarConfigurations(ctx context.Context, headers []string) ([]ConfigurationMatch, error) {
	cfgs, err := s.ListConfigurations(ctx)
	if err != nil {
		return nil, err
	}

	var matches []ConfigurationMatch
	for _, cfg := range cfgs {
		score := matchLayout(headers, SignatureHeaders(cfg.HeaderSignature))
		if score >= LayoutMatchThreshold {
			matches = append(matches, ConfigurationMatch{Configuration: cfg, Score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches, nil
}

// History returns the most recent import runs, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]ImportRun, error) {
	if s.runs == nil {
		return nil, nil
	}
	runs, err := s.runs.ListRuns(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list import runs: %w", err)
	}
	return runs, nil
}

// matchLayout returns the share of saved headers present in headers.
func matchLayout(headers, saved []string) float64 {
	if len(saved) == 0 {
		return 0
	}

	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[NormalizeHeader(h)] = true
	}

	matched := 0
	for _, h := range saved {
		if h != "" && present[h] {
			matched++
		}
	}
	return float64(matched) / float64(len(saved))
}
