package model

import (
	"fmt"
	"math"

	"github.com/spf13/viper"
)

// SearchConfig represents the process-wide retrieval configuration.
// It is loaded once at startup, validated eagerly and read-only thereafter,
// so it can be shared by concurrent queries without coordination.
type SearchConfig struct {
	// Ranking weights
	VectorWeight float64 `json:"vector_weight" mapstructure:"vector_weight"`
	GraphWeight  float64 `json:"graph_weight" mapstructure:"graph_weight"`

	// Graph traversal parameters
	MaxGraphDepth     int                  `json:"max_graph_depth" mapstructure:"max_graph_depth"`
	EdgeWeights       map[EdgeType]float64 `json:"edge_weights,omitempty" mapstructure:"edge_weights"`
	DefaultEdgeWeight float64              `json:"default_edge_weight" mapstructure:"default_edge_weight"`
	// DepthDecay holds optional per-depth decay factors (index 0 = depth 1).
	// When empty, inverse-linear decay 1/d is used. Factors must be finite,
	// non-negative and non-increasing.
	DepthDecay []float64 `json:"depth_decay,omitempty" mapstructure:"depth_decay"`

	// Vector search parameters
	TopK        int `json:"top_k" mapstructure:"top_k"`
	MaxTopK     int `json:"max_top_k" mapstructure:"max_top_k"`
	ResultLimit int `json:"result_limit" mapstructure:"result_limit"`
}

// DefaultSearchConfig returns a sensible default configuration
func DefaultSearchConfig() SearchConfig {
	return SearchConfig{
		VectorWeight:      0.7,
		GraphWeight:       0.3,
		MaxGraphDepth:     2,
		EdgeWeights:       nil, // All types fall back to DefaultEdgeWeight
		DefaultEdgeWeight: 1.0,
		TopK:              8,
		MaxTopK:           50,
		ResultLimit:       12,
	}
}

// EdgeWeight returns the configured weight multiplier for an edge type,
// falling back to DefaultEdgeWeight for unknown types.
func (c *SearchConfig) EdgeWeight(edgeType EdgeType) float64 {
	if w, ok := c.EdgeWeights[edgeType]; ok {
		return w
	}
	return c.DefaultEdgeWeight
}

// Decay returns the decay factor for a traversal depth d >= 1
func (c *SearchConfig) Decay(depth int) float64 {
	if depth <= 0 {
		return 0
	}
	if len(c.DepthDecay) > 0 {
		if depth > len(c.DepthDecay) {
			return c.DepthDecay[len(c.DepthDecay)-1]
		}
		return c.DepthDecay[depth-1]
	}
	return 1.0 / float64(depth)
}

// Validate checks all weights and bounds eagerly. A malformed configuration
// fails fast at startup instead of silently zeroing out the ranking.
func (c *SearchConfig) Validate() error {
	for name, w := range map[string]float64{
		"vector_weight":       c.VectorWeight,
		"graph_weight":        c.GraphWeight,
		"default_edge_weight": c.DefaultEdgeWeight,
	} {
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return fmt.Errorf("%s must be finite and non-negative, got %v", name, w)
		}
	}
	if c.VectorWeight == 0 && c.GraphWeight == 0 {
		return ErrDegenerateConfig
	}
	if c.MaxGraphDepth < 0 {
		return fmt.Errorf("max_graph_depth must be non-negative, got %d", c.MaxGraphDepth)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("top_k must be positive, got %d", c.TopK)
	}
	if c.MaxTopK < c.TopK {
		return fmt.Errorf("max_top_k must be at least top_k, got %d < %d", c.MaxTopK, c.TopK)
	}
	if c.ResultLimit <= 0 {
		return fmt.Errorf("result_limit must be positive, got %d", c.ResultLimit)
	}
	for edgeType, w := range c.EdgeWeights {
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			return fmt.Errorf("edge weight for %q must be finite and non-negative, got %v", edgeType, w)
		}
	}
	prev := math.Inf(1)
	for i, f := range c.DepthDecay {
		if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
			return fmt.Errorf("depth_decay[%d] must be finite and non-negative, got %v", i, f)
		}
		if f > prev {
			return fmt.Errorf("depth_decay must be non-increasing, got %v after %v", f, prev)
		}
		prev = f
	}
	return nil
}

// LoadSearchConfig loads the search configuration from a structured config
// file (rag_config.yaml/json) with environment variable overrides, prefixed
// with RAGON_. A missing file falls back to defaults; a malformed file or
// malformed values are a fatal startup error.
func LoadSearchConfig(path string) (*SearchConfig, error) {
	v := viper.New()

	defaults := DefaultSearchConfig()
	v.SetDefault("vector_weight", defaults.VectorWeight)
	v.SetDefault("graph_weight", defaults.GraphWeight)
	v.SetDefault("max_graph_depth", defaults.MaxGraphDepth)
	v.SetDefault("default_edge_weight", defaults.DefaultEdgeWeight)
	v.SetDefault("top_k", defaults.TopK)
	v.SetDefault("max_top_k", defaults.MaxTopK)
	v.SetDefault("result_limit", defaults.ResultLimit)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading search config %s: %w", path, err)
		}
	}

	v.SetEnvPrefix("RAGON")
	v.AutomaticEnv()

	config := &SearchConfig{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error decoding search config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid search config: %w", err)
	}

	return config, nil
}
