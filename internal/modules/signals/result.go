package signals

import (
	"github.com/quantfold/signalcore/internal/domain"
)

// SignalResult is the outcome of one evaluation. Reasoning clauses are in
// evaluation order: the first clause is the primary justification.
type SignalResult struct {
	Signal     domain.SignalType      `json:"signal"`
	Confidence float64                `json:"confidence"`
	Reasoning  []string               `json:"reasoning"`
	Metadata   map[string]interface{} `json:"metadata"`
}

// WithMeta returns a copy of the result with an extra metadata entry.
// The original result is not mutated.
func (r SignalResult) WithMeta(key string, value interface{}) SignalResult {
	meta := make(map[string]interface{}, len(r.Metadata)+1)
	for k, v := range r.Metadata {
		meta[k] = v
	}
	meta[key] = value
	r.Metadata = meta
	return r
}
