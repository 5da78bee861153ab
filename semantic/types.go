package semantic

import "github.com/ionplatox-blip/rnd-map-moscow-2025/core"

// Request is the wire body of one semantic search call.
type Request struct {
	Query      string `json:"query"`
	TopK       int    `json:"top_k_results"`
	UseRewrite bool   `json:"use_rewrite"`
	UseRerank  bool   `json:"use_rerank"`
}

// Response is the wire body of one semantic search answer. Fields the
// service adds beyond these, timings for example, are ignored.
type Response struct {
	Results        []core.SemanticResult `json:"results"`
	RewrittenQuery string                `json:"rewritten_query"`
}
