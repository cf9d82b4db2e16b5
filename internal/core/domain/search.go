package domain

// SearchOptions configures a single retriever call.
type SearchOptions struct {
	// TopK is the maximum number of records to return.
	TopK int

	// Hybrid enables fused vector+lexical search. When false, the
	// retriever performs vector-only search.
	Hybrid bool

	// Alpha is the RRF hybrid weight favouring the vector ranking;
	// (1-Alpha) weights the lexical ranking. Ignored when Hybrid is false.
	Alpha float64
}

// ScoredChunk pairs a materialized chunk record with a fused relevance score.
type ScoredChunk struct {
	Record ChunkRecord
	Score  float64
}

// Answer is the result of a full query-pipeline run: the LLM's generated
// text plus the chunks used to build its context.
type Answer struct {
	// Question is the original user question.
	Question string

	// Text is the LLM collaborator's generated answer.
	Text string

	// Sources are the chunks included in the context, in the order used.
	Sources []ChunkRecord

	// Variants are the query phrasings actually searched (original plus
	// any accepted expansions).
	Variants []string
}
