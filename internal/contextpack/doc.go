// Package contextpack assembles a token-budgeted context pack for a query:
// it decomposes the query into facets, retrieves candidate chunks per facet
// with hybrid (dense+sparse or dense+keyword) search, expands across the
// dependency graph, reranks with an LLM when there are enough candidates to
// be worth it, greedily fills the token budget, and folds in durable
// guardrail memories (decisions, test commands) before assembling the final
// markdown-ish text a caller hands to a model.
package contextpack
