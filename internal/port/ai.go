package port

import "context"

// AIProvider abstracts the embedding and generation backend. Implementations
// can target Gemini, Ollama, or any API-compatible vendor; the LLM half is
// treated as an opaque text-in/text-out collaborator.
type AIProvider interface {
	// ModelName returns the identifier of the embedding model in use, so
	// callers can stamp it onto RepoIndex.EmbeddingModel.
	ModelName() string

	// EmbeddingDimension returns the fixed dimension D of vectors this
	// provider emits.
	EmbeddingDimension() int

	// Embed generates a single L2-normalized vector embedding.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts in one call, each
	// L2-normalized the same as Embed.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Generate produces a grounded answer from a system and user prompt.
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
