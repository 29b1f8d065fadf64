// Package ai implements port.AIProvider against Gemini's REST API.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
)

// Config holds the configuration for the Gemini endpoint.
type Config struct {
	BaseURL        string // e.g. https://generativelanguage.googleapis.com
	EmbeddingModel string // e.g. text-embedding-004
	ChatModel      string // e.g. gemini-1.5-flash
	APIKey         string
	Dimension      int // fixed dimension D of EmbeddingModel's output
}

// GeminiProvider implements port.AIProvider over Gemini's REST API.
type GeminiProvider struct {
	cfg        Config
	httpClient *http.Client
}

// New creates a Gemini-backed AI provider.
func New(cfg Config) *GeminiProvider {
	return &GeminiProvider{cfg: cfg, httpClient: &http.Client{}}
}

func (p *GeminiProvider) ModelName() string      { return p.cfg.EmbeddingModel }
func (p *GeminiProvider) EmbeddingDimension() int { return p.cfg.Dimension }

// Embed generates a single unit-length vector embedding.
func (p *GeminiProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("gemini embed: empty response")
	}
	return vecs[0], nil
}

// EmbedBatch generates embeddings for multiple texts in one call via
// Gemini's batchEmbedContents endpoint.
func (p *GeminiProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	requests := make([]map[string]interface{}, len(texts))
	for i, t := range texts {
		requests[i] = map[string]interface{}{
			"model":   "models/" + p.cfg.EmbeddingModel,
			"content": map[string]interface{}{"parts": []map[string]string{{"text": t}}},
		}
	}
	payload := map[string]interface{}{"requests": requests}

	path := fmt.Sprintf("/v1beta/models/%s:batchEmbedContents", p.cfg.EmbeddingModel)
	body, err := p.post(ctx, path, payload)
	if err != nil {
		return nil, fmt.Errorf("gemini embed batch: %w", err)
	}

	var resp struct {
		Embeddings []struct {
			Values []float32 `json:"values"`
		} `json:"embeddings"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("gemini embed batch decode: %w", err)
	}
	out := make([][]float32, len(resp.Embeddings))
	for i, e := range resp.Embeddings {
		out[i] = normalize(e.Values)
	}
	return out, nil
}

// normalize scales v to unit L2 norm. text-embedding-004 doesn't guarantee
// a unit-norm response, but the AIProvider contract promises one, so it's
// enforced here rather than trusted to the vendor.
func normalize(v []float32) []float32 {
	var sumSquares float64
	for _, x := range v {
		sumSquares += float64(x) * float64(x)
	}
	norm := math.Sqrt(sumSquares)
	if norm == 0 {
		return v
	}
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

// Generate produces a grounded answer from a system and user prompt, with
// low temperature and bounded output favoring grounding over creativity.
func (p *GeminiProvider) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	payload := map[string]interface{}{
		"systemInstruction": map[string]interface{}{
			"parts": []map[string]string{{"text": systemPrompt}},
		},
		"contents": []map[string]interface{}{
			{"role": "user", "parts": []map[string]string{{"text": userPrompt}}},
		},
		"generationConfig": map[string]interface{}{
			"temperature":     0.1,
			"maxOutputTokens": 1024,
		},
	}

	path := fmt.Sprintf("/v1beta/models/%s:generateContent", p.cfg.ChatModel)
	body, err := p.post(ctx, path, payload)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	var resp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("gemini generate decode: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini generate: empty response")
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}

// post is a helper for POST requests to the Gemini REST API.
func (p *GeminiProvider) post(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+path+"?key="+p.cfg.APIKey, bytes.NewReader(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("gemini API error (%d): %s", resp.StatusCode, string(body))
	}
	return io.ReadAll(resp.Body)
}
