package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/codelensai/coderag/internal/query"
)

// QueryHandler handles RAG query requests.
type QueryHandler struct {
	service *query.Service
}

// NewQueryHandler creates a new query handler.
func NewQueryHandler(service *query.Service) *QueryHandler {
	return &QueryHandler{service: service}
}

// Register mounts /api/rag routes.
func (h *QueryHandler) Register(router fiber.Router) {
	rag := router.Group("/rag")
	rag.Post("/query", h.Query)
}

// Query runs the retrieve -> assemble -> generate pipeline for one repo.
func (h *QueryHandler) Query(c fiber.Ctx) error {
	var body struct {
		RepoID string `json:"repoId"`
		Query  string `json:"query"`
		TopK   int    `json:"topK"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := query.Validate(body.RepoID, body.Query); err != nil {
		return writeAppErr(c, err)
	}

	resp, err := h.service.Query(c.Context(), body.RepoID, body.Query, body.TopK)
	if err != nil {
		return writeAppErr(c, err)
	}
	return c.JSON(resp)
}
