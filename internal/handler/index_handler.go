package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/codelensai/coderag/internal/domain"
	"github.com/codelensai/coderag/internal/port"
	"github.com/codelensai/coderag/internal/urlparse"
)

// IndexHandler handles repository submission and job status.
type IndexHandler struct {
	queue port.Queue
}

// NewIndexHandler creates a new index handler.
func NewIndexHandler(queue port.Queue) *IndexHandler {
	return &IndexHandler{queue: queue}
}

// Register mounts /api/index routes.
func (h *IndexHandler) Register(router fiber.Router) {
	idx := router.Group("/index")
	idx.Post("/", h.Submit)
	idx.Get("/status/:jobId", h.Status)
}

// Submit enqueues a repository for indexing.
func (h *IndexHandler) Submit(c fiber.Ctx) error {
	var body struct {
		GitHubURL   string `json:"githubUrl"`
		GitHubToken string `json:"githubToken"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if _, _, err := urlparse.GitHubRepo(body.GitHubURL); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid GitHub URL"})
	}

	jobID, err := h.queue.Enqueue(c.Context(), domain.IndexRepoJobData{
		GitHubURL: body.GitHubURL, GitHubToken: body.GitHubToken,
	})
	if err != nil {
		return writeAppErr(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message":   "indexing job enqueued",
		"jobId":     jobID,
		"githubUrl": body.GitHubURL,
	})
}

// Status reports a job's current state.
func (h *IndexHandler) Status(c fiber.Ctx) error {
	job, err := h.queue.Status(c.Context(), c.Params("jobId"))
	if err != nil {
		return writeAppErr(c, err)
	}

	resp := fiber.Map{
		"jobId":    job.ID,
		"state":    job.State,
		"progress": job.Progress,
	}
	if job.Result != nil {
		resp["result"] = job.Result
	}
	if job.FailReason != "" {
		resp["failReason"] = job.FailReason
	}
	return c.JSON(resp)
}
