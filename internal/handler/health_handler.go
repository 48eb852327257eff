package handler

import (
	"time"

	"questa-search/internal/dto"
	"questa-search/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Version is reported by the health endpoint; set at build time with -ldflags.
var Version = "dev"

type HealthHandler struct {
	service service.SearchService
}

func NewHealthHandler(svc service.SearchService) *HealthHandler {
	return &HealthHandler{service: svc}
}

// Health godoc
// @Summary Health check
// @Description Reports database and cache reachability. Unhealthy when the database is down.
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Failure 503 {object} dto.HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	report := h.service.Health(c.UserContext())
	resp := dto.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   Version,
		Database:  report.Database,
		Cache:     report.Cache,
	}
	if !report.Healthy() {
		resp.Status = "unhealthy"
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	}
	return c.JSON(resp)
}
