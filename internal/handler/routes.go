package handler

import (
	"questa-search/internal/config"
	"questa-search/internal/middleware"
	"questa-search/internal/service"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts the /api routes on app. validator may be nil when
// auth is not required.
func RegisterRoutes(app *fiber.App, svc service.SearchService, validator service.TokenValidator, cfg *config.Config) {
	searchHandler := NewSearchHandler(svc, cfg.Search)
	questionHandler := NewQuestionHandler(svc)
	healthHandler := NewHealthHandler(svc)
	vm := middleware.NewValidationMiddleware()

	auth := middleware.AuthIfRequired(validator, cfg.Auth.Required)

	api := app.Group("/api")
	api.Get("/health", healthHandler.Health)

	searchGroup := api.Group("/search")
	searchGroup.Get("/questions", searchHandler.SearchQuestions)
	searchGroup.Get("/suggestions", searchHandler.Suggestions)

	questions := api.Group("/questions")
	questions.Get("/", vm.ValidateSubject(), questionHandler.ListQuestions)
	questions.Get("/:id", vm.ValidateQuestionID(), questionHandler.GetQuestion)
	questions.Post("/", auth, questionHandler.CreateQuestion)
	questions.Put("/:id", auth, vm.ValidateQuestionID(), questionHandler.UpdateQuestion)
	questions.Delete("/:id", auth, vm.ValidateQuestionID(), questionHandler.DeleteQuestion)
}
