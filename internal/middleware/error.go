package middleware

import (
	"context"
	"errors"
	"net/http"

	"questa-search/internal/domain"
	"questa-search/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every non-validation error.
type ErrorResponse struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Status  int                    `json:"status"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ValidationErrorResponse lists every rejected field of a question payload or path parameter.
type ValidationErrorResponse struct {
	Code    string                   `json:"code"`
	Message string                   `json:"message"`
	Status  int                      `json:"status"`
	Errors  []domain.ValidationError `json:"errors"`
}

const (
	codeHTTP    = "HTTP_ERROR"
	codeTimeout = "TIMEOUT"
)

var statusByCode = map[domain.ErrorCode]int{
	domain.CodeNotFound:          http.StatusNotFound,
	domain.CodeQuestionNotFound:  http.StatusNotFound,
	domain.CodeInvalidInput:      http.StatusBadRequest,
	domain.CodeValidation:        http.StatusBadRequest,
	domain.CodeMissingField:      http.StatusBadRequest,
	domain.CodeInvalidFormat:     http.StatusBadRequest,
	domain.CodeOutOfRange:        http.StatusBadRequest,
	domain.CodeUnauthorized:      http.StatusUnauthorized,
	domain.CodeRemoteUnavailable: http.StatusServiceUnavailable,
}

// ErrorHandler renders handler errors for the search and question endpoints.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		log := logger.Get().With(zap.String("method", c.Method()), zap.String("path", c.Path()))

		var verrs domain.ValidationErrors
		if errors.As(err, &verrs) {
			log.Info("Rejected request", zap.Int("field_errors", len(verrs)))
			return c.Status(http.StatusBadRequest).JSON(ValidationErrorResponse{
				Code:    string(domain.CodeValidation),
				Message: "Request validation failed",
				Status:  http.StatusBadRequest,
				Errors:  verrs,
			})
		}

		resp := ErrorResponse{
			Code:    string(domain.CodeInternal),
			Message: "Internal server error",
			Status:  http.StatusInternalServerError,
		}

		var derr *domain.DomainError
		var ferr *fiber.Error
		switch {
		case errors.As(err, &derr):
			resp.Code = string(derr.Code)
			resp.Message = derr.Message
			resp.Status = statusFor(derr.Code)
			if len(derr.Context) > 0 {
				resp.Details = derr.Context
			}
		case errors.As(err, &ferr):
			resp.Code = codeHTTP
			resp.Message = ferr.Message
			resp.Status = ferr.Code
		case errors.Is(err, context.DeadlineExceeded):
			resp.Code = codeTimeout
			resp.Message = "Search took too long"
			resp.Status = http.StatusGatewayTimeout
		}

		fields := []zap.Field{zap.String("code", resp.Code), zap.Int("status", resp.Status), zap.Error(err)}
		if resp.Status >= http.StatusInternalServerError {
			log.Error("Request failed", fields...)
		} else {
			log.Info("Request failed", fields...)
		}
		return c.Status(resp.Status).JSON(resp)
	}
}

func statusFor(code domain.ErrorCode) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
