package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fatewave/fatewave-api/internal/utils"
)

// ErrorHandler renders unhandled errors (including echo.HTTPError from
// routing and binding) in the standard response envelope. Underlying error
// details are only exposed in the dev environment.
func ErrorHandler(env string) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		message := "internal server error"
		code := "INTERNAL_SERVER_ERROR"

		if he, ok := err.(*echo.HTTPError); ok {
			status = he.Code
			if m, ok := he.Message.(string); ok {
				message = m
			}
			switch status {
			case http.StatusNotFound:
				code = "NOT_FOUND"
			case http.StatusMethodNotAllowed:
				code = "METHOD_NOT_ALLOWED"
			case http.StatusBadRequest:
				code = "VALIDATION_ERROR"
			case http.StatusUnauthorized:
				code = "UNAUTHORIZED"
			case http.StatusTooManyRequests:
				code = "TOO_MANY_REQUESTS"
			}
		}

		resp := utils.ErrorResponse{Message: message, ErrorCode: code}
		if env == "dev" {
			resp.Details = err.Error()
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, resp)
	}
}
