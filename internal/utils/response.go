package utils

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// APIResponse is the envelope every endpoint returns.  Data is null for
// responses that carry no payload.
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// ErrorResponse extends the envelope with a machine-readable code and
// optional details.  Details are only populated in debug environments.
type ErrorResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	ErrorCode string      `json:"error_code,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

// OK writes a 200 envelope.
func OK(c echo.Context, message string, data interface{}) error {
	return c.JSON(http.StatusOK, APIResponse{Success: true, Message: message, Data: data})
}

// Created writes a 201 envelope.
func Created(c echo.Context, message string, data interface{}) error {
	return c.JSON(http.StatusCreated, APIResponse{Success: true, Message: message, Data: data})
}

// Fail writes an error envelope with the given HTTP status and error code.
func Fail(c echo.Context, status int, code, message string) error {
	return c.JSON(status, ErrorResponse{Success: false, Message: message, ErrorCode: code})
}

// FailWithDetails is Fail with a details payload attached.
func FailWithDetails(c echo.Context, status int, code, message string, details interface{}) error {
	return c.JSON(status, ErrorResponse{Success: false, Message: message, ErrorCode: code, Details: details})
}
