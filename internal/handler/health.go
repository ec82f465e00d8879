package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fatewave/fatewave-api/internal/utils"
)

// Health is a simple health-check endpoint used by load balancers and
// monitoring systems to verify that the service is running.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "healthy",
		Data: map[string]string{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		},
	})
}
