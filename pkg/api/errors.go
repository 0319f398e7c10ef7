package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ErrorResponse is the body of every 4xx/5xx the API produces itself.
type ErrorResponse struct {
	Status  int    `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (h *Handler) badRequest(c echo.Context, err error) error {
	h.logger.Warn().Err(err).Str("path", c.Request().URL.Path).Msg("Validation error")
	return c.JSON(http.StatusBadRequest, ErrorResponse{
		Status:  http.StatusBadRequest,
		Error:   http.StatusText(http.StatusBadRequest),
		Message: err.Error(),
	})
}
