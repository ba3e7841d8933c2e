// Package httpx holds the JSON envelope every endpoint answers with and the
// echo error handler that turns service errors into it.
package httpx

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Envelope is the uniform response body.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func OK(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

func Created(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// Message answers 200 with a message and optional data.
func Message(c echo.Context, msg string, data interface{}) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Message: msg, Data: data})
}

// Fail writes an error envelope.
func Fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, Envelope{Success: false, Error: msg})
}
