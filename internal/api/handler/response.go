package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// Envelope is the body of every API response.
type Envelope struct {
	Code    string `json:"code" example:"200"`
	Message string `json:"message" example:"ADMIN login successful"`
	Token   string `json:"token,omitempty"`
}

func NewEnvelope(status int, msg string) Envelope {
	return Envelope{Code: strconv.Itoa(status), Message: msg}
}

func respond(c echo.Context, status int, msg string) error {
	return c.JSON(status, NewEnvelope(status, msg))
}
