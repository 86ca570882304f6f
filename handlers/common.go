package handlers

import (
	"errors"
	"log"
	"net/http"

	"questionbank/middleware"
	"questionbank/services"

	"github.com/gin-gonic/gin"
)

type ErrorResponse struct {
	Error string `json:"error" example:"Question not found"`
}

func respondError(c *gin.Context, err error) {
	if errors.Is(err, services.ErrQuestionNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Question not found"})
		return
	}

	log.Printf("[%s] %s %s failed: %v", c.GetString(middleware.RequestIDKey), c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}
