package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"go-order-hub/internal/domain"
	"go-order-hub/internal/infrastructure/logger"
)

// respondError maps an error onto the HTTP error taxonomy: validation 400,
// missing order 404, anything else 500 (logged, details withheld).
func respondError(c *gin.Context, log logger.Logger, err error, action string) {
	var verrs validator.ValidationErrors

	switch {
	case errors.As(err, &verrs):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid order",
			"details": describeValidation(verrs),
		})
	case errors.Is(err, domain.ErrInvalidOrder), errors.Is(err, domain.ErrInvalidTime):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid order",
			"details": err.Error(),
		})
	case errors.Is(err, domain.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Order not found",
		})
	default:
		log.Errorf("Failed to %s: %v", action, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to " + action,
		})
	}
}

// respondBindError reports a malformed request body.
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	details := err.Error()
	if errors.As(err, &verrs) {
		details = describeValidation(verrs)
	}
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request format",
		"details": details,
	})
}

func describeValidation(verrs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := lowerFirst(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s]", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s", field, fe.Tag(), fe.Param()))
		}
	}
	return strings.Join(msgs, "; ")
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}
