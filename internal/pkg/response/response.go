package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ceramicflow/internal/pkg/apperr"
	"ceramicflow/internal/pkg/validator"
)

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// FromError maps a domain error onto the HTTP envelope. Unknown errors become 500
// and are attached to the gin context for ErrorLogger.
func FromError(c *gin.Context, err error) {
	kind, ok := apperr.KindOf(err)
	if !ok {
		_ = c.Error(err)
		Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
		return
	}

	detail := apperr.DetailOf(err)
	switch kind {
	case apperr.KindValidation:
		Error(c, http.StatusBadRequest, "VALIDATION_ERROR", detail)
	case apperr.KindConflict:
		Error(c, http.StatusConflict, "CONFLICT", detail)
	case apperr.KindNotFound:
		Error(c, http.StatusNotFound, "NOT_FOUND", detail)
	case apperr.KindAuth:
		Error(c, http.StatusUnauthorized, "UNAUTHORIZED", detail)
	default:
		_ = c.Error(err)
		Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}

// BindJSON decodes the body into req and validates it. On failure it writes the
// error response and returns false.
func BindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		Error(c, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return false
	}
	if errs := validator.Validate(req); errs != nil {
		ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "request validation failed", errs)
		return false
	}
	return true
}
