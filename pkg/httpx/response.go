// Package httpx carries the response envelope and the central error
// translator. Every route answers {success, message?, data?}; service
// errors are mapped to HTTP statuses in exactly one place.
package httpx

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/example/storehub/pkg/auth"
	"github.com/example/storehub/pkg/orders"
	"github.com/example/storehub/pkg/rbac"
	"github.com/gin-gonic/gin"
	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Sentinels for callers (like the generic CRUD layer) that have no domain
// error set of their own.
var (
	ErrNotFound   = errors.New("resource not found")
	ErrValidation = errors.New("invalid input")
	ErrConflict   = errors.New("conflicting resource state")
)

type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

func OKMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Envelope{Success: false, Message: message})
}

func Unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, Envelope{Success: false, Message: message})
}

func Forbidden(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusForbidden, Envelope{Success: false, Message: message})
}

const mysqlDuplicateEntry = 1062

// Error maps a service error onto the taxonomy: 400 validation, 404
// not-found, 403 access-denied, 409 conflict, everything unknown becomes a
// logged 500 with a generic body.
func Error(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, orders.ErrValidation),
		errors.Is(err, orders.ErrTotalMismatch),
		errors.Is(err, ErrValidation):
		c.JSON(http.StatusBadRequest, Envelope{Success: false, Message: err.Error()})

	case errors.Is(err, orders.ErrNotFound),
		errors.Is(err, rbac.ErrRoleNotFound),
		errors.Is(err, gorm.ErrRecordNotFound),
		errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, Envelope{Success: false, Message: err.Error()})

	case errors.Is(err, orders.ErrAccessDenied),
		errors.Is(err, rbac.ErrNoRole),
		errors.Is(err, rbac.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, Envelope{Success: false, Message: err.Error()})

	case errors.Is(err, orders.ErrInvalidTransition),
		errors.Is(err, orders.ErrNotCancellable),
		errors.Is(err, orders.ErrNotReturnable),
		errors.Is(err, ErrConflict):
		c.JSON(http.StatusConflict, Envelope{Success: false, Message: err.Error()})

	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrInvalidRefreshToken):
		c.JSON(http.StatusUnauthorized, Envelope{Success: false, Message: err.Error()})

	case isDuplicateEntry(err):
		c.JSON(http.StatusConflict, Envelope{Success: false, Message: "duplicate value for a unique field"})

	default:
		logger.Error("Unhandled request error",
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, Envelope{Success: false, Message: "internal server error"})
	}
}

func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}

// ParseIDParam reads a positive-integer path parameter; on failure it writes
// a 400 naming the offending parameter and returns ok=false.
func ParseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		BadRequest(c, "parameter "+name+" must be a positive integer")
		return 0, false
	}
	return uint(id), true
}
