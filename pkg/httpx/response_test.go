package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/example/storehub/pkg/orders"
	"github.com/example/storehub/pkg/rbac"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func testContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, rec
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", fmt.Errorf("%w: bad field", orders.ErrValidation), http.StatusBadRequest},
		{"total mismatch", orders.ErrTotalMismatch, http.StatusBadRequest},
		{"not found", orders.ErrNotFound, http.StatusNotFound},
		{"gorm not found", gorm.ErrRecordNotFound, http.StatusNotFound},
		{"crud not found", fmt.Errorf("brand 3: %w", ErrNotFound), http.StatusNotFound},
		{"access denied", orders.ErrAccessDenied, http.StatusForbidden},
		{"no role", rbac.ErrNoRole, http.StatusForbidden},
		{"permission denied", rbac.ErrPermissionDenied, http.StatusForbidden},
		{"invalid transition", fmt.Errorf("%w: SHIPPED -> PENDING", orders.ErrInvalidTransition), http.StatusConflict},
		{"not cancellable", orders.ErrNotCancellable, http.StatusConflict},
		{"not returnable", orders.ErrNotReturnable, http.StatusConflict},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := testContext(t)
			Error(c, zap.NewNop(), tt.err)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestErrorOwnershipDistinction(t *testing.T) {
	// Another customer's order must surface as 403, not 404.
	c, rec := testContext(t)
	Error(c, zap.NewNop(), orders.ErrAccessDenied)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NotEqual(t, http.StatusNotFound, rec.Code)
}

func TestErrorInternalHidesDetail(t *testing.T) {
	c, rec := testContext(t)
	Error(c, zap.NewNop(), errors.New("password=hunter2 leaked into error"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "hunter2")
	assert.Contains(t, rec.Body.String(), "internal server error")
}

func TestParseIDParam(t *testing.T) {
	tests := []struct {
		raw    string
		wantID uint
		wantOK bool
	}{
		{"7", 7, true},
		{"0", 0, false},
		{"-3", 0, false},
		{"abc", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		c, rec := testContext(t)
		c.Params = gin.Params{{Key: "id", Value: tt.raw}}

		id, ok := ParseIDParam(c, "id")
		assert.Equal(t, tt.wantOK, ok, "raw=%q", tt.raw)
		assert.Equal(t, tt.wantID, id, "raw=%q", tt.raw)
		if !tt.wantOK {
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "id")
		}
	}
}
