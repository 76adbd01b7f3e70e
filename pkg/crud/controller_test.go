package crud

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/example/storehub/pkg/httpx"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type widget struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type widgetCreate struct {
	Name   string `json:"name" binding:"required"`
	Secret string `json:"secret"`
}

type widgetUpdate struct {
	Name *string `json:"name"`
}

func TestCreateRejectsSchemaError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	ct := NewController(nil, zap.NewNop(), "widget",
		func(req widgetCreate) (widget, error) {
			if len(req.Secret) > 72 {
				return widget{}, fmt.Errorf("%w: secret too long", httpx.ErrValidation)
			}
			return widget{Name: req.Name}, nil
		},
		func(w *widget, req widgetUpdate) {},
	)

	body := fmt.Sprintf(`{"name":"x","secret":%q}`, strings.Repeat("a", 100))
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/widgets", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	// The schema's rejection reaches the client as a 400; the service is
	// nil, so any attempt to persist the record would panic.
	ct.create(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "secret too long")
}
