package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/example/storehub/pkg/auth"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func authTestContext(t *testing.T, token string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/customer/orders", nil)
	c.Request.Header.Set("Authorization", "Bearer "+token)
	return c, rec
}

func TestRequireAuthRejectsNonNumericSubject(t *testing.T) {
	s := &Server{tokens: auth.NewTokenManager(testSecret, time.Minute)}

	// A well-signed token whose subject is not an entity id. Our issuer
	// never mints these, but a parse failure must not degrade to id zero,
	// which downstream reads as an unscoped caller.
	claims := auth.Claims{
		Kind: auth.KindCustomer,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "not-an-id",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	c, rec := authTestContext(t, signed)
	s.requireAuth()(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.True(t, c.IsAborted())
	assert.Equal(t, uint(0), customerID(c))
}

func TestRequireAuthPinsSubjectID(t *testing.T) {
	s := &Server{tokens: auth.NewTokenManager(testSecret, time.Minute)}

	token, err := s.tokens.Issue(88, auth.KindCustomer, 0)
	require.NoError(t, err)

	c, rec := authTestContext(t, token)
	s.requireAuth()(c)

	assert.False(t, c.IsAborted())
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint(88), customerID(c))
}
