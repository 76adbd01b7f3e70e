package server

import (
	"errors"
	"net/http"

	"github.com/example/storehub/pkg/auth"
	"github.com/example/storehub/pkg/httpx"
	"github.com/example/storehub/pkg/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const refreshCookie = "refresh_token"

type registerRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"max=20"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

func (s *Server) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err.Error())
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		httpx.Error(c, s.logger, err)
		return
	}

	customer := models.Customer{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: hash,
	}
	if err := s.db.WithContext(c.Request.Context()).Create(&customer).Error; err != nil {
		httpx.Error(c, s.logger, err)
		return
	}

	s.issueSession(c, customer.ID, auth.KindCustomer, 0, http.StatusCreated)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err.Error())
		return
	}

	var customer models.Customer
	err := s.db.WithContext(c.Request.Context()).Where("email = ?", req.Email).First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Unauthorized(c, "invalid credentials")
			return
		}
		httpx.Error(c, s.logger, err)
		return
	}
	if !auth.CheckPassword(customer.PasswordHash, req.Password) {
		httpx.Unauthorized(c, "invalid credentials")
		return
	}

	s.issueSession(c, customer.ID, auth.KindCustomer, 0, http.StatusOK)
}

// oauthRequest carries a provider identity already verified upstream;
// talking to the provider itself is an external collaborator.
type oauthRequest struct {
	Provider string `json:"provider" binding:"required,max=30"`
	Subject  string `json:"subject" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Name     string `json:"name" binding:"required,max=100"`
}

func (s *Server) oauthLogin(c *gin.Context) {
	var req oauthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err.Error())
		return
	}

	db := s.db.WithContext(c.Request.Context())

	var customer models.Customer
	err := db.Where("oauth_provider = ? AND oauth_subject = ?", req.Provider, req.Subject).
		Or("email = ?", req.Email).
		First(&customer).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		customer = models.Customer{
			Name:          req.Name,
			Email:         req.Email,
			OAuthProvider: req.Provider,
			OAuthSubject:  req.Subject,
		}
		if err := db.Create(&customer).Error; err != nil {
			httpx.Error(c, s.logger, err)
			return
		}
	case err != nil:
		httpx.Error(c, s.logger, err)
		return
	default:
		// Link the provider identity to an existing email account.
		if customer.OAuthProvider == "" {
			customer.OAuthProvider = req.Provider
			customer.OAuthSubject = req.Subject
			if err := db.Save(&customer).Error; err != nil {
				httpx.Error(c, s.logger, err)
				return
			}
		}
	}

	s.issueSession(c, customer.ID, auth.KindCustomer, 0, http.StatusOK)
}

// adminLogin signs a back-office user in; the issued token carries the
// user's role id for permission checks.
func (s *Server) adminLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.BadRequest(c, err.Error())
		return
	}

	var user models.User
	err := s.db.WithContext(c.Request.Context()).Where("email = ?", req.Email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httpx.Unauthorized(c, "invalid credentials")
			return
		}
		httpx.Error(c, s.logger, err)
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		httpx.Unauthorized(c, "invalid credentials")
		return
	}

	s.issueSession(c, user.ID, auth.KindUser, user.RoleID, http.StatusOK)
}

func (s *Server) refreshTokens(c *gin.Context) {
	token, err := c.Cookie(refreshCookie)
	if err != nil || token == "" {
		httpx.Unauthorized(c, "missing refresh token")
		return
	}

	sess, next, err := s.refresh.Rotate(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidRefreshToken) {
			httpx.Unauthorized(c, "invalid or expired refresh token")
			return
		}
		httpx.Error(c, s.logger, err)
		return
	}

	access, err := s.tokens.Issue(sess.SubjectID, sess.Kind, sess.RoleID)
	if err != nil {
		httpx.Error(c, s.logger, err)
		return
	}

	s.setRefreshCookie(c, next)
	httpx.OK(c, gin.H{"access_token": access})
}

// issueSession mints both tokens: the access JWT in the body, the refresh
// token in an HTTP-only cookie.
func (s *Server) issueSession(c *gin.Context, subjectID uint, kind string, roleID uint, status int) {
	access, err := s.tokens.Issue(subjectID, kind, roleID)
	if err != nil {
		httpx.Error(c, s.logger, err)
		return
	}
	refresh, err := s.refresh.Mint(c.Request.Context(), subjectID, kind, roleID)
	if err != nil {
		httpx.Error(c, s.logger, err)
		return
	}

	s.setRefreshCookie(c, refresh)
	c.JSON(status, httpx.Envelope{Success: true, Data: gin.H{"access_token": access}})
}

func (s *Server) setRefreshCookie(c *gin.Context, token string) {
	c.SetCookie(refreshCookie, token,
		int(s.config.JWT.RefreshTTL.Seconds()),
		"/customer/auth", "", false, true)
}
