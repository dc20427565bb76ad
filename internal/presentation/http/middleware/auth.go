package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/billdesk/internal/config"
	"github.com/sangkips/billdesk/internal/presentation/http/dto/response"
	"github.com/sangkips/billdesk/pkg/apperror"
	"golang.org/x/crypto/bcrypt"
)

// AuthMiddleware checks HTTP Basic credentials against the configured
// bcrypt hash. It lets everything through when no hash is configured.
func AuthMiddleware(cfg config.AuthConfig) gin.HandlerFunc {
	if !cfg.Enabled() {
		return func(c *gin.Context) { c.Next() }
	}
	hash := []byte(cfg.PasswordHash)
	return func(c *gin.Context) {
		user, password, ok := c.Request.BasicAuth()
		if !ok {
			c.Header("WWW-Authenticate", `Basic realm="billdesk"`)
			response.Error(c, apperror.ErrUnauthorized)
			c.Abort()
			return
		}

		userOK := subtle.ConstantTimeCompare([]byte(user), []byte(cfg.Username)) == 1
		passOK := bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
		if !userOK || !passOK {
			c.Header("WWW-Authenticate", `Basic realm="billdesk"`)
			response.Error(c, apperror.ErrInvalidCredentials)
			c.Abort()
			return
		}

		c.Set("user", user)
		c.Next()
	}
}

// HashPassword returns the bcrypt hash to put in AUTH_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
