package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

type stubValidator map[string]models.UserRole

func (s stubValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	role, ok := s[token]
	if !ok {
		return nil, appErrors.Wrap(errors.New("bad signature"), appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}
	return &models.JWTClaims{UserID: "u-" + token, Role: role}, nil
}

func newAuthRouter(validator TokenValidator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/", JWT(validator))
	api.GET("/read", func(c *gin.Context) {
		c.String(http.StatusOK, Claims(c).UserID)
	})
	api.POST("/write", RequireEditor(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func serve(router *gin.Engine, method, path, auth string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestJWTRejectsMissingAndMalformedHeaders(t *testing.T) {
	router := newAuthRouter(stubValidator{"viewer": models.RoleViewer})

	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/read", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/read", "Token viewer").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/read", "Bearer nope").Code)
}

func TestJWTAttachesClaims(t *testing.T) {
	router := newAuthRouter(stubValidator{"viewer": models.RoleViewer})

	rec := serve(router, http.MethodGet, "/read", "bearer viewer")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u-viewer", rec.Body.String())
}

func TestRequireEditor(t *testing.T) {
	router := newAuthRouter(stubValidator{
		"viewer": models.RoleViewer,
		"editor": models.RoleEditor,
		"admin":  models.RoleAdmin,
	})

	assert.Equal(t, http.StatusForbidden, serve(router, http.MethodPost, "/write", "Bearer viewer").Code)
	assert.Equal(t, http.StatusNoContent, serve(router, http.MethodPost, "/write", "Bearer editor").Code)
	assert.Equal(t, http.StatusNoContent, serve(router, http.MethodPost, "/write", "Bearer admin").Code)
}

func TestRBACWithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/", RequireRoles(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/", "").Code)
}

func TestOptionalJWT(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/", OptionalJWT(stubValidator{"editor": models.RoleEditor}), func(c *gin.Context) {
		if claims := Claims(c); claims != nil {
			c.String(http.StatusOK, string(claims.Role))
			return
		}
		c.String(http.StatusOK, "anonymous")
	})

	assert.Equal(t, "anonymous", serve(router, http.MethodGet, "/", "").Body.String())
	assert.Equal(t, "anonymous", serve(router, http.MethodGet, "/", "Bearer nope").Body.String())
	assert.Equal(t, "EDITOR", serve(router, http.MethodGet, "/", "Bearer editor").Body.String())
}
