package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/ibrahimkeyboad/agrilink/domain"
	"github.com/ibrahimkeyboad/agrilink/internal/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newProtectedRouter(tokenSvc domain.TokenService, sessionRepo domain.SessionRepository, enforcer domain.CasbinEnforcer) *gin.Engine {
	r := gin.New()
	jwtMW := NewAuthMW(tokenSvc, sessionRepo)
	casbinMW := NewCasbinMW(enforcer)
	r.GET("/profile", jwtMW.WithJWT(), casbinMW.Enforce(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetString("user_id"),
			"role":    c.GetString("user_role"),
		})
	})
	return r
}

func get(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareRequiresHeader(t *testing.T) {
	r := newProtectedRouter(mocks.NewMockTokenService(), mocks.NewMockSessionRepository(), mocks.NewMockCasbinEnforcer())

	w := get(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = get(r, "Basic abc123")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareRejectsInvalidToken(t *testing.T) {
	tokenSvc := mocks.NewMockTokenService()
	tokenSvc.ValidateAccessTokenFunc = func(token string) (*domain.TokenClaims, error) {
		return nil, domain.ErrTokenInvalid
	}
	r := newProtectedRouter(tokenSvc, mocks.NewMockSessionRepository(), mocks.NewMockCasbinEnforcer())

	w := get(r, "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid token")
}

func TestAuthMiddlewareRejectsExpiredToken(t *testing.T) {
	tokenSvc := mocks.NewMockTokenService()
	tokenSvc.ValidateAccessTokenFunc = func(token string) (*domain.TokenClaims, error) {
		return nil, domain.ErrTokenExpired
	}
	r := newProtectedRouter(tokenSvc, mocks.NewMockSessionRepository(), mocks.NewMockCasbinEnforcer())

	w := get(r, "Bearer old")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Token expired")
}

func TestAuthMiddlewareRejectsDeadSession(t *testing.T) {
	sessionRepo := mocks.NewMockSessionRepository()
	sessionRepo.FindByIDFunc = func(ctx context.Context, sessionID string) (*domain.Session, error) {
		return nil, domain.ErrSessionNotFound
	}
	r := newProtectedRouter(mocks.NewMockTokenService(), sessionRepo, mocks.NewMockCasbinEnforcer())

	w := get(r, "Bearer valid")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Session invalid or expired")
}

func TestAuthMiddlewareRejectsSessionUserMismatch(t *testing.T) {
	sessionRepo := mocks.NewMockSessionRepository()
	sessionRepo.FindByIDFunc = func(ctx context.Context, sessionID string) (*domain.Session, error) {
		return &domain.Session{ID: sessionID, UserID: "someone_else"}, nil
	}
	r := newProtectedRouter(mocks.NewMockTokenService(), sessionRepo, mocks.NewMockCasbinEnforcer())

	w := get(r, "Bearer valid")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Session user mismatch")
}

func TestAuthMiddlewarePopulatesContext(t *testing.T) {
	sessionRepo := mocks.NewMockSessionRepository()
	sessionRepo.FindByIDFunc = func(ctx context.Context, sessionID string) (*domain.Session, error) {
		return &domain.Session{ID: sessionID, UserID: "mock_user_id"}, nil
	}
	r := newProtectedRouter(mocks.NewMockTokenService(), sessionRepo, mocks.NewMockCasbinEnforcer())

	w := get(r, "Bearer valid")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "mock_user_id")
	assert.Contains(t, w.Body.String(), "retailer")
}

func TestCasbinMiddlewarePrefixesRole(t *testing.T) {
	sessionRepo := mocks.NewMockSessionRepository()
	sessionRepo.FindByIDFunc = func(ctx context.Context, sessionID string) (*domain.Session, error) {
		return &domain.Session{ID: sessionID, UserID: "mock_user_id"}, nil
	}
	enforcer := mocks.NewMockCasbinEnforcer()
	var gotSub string
	enforcer.EnforceFunc = func(rvals ...interface{}) (bool, error) {
		gotSub = rvals[0].(string)
		return true, nil
	}
	r := newProtectedRouter(mocks.NewMockTokenService(), sessionRepo, enforcer)

	w := get(r, "Bearer valid")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "role_retailer", gotSub)
}

func TestCasbinMiddlewareDeniesWhenPolicyForbids(t *testing.T) {
	sessionRepo := mocks.NewMockSessionRepository()
	sessionRepo.FindByIDFunc = func(ctx context.Context, sessionID string) (*domain.Session, error) {
		return &domain.Session{ID: sessionID, UserID: "mock_user_id"}, nil
	}
	enforcer := mocks.NewMockCasbinEnforcer()
	enforcer.EnforceFunc = func(rvals ...interface{}) (bool, error) {
		return false, nil
	}
	r := newProtectedRouter(mocks.NewMockTokenService(), sessionRepo, enforcer)

	w := get(r, "Bearer valid")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Access Denied")
}
