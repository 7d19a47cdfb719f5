package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tesseract-hub/onboarding-service/internal/models"
	"github.com/tesseract-hub/onboarding-service/internal/services"
)

const testSecret = "test-secret"

type mockUsers struct {
	mock.Mock
}

func (m *mockUsers) SyncFromClaims(ctx context.Context, claims services.UserClaims) (*models.User, error) {
	args := m.Called(claims)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

type mockChecker struct {
	mock.Mock
}

func (m *mockChecker) IsVerified(ctx context.Context, variant models.Variant, userID uuid.UUID) (bool, error) {
	args := m.Called(variant, userID)
	return args.Bool(0), args.Error(1)
}

func init() {
	gin.SetMode(gin.TestMode)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func sign(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func newAuthRouter(users UserSyncer, extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(RequestID())
	handlers := append([]gin.HandlerFunc{JWTAuth(testSecret, []string{"admin"}, users, quietLogger())}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		actor, _ := ActorFromContext(c)
		c.JSON(http.StatusOK, gin.H{"user_id": actor.UserID.String(), "is_staff": actor.IsStaff})
	})
	r.GET("/x", handlers...)
	return r
}

func TestJWTAuth(t *testing.T) {
	userID := uuid.New()
	valid := Claims{
		UserID: userID.String(),
		Email:  "ana@example.com",
		Roles:  []string{"admin"},
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	expired := valid
	expired.RegisteredClaims = jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))}

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantSync   bool
	}{
		{"missing header", "", http.StatusUnauthorized, false},
		{"wrong scheme", "Token abc", http.StatusUnauthorized, false},
		{"bad signature", "Bearer " + sign(t, "other", valid), http.StatusUnauthorized, false},
		{"expired", "Bearer " + sign(t, testSecret, expired), http.StatusUnauthorized, false},
		{"valid staff", "Bearer " + sign(t, testSecret, valid), http.StatusOK, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := &mockUsers{}
			users.On("SyncFromClaims", mock.MatchedBy(func(c services.UserClaims) bool {
				return c.UserID == userID && c.IsStaff && c.Email == "ana@example.com"
			})).Return(&models.User{ID: userID}, nil)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			newAuthRouter(users).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantSync {
				users.AssertNumberOfCalls(t, "SyncFromClaims", 1)
				assert.Contains(t, w.Body.String(), userID.String())
			} else {
				users.AssertNotCalled(t, "SyncFromClaims", mock.Anything)
				assert.Contains(t, w.Body.String(), `"success":false`)
			}
		})
	}
}

func TestRequireStaff(t *testing.T) {
	userID := uuid.New()
	users := &mockUsers{}
	users.On("SyncFromClaims", mock.Anything).Return(&models.User{ID: userID}, nil)
	router := newAuthRouter(users, RequireStaff(quietLogger()))

	token := sign(t, testSecret, Claims{UserID: userID.String(), Roles: []string{"customer"}})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireApprovedProfile(t *testing.T) {
	approved, pending := uuid.New(), uuid.New()
	users := &mockUsers{}
	users.On("SyncFromClaims", mock.Anything).Return(&models.User{}, nil)
	checker := &mockChecker{}
	checker.On("IsVerified", models.VariantVendor, approved).Return(true, nil)
	checker.On("IsVerified", models.VariantVendor, pending).Return(false, nil)
	router := newAuthRouter(users, RequireApprovedProfile(checker, models.VariantVendor, quietLogger()))

	for id, want := range map[uuid.UUID]int{approved: http.StatusOK, pending: http.StatusForbidden} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Authorization", "Bearer "+sign(t, testSecret, Claims{UserID: id.String()}))
		router.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code)
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), StructuredLogger(quietLogger()), Metrics())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	_, err := uuid.Parse(w.Header().Get("X-Request-ID"))
	assert.NoError(t, err)
}
