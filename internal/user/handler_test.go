package user

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockService struct{ mock.Mock }

func (m *MockService) Register(ctx context.Context, req RegisterRequest) (*User, string, string, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, "", "", args.Error(3)
	}
	return args.Get(0).(*User), args.String(1), args.String(2), args.Error(3)
}

func (m *MockService) Login(ctx context.Context, req LoginRequest) (*User, string, string, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, "", "", args.Error(3)
	}
	return args.Get(0).(*User), args.String(1), args.String(2), args.Error(3)
}

func (m *MockService) GetByID(ctx context.Context, userID int) (*User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockService) Me(ctx context.Context, userID int) (*MeResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*MeResponse), args.Error(1)
}

func (m *MockService) RefreshToken(ctx context.Context, refreshToken string) (string, *User, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(1) == nil {
		return "", nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*User), args.Error(2)
}

func (m *MockService) CreateAdmin(ctx context.Context, name, email, password string) (*User, error) {
	args := m.Called(ctx, name, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func setupRouter(svc Service, userID int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(svc)

	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/refresh", h.RefreshToken)
	r.GET("/me", func(c *gin.Context) {
		if userID > 0 {
			c.Set("user_id", userID)
		}
		h.GetMe(c)
	})
	return r
}

func post(path, body string) *http.Request {
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestRegisterHandler(t *testing.T) {
	svc := new(MockService)
	svc.On("Register", mock.Anything, mock.Anything).Return(&User{ID: 1, Email: "a@example.com", PasswordHash: "secret-hash"}, "access", "refresh", nil)

	w := httptest.NewRecorder()
	setupRouter(svc, 0).ServeHTTP(w, post("/auth/register", `{"name":"Alice","email":"a@example.com","password":"password123"}`))

	require.Equal(t, http.StatusCreated, w.Code)

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "access", resp.AccessToken)
	assert.NotContains(t, w.Body.String(), "secret-hash")
}

func TestRegisterHandlerValidation(t *testing.T) {
	svc := new(MockService)

	w := httptest.NewRecorder()
	setupRouter(svc, 0).ServeHTTP(w, post("/auth/register", `{"name":"A","email":"nope","password":"short"}`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "email")
	assert.Contains(t, w.Body.String(), "password")
	svc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
}

func TestRegisterHandlerConflict(t *testing.T) {
	svc := new(MockService)
	svc.On("Register", mock.Anything, mock.Anything).Return(nil, "", "", ErrEmailExists)

	w := httptest.NewRecorder()
	setupRouter(svc, 0).ServeHTTP(w, post("/auth/register", `{"name":"Alice","email":"a@example.com","password":"password123"}`))

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLoginHandler(t *testing.T) {
	svc := new(MockService)
	svc.On("Login", mock.Anything, LoginRequest{Email: "a@example.com", Password: "bad"}).Return(nil, "", "", ErrInvalidCredentials)
	svc.On("Login", mock.Anything, LoginRequest{Email: "a@example.com", Password: "good"}).Return(&User{ID: 1}, "access", "refresh", nil)

	router := setupRouter(svc, 0)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, post("/auth/login", `{"email":"a@example.com","password":"bad"}`))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, post("/auth/login", `{"email":"a@example.com","password":"good"}`))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRefreshHandler(t *testing.T) {
	svc := new(MockService)
	svc.On("RefreshToken", mock.Anything, "expired").Return("", nil, errors.New("token expired"))

	router := setupRouter(svc, 0)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, post("/auth/refresh", `{}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, post("/auth/refresh", `{"refresh_token":"expired"}`))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetMeHandler(t *testing.T) {
	svc := new(MockService)
	svc.On("Me", mock.Anything, 3).Return(&MeResponse{User: User{ID: 3, Name: "Sam"}}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/me", nil)
	setupRouter(svc, 3).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Sam"`)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/me", nil)
	setupRouter(svc, 0).ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
