package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-auth-api/internal/types"
)

// MockAuthService is a mock implementation of the AuthService interface
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, req types.RegisterRequest) (*types.PublicUser, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.PublicUser), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*types.LoginResponse, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.LoginResponse), args.Error(1)
}

func doJSON(t *testing.T, handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) types.ErrorResponse {
	t.Helper()
	var resp types.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	return resp
}

func TestRegisterHandler(t *testing.T) {
	t.Run("Created", func(t *testing.T) {
		mockService := new(MockAuthService)
		handler := NewAuthHandler(mockService, discardLogger)

		mockService.On("Register", mock.Anything, types.RegisterRequest{Username: "alice", Email: "a@x.com", Password: "secret123"}).
			Return(&types.PublicUser{ID: 1, Username: "alice", Email: "a@x.com", Role: types.RoleUser}, nil).Once()

		w := doJSON(t, handler.Register, `{"username":"alice","email":"a@x.com","password":"secret123"}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.JSONEq(t, `{"id":1,"username":"alice","email":"a@x.com","role":"user"}`, w.Body.String())
		assert.NotContains(t, w.Body.String(), "password")
		mockService.AssertExpectations(t)
	})

	t.Run("Short username and free-form role reach the service", func(t *testing.T) {
		mockService := new(MockAuthService)
		handler := NewAuthHandler(mockService, discardLogger)

		mockService.On("Register", mock.Anything, types.RegisterRequest{Username: "bo", Email: "bo@x.com", Password: "secret123", Role: "moderator"}).
			Return(&types.PublicUser{ID: 2, Username: "bo", Email: "bo@x.com", Role: "moderator"}, nil).Once()

		w := doJSON(t, handler.Register, `{"username":"bo","email":"bo@x.com","password":"secret123","role":"moderator","invite":"x"}`)

		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.JSONEq(t, `{"id":2,"username":"bo","email":"bo@x.com","role":"moderator"}`, w.Body.String())
		mockService.AssertExpectations(t)
	})

	t.Run("Conflict", func(t *testing.T) {
		mockService := new(MockAuthService)
		handler := NewAuthHandler(mockService, discardLogger)
		mockService.On("Register", mock.Anything, mock.Anything).
			Return(nil, errors.Join(errors.New("user \"alice\""), types.ErrConflict)).Once()

		w := doJSON(t, handler.Register, `{"username":"alice","email":"a@x.com","password":"secret123"}`)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "User with that email or username already exists", decodeError(t, w).Message)
	})

	t.Run("Internal error hides detail", func(t *testing.T) {
		mockService := new(MockAuthService)
		handler := NewAuthHandler(mockService, discardLogger)
		mockService.On("Register", mock.Anything, mock.Anything).
			Return(nil, errors.New("pq: connection refused")).Once()

		w := doJSON(t, handler.Register, `{"username":"alice","email":"a@x.com","password":"secret123"}`)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "connection refused")
	})

	for name, body := range map[string]string{
		"missing username": `{"email":"a@x.com","password":"secret123"}`,
		"bad email":        `{"username":"alice","email":"nope","password":"secret123"}`,
		"empty password":   `{"username":"alice","email":"a@x.com","password":""}`,
		"malformed json":   `{"username":`,
	} {
		t.Run("Bad request: "+name, func(t *testing.T) {
			mockService := new(MockAuthService)
			handler := NewAuthHandler(mockService, discardLogger)

			w := doJSON(t, handler.Register, body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			decodeError(t, w)
			mockService.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
		})
	}
}

func TestLoginHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := new(MockAuthService)
		handler := NewAuthHandler(mockService, discardLogger)
		mockService.On("Login", mock.Anything, "a@x.com", "secret123").
			Return(&types.LoginResponse{
				Token: "signed.jwt.token",
				User:  types.PublicUser{ID: 1, Username: "alice", Email: "a@x.com", Role: types.RoleUser},
			}, nil).Once()

		w := doJSON(t, handler.Login, `{"email":"a@x.com","password":"secret123"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp types.LoginResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "signed.jwt.token", resp.Token)
		assert.Equal(t, int64(1), resp.User.ID)
	})

	t.Run("Extra keys are ignored", func(t *testing.T) {
		mockService := new(MockAuthService)
		handler := NewAuthHandler(mockService, discardLogger)
		mockService.On("Login", mock.Anything, "a@x.com", "secret123").
			Return(&types.LoginResponse{Token: "signed.jwt.token", User: types.PublicUser{ID: 1}}, nil).Once()

		w := doJSON(t, handler.Login, `{"email":"a@x.com","password":"secret123","remember_me":true,"client":"web"}`)

		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
		mockService.AssertExpectations(t)
	})

	t.Run("Unknown email and wrong password are indistinguishable", func(t *testing.T) {
		mockService := new(MockAuthService)
		handler := NewAuthHandler(mockService, discardLogger)
		mockService.On("Login", mock.Anything, "nobody@x.com", "secret123").Return(nil, types.ErrUnauthenticated).Once()
		mockService.On("Login", mock.Anything, "a@x.com", "wrong").Return(nil, types.ErrUnauthenticated).Once()

		unknown := doJSON(t, handler.Login, `{"email":"nobody@x.com","password":"secret123"}`)
		wrong := doJSON(t, handler.Login, `{"email":"a@x.com","password":"wrong"}`)

		assert.Equal(t, http.StatusUnauthorized, unknown.Code)
		assert.Equal(t, http.StatusUnauthorized, wrong.Code)
		assert.True(t, bytes.Equal(unknown.Body.Bytes(), wrong.Body.Bytes()))
		assert.Equal(t, "Invalid credentials", decodeError(t, unknown).Message)
	})

	t.Run("Token failure", func(t *testing.T) {
		mockService := new(MockAuthService)
		handler := NewAuthHandler(mockService, discardLogger)
		mockService.On("Login", mock.Anything, "a@x.com", "secret123").
			Return(nil, errors.New("issuing token: jwt: sign token: key is invalid")).Once()

		w := doJSON(t, handler.Login, `{"email":"a@x.com","password":"secret123"}`)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Authentication failed", decodeError(t, w).Message)
	})

	t.Run("Bad request", func(t *testing.T) {
		mockService := new(MockAuthService)
		handler := NewAuthHandler(mockService, discardLogger)

		for _, body := range []string{`{"email":"a@x.com"}`, `{"email":"nope","password":"x"}`, ``} {
			w := doJSON(t, handler.Login, body)
			assert.Equal(t, http.StatusBadRequest, w.Code, "body %q", body)
		}
		mockService.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
	})
}
