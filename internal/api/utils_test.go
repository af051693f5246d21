package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-auth-api/internal/types"
)

func TestDecodeJSONBody(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "valid", body: `{"email":"a@x.com","password":"secret123"}`},
		{name: "empty", body: ``, wantErr: "body must not be empty"},
		{name: "malformed", body: `{"email": "a@x.com", "password":}`, wantErr: "badly-formed JSON"},
		{name: "extra keys ignored", body: `{"email":"a@x.com","password":"p","admin":true,"remember_me":{"days":30}}`},
		{name: "wrong type", body: `{"email":42,"password":"p"}`, wantErr: `incorrect JSON type for field "email"`},
		{name: "two values", body: `{"email":"a@x.com"}{"email":"b@x.com"}`, wantErr: "single JSON value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			var dst types.LoginRequest
			err := DecodeJSONBody(w, req, &dst)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, "a@x.com", dst.Email)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateStruct(t *testing.T) {
	ok := types.RegisterRequest{Username: "alice", Email: "a@x.com", Password: "secret123"}
	assert.NoError(t, ValidateStruct(ok))

	badEmail := ok
	badEmail.Email = "not-an-email"
	err := ValidateStruct(badEmail)
	require.ErrorIs(t, err, types.ErrBadRequest)
	assert.Equal(t, "email: must be a valid email address", ValidationMessage(err))

	freeForm := ok
	freeForm.Username = "bo"
	freeForm.Role = "moderator"
	assert.NoError(t, ValidateStruct(freeForm))

	missing := types.RegisterRequest{Email: "a@x.com", Password: "secret123"}
	err = ValidateStruct(missing)
	require.ErrorIs(t, err, types.ErrBadRequest)
	assert.Equal(t, "username: is required", ValidationMessage(err))
}

func TestErrorResponseShape(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	ErrorResponse(w, req, http.StatusConflict, "User with that email or username already exists")

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body types.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "error", body.Status)
	assert.Equal(t, "User with that email or username already exists", body.Message)
}
