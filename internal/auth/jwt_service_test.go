package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService("secret")
	id := uuid.New()

	token, err := svc.GenerateAccessToken(id, "alice", "user")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, id.String(), claims.Subject)
	assert.Equal(t, "alice", claims.Handle)
}

func TestJWTService_RejectsForeignSignature(t *testing.T) {
	token, err := NewJWTService("one").GenerateAccessToken(uuid.New(), "alice", "user")
	require.NoError(t, err)

	_, err = NewJWTService("two").ValidateToken(token)
	assert.Error(t, err)
}

func TestUserID(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		name    string
		value   interface{}
		want    uuid.UUID
		wantErr bool
	}{
		{"valid", &jwt.Token{Claims: &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: id.String()}}}, id, false},
		{"missing", nil, uuid.Nil, true},
		{"map claims", &jwt.Token{Claims: jwt.MapClaims{"sub": id.String()}}, uuid.Nil, true},
		{"bad subject", &jwt.Token{Claims: &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "42"}}}, uuid.Nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
			if tt.value != nil {
				c.Set(ContextKey, tt.value)
			}
			got, err := UserID(c)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
