package jwt_test

import (
	"testing"
	"time"
	"voyage/config"
	voyageJWT "voyage/infras/jwt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func sign(t *testing.T, claims voyageJWT.Claims, secret string) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	return token
}

func newService() voyageJWT.JWT {
	cfg := &config.Config{}
	cfg.JWT.AccessSecret = testSecret

	return voyageJWT.New(cfg)
}

func TestValidateToken(t *testing.T) {
	now := time.Now()

	valid := voyageJWT.Claims{
		UserID: "user-1",
		Role:   "agent",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	expired := valid
	expired.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Hour))

	noUser := valid
	noUser.UserID = ""

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "valid", token: sign(t, valid, testSecret)},
		{name: "expired", token: sign(t, expired, testSecret), wantErr: voyageJWT.ErrExpiredToken},
		{name: "wrong secret", token: sign(t, valid, "other"), wantErr: voyageJWT.ErrInvalidToken},
		{name: "missing user", token: sign(t, noUser, testSecret), wantErr: voyageJWT.ErrInvalidClaim},
		{name: "garbage", token: "not-a-token", wantErr: voyageJWT.ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := newService().ValidateToken(tt.token)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "user-1", claims.UserID)
			assert.Equal(t, "agent", claims.Role)
		})
	}
}

func TestExtractTokenFromHeader(t *testing.T) {
	token, err := voyageJWT.ExtractTokenFromHeader("Bearer abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", token)

	_, err = voyageJWT.ExtractTokenFromHeader("")
	assert.ErrorIs(t, err, voyageJWT.ErrMissingHeader)

	_, err = voyageJWT.ExtractTokenFromHeader("Basic abc")
	assert.ErrorIs(t, err, voyageJWT.ErrBearerPrefix)
}
