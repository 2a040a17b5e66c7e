package jwt

//go:generate go run go.uber.org/mock/mockgen -source=./jwt.go -destination=./mocks/jwt_mock.go -package=mocks

import (
	"errors"
	"fmt"
	"strings"
	"voyage/config"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token has expired")
	ErrInvalidClaim  = errors.New("invalid token claim")
	ErrMissingHeader = errors.New("authorization header is required")
	ErrBearerPrefix  = errors.New("authorization header must start with 'Bearer '")
)

const bearerPrefix = "Bearer "

// Claims carries the identity the auth service puts into access tokens.
// CompanyID is set for corporate users only.
type Claims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Role      string `json:"role,omitempty"`
	CompanyID string `json:"company_id,omitempty"`
	TokenID   string `json:"token_id"`
	jwt.RegisteredClaims
}

// JWT validates access tokens; issuing them belongs to the auth service.
type JWT interface {
	ValidateToken(tokenString string) (*Claims, error)
}

type Service struct {
	config *config.Config
}

func New(cfg *config.Config) JWT {
	return &Service{
		config: cfg,
	}
}

func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	options := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.config.JWT.Issuer != "" {
		options = append(options, jwt.WithIssuer(s.config.JWT.Issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(_ *jwt.Token) (any, error) {
		return []byte(s.config.JWT.AccessSecret), nil
	}, options...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}

		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.UserID == "" {
		return nil, ErrInvalidClaim
	}

	return claims, nil
}

// ExtractTokenFromHeader extracts the bearer token from an Authorization header.
func ExtractTokenFromHeader(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrMissingHeader
	}

	token, found := strings.CutPrefix(authHeader, bearerPrefix)
	if !found {
		return "", ErrBearerPrefix
	}

	return token, nil
}
