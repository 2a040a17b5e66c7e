package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"voyage/config"
	"voyage/infras/jwt"
	"voyage/infras/otel"
	"voyage/permissions"
	"voyage/shared"
	"voyage/shared/constant"
	"voyage/shared/failure"
	"voyage/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type SkipAuthKey string

type Auth interface {
	Auth(http.Handler) http.Handler
	APIKey(http.Handler) http.Handler
}

type Role interface {
	RBAC(http.Handler) http.Handler
}

type AuthRole interface {
	Auth
	Role
}

type authRoleImpl struct {
	jwtService jwt.JWT
	otel       otel.Otel
	permission *permissions.PermissionData
	cfg        *config.Config
}

func NewAuthRoleMiddleware(jwtService jwt.JWT, otel otel.Otel, routes *permissions.PermissionData, cfg *config.Config) AuthRole {
	return &authRoleImpl{
		jwtService: jwtService,
		otel:       otel,
		permission: routes,
		cfg:        cfg,
	}
}

// routePermission resolves the chi pattern of the request, e.g.
// /v1/bookings/{id}, and its permission entry.
func (m *authRoleImpl) routePermission(request *http.Request) (string, permissions.Permission) {
	pattern := request.URL.Path
	if rctx := chi.RouteContext(request.Context()); rctx != nil && rctx.Routes != nil {
		pattern = rctx.Routes.Find(chi.NewRouteContext(), request.Method, request.URL.Path)
	}

	if m.permission == nil {
		return pattern, permissions.Permission{}
	}

	return pattern, m.permission.FindPermissions(pattern, request.Method)
}

func skipped(ctx context.Context) bool {
	skip, _ := ctx.Value(SkipAuthKey("skip")).(bool)

	return skip
}

func unauthorized(writer http.ResponseWriter, scope otel.Scope, message string) {
	err := failure.Unauthorized(message)

	response.WithError(writer, err)
	scope.TraceError(err)
}

// Auth validates the bearer token and puts the caller on the context.
// Routes marked skip stay public.
func (m *authRoleImpl) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		ctx := request.Context()
		_, scope := m.otel.NewScope(ctx, constant.OtelHandlerScopeName, "auth.middleware")
		defer scope.End()

		if skipped(ctx) {
			next.ServeHTTP(writer, request)

			return
		}

		path, permission := m.routePermission(request)
		if permission.Skip {
			next.ServeHTTP(writer, request)

			return
		}

		scope.SetAttributes(map[string]any{
			"middleware.type": "auth",
			"http.path":       path,
			"http.method":     request.Method,
		})

		authHeader := request.Header.Get(constant.RequestHeaderAuthorization)
		if authHeader == "" {
			unauthorized(writer, scope, "Missing authorization header")

			return
		}

		tokenString, err := jwt.ExtractTokenFromHeader(authHeader)
		if err != nil {
			unauthorized(writer, scope, "Invalid authorization header format")

			return
		}

		claims, err := m.jwtService.ValidateToken(tokenString)
		if err != nil {
			switch {
			case errors.Is(err, jwt.ErrExpiredToken):
				unauthorized(writer, scope, "Token has expired")
			case errors.Is(err, jwt.ErrInvalidClaim):
				unauthorized(writer, scope, "Invalid token claims")
			case errors.Is(err, jwt.ErrInvalidToken):
				unauthorized(writer, scope, "Invalid token")
			default:
				unauthorized(writer, scope, "Token validation failed")
			}

			return
		}

		if claims.Email == "" || claims.Role == "" {
			log.Error().Str("user_id", claims.UserID).Msg("JWT claims: email or role is empty")
			unauthorized(writer, scope, "Invalid token claims")

			return
		}

		ctx = shared.WithActor(ctx, shared.Actor{
			ID:        claims.UserID,
			Email:     claims.Email,
			Role:      claims.Role,
			CompanyID: claims.CompanyID,
		})
		ctx = context.WithValue(ctx, constant.ContextKeyTokenID, claims.TokenID)

		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}

// RBAC checks the caller's role against the route's allow-list.
// Requires prior authentication via Auth middleware.
func (m *authRoleImpl) RBAC(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		ctx := request.Context()
		_, scope := m.otel.NewScope(ctx, constant.OtelHandlerScopeName, "rbac.middleware")
		defer scope.End()

		if skipped(ctx) {
			next.ServeHTTP(writer, request)

			return
		}

		if m.permission == nil {
			response.WithError(writer, failure.ForbiddenError)

			return
		}

		_, permission := m.routePermission(request)
		if m.permission.Skip || permission.Skip || len(permission.Permissions) == 0 {
			next.ServeHTTP(writer, request)

			return
		}

		actor := shared.ActorFromContext(ctx)
		if !actor.HasRole(permission.Permissions...) {
			err := failure.ForbiddenError

			scope.TraceError(err)
			scope.SetAttributes(map[string]any{
				"user_role":     actor.Role,
				"allowed_roles": permission.Permissions,
				"reason":        "role_not_allowed",
			})
			response.WithError(writer, err)

			return
		}

		next.ServeHTTP(writer, request)
	})
}

// APIKey lets internal services through with the shared key, skipping token
// and role checks. Requests without the header continue as clients.
func (m *authRoleImpl) APIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		ctx := request.Context()
		_, scope := m.otel.NewScope(ctx, constant.OtelHandlerScopeName, "api_key.middleware")
		defer scope.End()

		apiKey := request.Header.Get(constant.RequestHeaderAPIKey)
		if apiKey == "" {
			scope.SetAttribute("http.source", "client")
			next.ServeHTTP(writer, request.WithContext(context.WithValue(ctx, SkipAuthKey("skip"), false)))

			return
		}

		scope.SetAttribute("http.source", "internal")

		expected := m.cfg.App.APIKey
		if expected == "" || subtle.ConstantTimeCompare([]byte(apiKey), []byte(expected)) != 1 {
			scope.TraceError(failure.ForbiddenError)
			response.WithError(writer, failure.ForbiddenError)

			return
		}

		next.ServeHTTP(writer, request.WithContext(context.WithValue(ctx, SkipAuthKey("skip"), true)))
	})
}
