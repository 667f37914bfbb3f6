package auth

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type claimsKey struct{}

// ContextWithClaims returns a copy of ctx carrying claims.
func ContextWithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFromContext returns the claims attached by the interceptor.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*Claims)
	return claims, ok && claims != nil
}

// UserIDFromContext returns the authenticated borrower identifier, if any.
func UserIDFromContext(ctx context.Context) (string, bool) {
	claims, ok := ClaimsFromContext(ctx)
	if !ok || claims.UserID() == "" {
		return "", false
	}
	return claims.UserID(), true
}

// Access is the rule for one method or service.
type Access struct {
	// Public methods skip authentication.
	Public bool
	// Roles lists alternatives; any one suffices. Empty admits every
	// authenticated caller.
	Roles []string
}

// Rules maps a full method ("/pkg.Service/Method") or a service prefix
// ("/pkg.Service/") to its Access. An exact method entry wins over its
// service entry; methods with neither need only a valid token.
type Rules map[string]Access

func (r Rules) lookup(fullMethod string) Access {
	if a, ok := r[fullMethod]; ok {
		return a
	}
	if i := strings.LastIndexByte(fullMethod, '/'); i > 0 {
		if a, ok := r[fullMethod[:i+1]]; ok {
			return a
		}
	}
	return Access{}
}

// UnaryServerInterceptor authenticates the bearer token on each call and
// enforces rules before the handler runs.
func UnaryServerInterceptor(tokens *JWTService, rules Rules) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		access := rules.lookup(info.FullMethod)
		if access.Public {
			return handler(ctx, req)
		}

		raw, err := bearerToken(ctx)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}
		claims, err := tokens.ValidateToken(raw)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}
		if len(access.Roles) > 0 && !claims.HasAnyRole(access.Roles...) {
			return nil, status.Errorf(codes.PermissionDenied, "requires one of roles %v", access.Roles)
		}
		return handler(ContextWithClaims(ctx, claims), req)
	}
}

func bearerToken(ctx context.Context) (string, error) {
	values := metadata.ValueFromIncomingContext(ctx, "authorization")
	if len(values) == 0 {
		return "", errors.New("missing authorization header")
	}
	scheme, token, ok := strings.Cut(values[0], " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", errors.New("authorization header is not a bearer token")
	}
	return token, nil
}
