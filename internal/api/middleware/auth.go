package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"github.com/OmniNode-ai/omniroute/internal/api/presenter"
	"github.com/OmniNode-ai/omniroute/internal/config"
)

const adminRole = "admin"

// Authenticator verifies an admin bearer token. Implementations return a
// descriptive error when the token is missing a valid admin grant.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) error
}

// BuildAuthenticator constructs the admin authenticator selected by the
// configuration: locally signed HMAC session tokens (the login flow) or ID
// tokens from an OIDC issuer.
func BuildAuthenticator(ctx context.Context, cfg config.AdminAuthConfig) (Authenticator, error) {
	switch cfg.Mode {
	case "", "token":
		key, err := cfg.ResolveSigningKey()
		if err != nil {
			return nil, err
		}
		return NewHMACAuthenticator(key), nil
	case "oidc":
		if cfg.OIDC == nil {
			return nil, fmt.Errorf("admin_auth: oidc mode requires an oidc block")
		}
		return NewOIDCAuthenticator(ctx, cfg.OIDC.IssuerURL, cfg.OIDC.ClientID, cfg.OIDC.RolesClaim)
	default:
		return nil, fmt.Errorf("admin_auth: unknown mode %q", cfg.Mode)
	}
}

// AdminAuth is a middleware that checks for admin privileges in the bearer
// token before letting a request through to the admin subtree.
// TODO(future): this is a single-role gate, a flexible RBAC system would
// replace the hardcoded "admin" role.
func AdminAuth(auth Authenticator) func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			tokenStr := strings.TrimPrefix(header, "Bearer ")

			if tokenStr == "" {
				presenter.Error(w, r, "login required", http.StatusUnauthorized)
				return
			}

			if err := auth.Authenticate(r.Context(), tokenStr); err != nil {
				log.Ctx(r.Context()).Warn().Err(err).Msg("admin authentication rejected")
				presenter.Error(w, r, err.Error(), http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// HMACAuthenticator accepts session tokens signed with the server's own
// signing key, as minted by the login flow.
type HMACAuthenticator struct {
	signingKey []byte
}

func NewHMACAuthenticator(signingKey []byte) *HMACAuthenticator {
	return &HMACAuthenticator{signingKey: signingKey}
}

func (a *HMACAuthenticator) Authenticate(_ context.Context, tokenStr string) error {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return a.signingKey, nil
	})
	if err != nil || !token.Valid {
		return fmt.Errorf("invalid session token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return fmt.Errorf("invalid claims")
	}
	return requireAdminRole(claims["roles"])
}

// OIDCAuthenticator accepts ID tokens from an upstream OIDC issuer and
// checks the configured roles claim for the admin role.
type OIDCAuthenticator struct {
	verifier   *oidc.IDTokenVerifier
	rolesClaim string
}

func NewOIDCAuthenticator(ctx context.Context, issuerURL, clientID, rolesClaim string) (*OIDCAuthenticator, error) {
	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to discover oidc issuer %q: %w", issuerURL, err)
	}
	if rolesClaim == "" {
		rolesClaim = "roles"
	}
	return &OIDCAuthenticator{
		verifier:   provider.Verifier(&oidc.Config{ClientID: clientID}),
		rolesClaim: rolesClaim,
	}, nil
}

func (a *OIDCAuthenticator) Authenticate(ctx context.Context, tokenStr string) error {
	idToken, err := a.verifier.Verify(ctx, tokenStr)
	if err != nil {
		return fmt.Errorf("invalid id token")
	}

	var claims map[string]any
	if err := idToken.Claims(&claims); err != nil {
		return fmt.Errorf("invalid claims")
	}
	return requireAdminRole(claims[a.rolesClaim])
}

func requireAdminRole(rawRoles any) error {
	roles, ok := rawRoles.([]any)
	if !ok {
		return fmt.Errorf("invalid claims")
	}
	for _, roleAny := range roles {
		if roleStr, ok := roleAny.(string); ok && roleStr == adminRole {
			return nil
		}
	}
	return fmt.Errorf("insufficient privileges")
}
