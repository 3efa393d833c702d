// Package oidc provides a backend gateway that talks to an OpenID Connect provider directly.
// Login uses the resource owner password grant; identity comes from the userinfo endpoint.
package oidc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"github.com/jmespath-community/go-jmespath"
	"github.com/target/hrdesk/internal/adapters/authroles"
	domainauth "github.com/target/hrdesk/internal/domain/auth"
	apperrors "github.com/target/hrdesk/internal/errors"
	"golang.org/x/oauth2"
)

// Gateway implements ports.BackendGateway using OIDC/OAuth2.
type Gateway struct {
	config        *oauth2.Config
	httpClient    *http.Client
	provider      *gooidc.Provider
	revocationURL string

	idClaim       string
	usernameClaim string
	roleClaim     string
	groupsClaim   string
	roles         authroles.GroupRoleMapper
}

// Config holds configuration for the OIDC gateway.
type Config struct {
	ClientID     string
	ClientSecret string
	Scope        string
	DiscoveryURL string

	// JMESPath expressions evaluated over userinfo claims.
	IDClaim       string // default "employee_id"
	UsernameClaim string // default "preferred_username"
	RoleClaim     string // optional; when empty GroupsClaim is mapped through Roles
	GroupsClaim   string // default "groups"
	Roles         authroles.GroupRoleMapper

	HTTPClient *http.Client // Optional, defaults to a 30s client
}

type providerClaims struct {
	RevocationEndpoint string `json:"revocation_endpoint"`
}

// NewGateway performs discovery against the issuer and builds the gateway.
func NewGateway(ctx context.Context, cfg Config) (*Gateway, error) {
	if cfg.ClientID == "" {
		return nil, errors.New("client ID is required")
	}
	if cfg.DiscoveryURL == "" {
		return nil, errors.New("discovery URL is required")
	}
	if cfg.RoleClaim == "" && !cfg.Roles.Configured() {
		return nil, errors.New("role claim or group role mapping is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	g := &Gateway{
		httpClient:    httpClient,
		idClaim:       firstNonEmpty(cfg.IDClaim, "employee_id"),
		usernameClaim: firstNonEmpty(cfg.UsernameClaim, "preferred_username"),
		roleClaim:     cfg.RoleClaim,
		groupsClaim:   firstNonEmpty(cfg.GroupsClaim, "groups"),
		roles:         cfg.Roles,
	}

	// Single discovery fetch
	issuer := strings.TrimSuffix(cfg.DiscoveryURL, "/")
	issuer = strings.TrimSuffix(issuer, "/.well-known/openid-configuration")
	issuer = strings.TrimSuffix(issuer, ".well-known/openid-configuration")
	op, err := gooidc.NewProvider(g.clientContext(ctx), issuer)
	if err != nil {
		return nil, fmt.Errorf("oidc new provider: %w", err)
	}
	g.provider = op

	var claims providerClaims
	if claimsErr := op.Claims(&claims); claimsErr == nil {
		g.revocationURL = claims.RevocationEndpoint
	}

	g.config = &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Scopes:       strings.Fields(cfg.Scope),
		Endpoint:     op.Endpoint(),
	}

	return g, nil
}

func (g *Gateway) clientContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, g.httpClient)
}

// Login exchanges credentials with the password grant and resolves the identity.
func (g *Gateway) Login(ctx context.Context, username, password string) (domainauth.Session, error) {
	tok, err := g.config.PasswordCredentialsToken(g.clientContext(ctx), username, password)
	if err != nil {
		return domainauth.Session{}, mapTokenError(err, true)
	}
	return g.sessionFromToken(ctx, tok, "")
}

// Refresh exchanges a refresh token. Providers that do not rotate refresh tokens
// keep the presented one.
func (g *Gateway) Refresh(ctx context.Context, refreshToken string) (domainauth.Session, error) {
	if refreshToken == "" {
		return domainauth.Session{}, apperrors.New("auth.token_invalid", "invalid token")
	}
	// An expired token with only a refresh token forces the source to hit the token endpoint.
	stale := &oauth2.Token{RefreshToken: refreshToken, Expiry: time.Unix(1, 0)}
	tok, err := g.config.TokenSource(g.clientContext(ctx), stale).Token()
	if err != nil {
		return domainauth.Session{}, mapTokenError(err, false)
	}
	return g.sessionFromToken(ctx, tok, refreshToken)
}

func (g *Gateway) sessionFromToken(ctx context.Context, tok *oauth2.Token, fallbackRefresh string) (domainauth.Session, error) {
	u, err := g.WhoAmI(ctx, tok.AccessToken)
	if err != nil {
		return domainauth.Session{}, err
	}
	return domainauth.Session{
		AccessToken:  tok.AccessToken,
		RefreshToken: firstNonEmpty(tok.RefreshToken, fallbackRefresh),
		User:         u,
	}, nil
}

// WhoAmI reads the userinfo endpoint and maps claims to a user.
func (g *Gateway) WhoAmI(ctx context.Context, accessToken string) (domainauth.User, error) {
	if accessToken == "" {
		return domainauth.User{}, apperrors.Unauthorized("access token is required")
	}
	ui, err := g.provider.UserInfo(g.clientContext(ctx), oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken}))
	if err != nil {
		if strings.HasPrefix(err.Error(), "401") || strings.HasPrefix(err.Error(), "403") {
			return domainauth.User{}, apperrors.Wrap(err, apperrors.ErrCodeUnauthorized, "unauthorized")
		}
		return domainauth.User{}, apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "identity provider is not reachable")
	}
	var claims map[string]any
	if claimsErr := ui.Claims(&claims); claimsErr != nil {
		return domainauth.User{}, fmt.Errorf("decode user info: %w", claimsErr)
	}
	return g.mapClaims(claims)
}

func (g *Gateway) mapClaims(claims map[string]any) (domainauth.User, error) {
	id, err := claimInt64(claims, g.idClaim)
	if err != nil {
		return domainauth.User{}, err
	}
	username := claimString(claims, g.usernameClaim)
	if username == "" {
		return domainauth.User{}, fmt.Errorf("userinfo claim %q is empty", g.usernameClaim)
	}

	var role domainauth.Role
	if g.roleClaim != "" {
		role = domainauth.Role(claimString(claims, g.roleClaim))
	}
	if role == "" && g.roles.Configured() {
		role = g.roles.Map(claimStrings(claims, g.groupsClaim))
	}
	return domainauth.User{ID: id, Username: username, Role: role}, nil
}

// Logout revokes the refresh token when the provider advertises a revocation endpoint.
func (g *Gateway) Logout(ctx context.Context, refreshToken string) error {
	if g.revocationURL == "" || refreshToken == "" {
		return nil
	}
	form := url.Values{}
	form.Set("token", refreshToken)
	form.Set("token_type_hint", "refresh_token")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.revocationURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build revocation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(url.QueryEscape(g.config.ClientID), url.QueryEscape(g.config.ClientSecret))

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("revoke token: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// mapTokenError translates OAuth2 token endpoint failures into application errors.
// invalid_grant on login means bad credentials; on refresh it means the token is dead,
// and a reuse description is surfaced as auth.refresh_reused.
func mapTokenError(err error, login bool) error {
	var re *oauth2.RetrieveError
	if !errors.As(err, &re) {
		return apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "identity provider is not reachable")
	}
	if re.ErrorCode != "invalid_grant" {
		if re.Response != nil && re.Response.StatusCode == http.StatusUnauthorized {
			return apperrors.Wrap(err, apperrors.ErrCodeUnauthorized, "unauthorized")
		}
		return apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "token request failed")
	}
	if login {
		return apperrors.Validation("invalid username or password")
	}
	if strings.Contains(strings.ToLower(re.ErrorDescription), "reuse") {
		return apperrors.New(apperrors.ErrCodeRefreshReused, string(apperrors.ErrCodeRefreshReused))
	}
	return apperrors.New("auth.session_expired", "token has expired")
}

func search(claims map[string]any, expr string) any {
	v, err := jmespath.Search(expr, claims)
	if err != nil {
		return nil
	}
	return v
}

func claimString(claims map[string]any, expr string) string {
	s, _ := search(claims, expr).(string)
	return strings.TrimSpace(s)
}

func claimStrings(claims map[string]any, expr string) []string {
	switch v := search(claims, expr).(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		return []string{v}
	default:
		return nil
	}
}

func claimInt64(claims map[string]any, expr string) (int64, error) {
	switch v := search(claims, expr).(type) {
	case float64:
		if v >= 1 && v == float64(int64(v)) {
			return int64(v), nil
		}
	case string:
		if id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil && id >= 1 {
			return id, nil
		}
	}
	return 0, fmt.Errorf("userinfo claim %q is not a positive integer", expr)
}

// firstNonEmpty returns the first non-empty string from vals, or empty string if none.
func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
