package config

import (
	"fmt"
	"strings"
	"time"
)

// BackendMode selects the gateway used for auth operations.
type BackendMode string

const (
	// BackendModeRPC calls the local backend process over JSON RPC.
	BackendModeRPC BackendMode = "rpc"
	// BackendModeOIDC talks to an OpenID Connect provider directly.
	BackendModeOIDC BackendMode = "oidc"
	// BackendModeDev uses an in-process fake backend (for development only).
	BackendModeDev BackendMode = "dev"
)

// UnmarshalText implements encoding.TextUnmarshaler for BackendMode.
func (m *BackendMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch BackendMode(v) {
	case BackendModeRPC, BackendModeOIDC, BackendModeDev:
		*m = BackendMode(v)
		return nil
	default:
		return fmt.Errorf("invalid BackendMode: %q (valid options: rpc, oidc, dev)", v)
	}
}

// OIDCConfig contains OpenID Connect configuration.
type OIDCConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	Scope        string `env:"SCOPE"          envDefault:"openid profile email groups offline_access"`
	DiscoveryURL string `env:"DISCOVERY_URL"`

	// IDClaim and UsernameClaim are JMESPath expressions over the userinfo claims.
	IDClaim       string `env:"ID_CLAIM"       envDefault:"employee_id"`
	UsernameClaim string `env:"USERNAME_CLAIM" envDefault:"preferred_username"`
	// RoleClaim, when set, reads the role name directly; otherwise GroupsClaim is mapped through the group settings.
	RoleClaim   string `env:"ROLE_CLAIM"`
	GroupsClaim string `env:"GROUPS_CLAIM"   envDefault:"groups"`

	AdminGroup             string `env:"ADMIN_GROUP"`
	HRGroup                string `env:"HR_GROUP"`
	FinanceGroup           string `env:"FINANCE_GROUP"`
	AttendanceManagerGroup string `env:"ATTENDANCE_MANAGER_GROUP"`
	AuditorGroup           string `env:"AUDITOR_GROUP"`
	StaffGroup             string `env:"STAFF_GROUP"`
}

// DevAuthConfig controls the identity served by the dev gateway.
// Used when BACKEND_MODE=dev for development and testing.
type DevAuthConfig struct {
	UserID   int64  `env:"USER_ID"  envDefault:"1"`
	Username string `env:"USERNAME" envDefault:"dev"`
	Password string `env:"PASSWORD" envDefault:"dev"`
	Role     string `env:"ROLE"     envDefault:"admin"`
}

// BackendConfig groups gateway configuration.
type BackendConfig struct {
	Mode    BackendMode   `env:"BACKEND_MODE"    envDefault:"rpc"`
	URL     string        `env:"BACKEND_URL"`
	Timeout time.Duration `env:"BACKEND_TIMEOUT" envDefault:"10s"`

	// OIDC configuration (used when Mode=oidc).
	OIDC OIDCConfig `envPrefix:"OIDC_"`

	// DevAuth configuration (used when Mode=dev).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`
}

// Sanitize applies defaults to gateway settings.
func (c *BackendConfig) Sanitize() {
	if c.Mode == "" {
		c.Mode = BackendModeRPC
	}
	c.URL = strings.TrimRight(strings.TrimSpace(c.URL), "/")
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if strings.TrimSpace(c.OIDC.Scope) == "" {
		c.OIDC.Scope = "openid profile email groups offline_access"
	}
	if c.DevAuth.UserID < 1 {
		c.DevAuth.UserID = 1
	}
}
