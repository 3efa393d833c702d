package config

import "strings"

// RoutesConfig names the navigation targets used by the route policy.
type RoutesConfig struct {
	Setup        string `env:"ROUTE_SETUP"         envDefault:"/setup-db"`
	Login        string `env:"ROUTE_LOGIN"         envDefault:"/login"`
	Dashboard    string `env:"ROUTE_DASHBOARD"     envDefault:"/dashboard"`
	AccessDenied string `env:"ROUTE_ACCESS_DENIED" envDefault:"/access-denied"`
}

// Sanitize ensures every route is an absolute path. Blank routes are left empty
// so the route policy falls back to its defaults.
func (c *RoutesConfig) Sanitize() {
	for _, p := range []*string{&c.Setup, &c.Login, &c.Dashboard, &c.AccessDenied} {
		v := strings.TrimSpace(*p)
		if v != "" && !strings.HasPrefix(v, "/") {
			v = "/" + v
		}
		*p = v
	}
}
