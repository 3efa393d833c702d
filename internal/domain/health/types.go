// Package health holds the process-wide infrastructure readiness model.
package health

// Placeholder errors reported until a probe has run.
const (
	StorageNotLoaded = "Storage health has not been loaded yet."
	RuntimeNotLoaded = "Runtime security config has not been loaded yet."
)

// StartupHealth captures infrastructure readiness consumed by route guarding.
// An empty error string means "no error".
type StartupHealth struct {
	StorageReady         bool   `json:"storage_ready"`
	RuntimeSecurityReady bool   `json:"runtime_security_ready"`
	StorageError         string `json:"storage_error,omitempty"`
	RuntimeError         string `json:"runtime_error,omitempty"`
}

// NotLoaded returns the state a process starts in.
func NotLoaded() StartupHealth {
	return StartupHealth{
		StorageError: StorageNotLoaded,
		RuntimeError: RuntimeNotLoaded,
	}
}

// Ready reports whether every readiness flag is set.
func (h StartupHealth) Ready() bool {
	return h.StorageReady && h.RuntimeSecurityReady
}
