package fingerprint

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// HostEnvironment reads signals from the hosting runtime. Headless hosts have
// no GPU or canvas surface, so those probes report ErrUnavailable and the
// generator falls back to sentinels; the id is still deterministic.
type HostEnvironment struct {
	// Version is embedded into the reported user agent.
	Version string

	// StateDir is probed for writability to answer LocalStorage.
	StateDir string

	// Resolution overrides the reported screen resolution. Empty means the
	// host has no display attached.
	Resolution string
}

func (e *HostEnvironment) UserAgent() string {
	return fmt.Sprintf("thibis-client/%s (%s; %s)", e.Version, runtime.GOOS, runtime.GOARCH)
}

func (e *HostEnvironment) ScreenResolution() string {
	if e.Resolution != "" {
		return e.Resolution
	}
	return "headless"
}

func (e *HostEnvironment) Timezone() string {
	if tz := os.Getenv("TZ"); tz != "" {
		return tz
	}
	zone, _ := time.Now().Zone()
	return zone
}

func (e *HostEnvironment) Language() string {
	for _, key := range []string{"LC_ALL", "LANG"} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return "en-US"
}

func (e *HostEnvironment) Platform() string {
	return runtime.GOOS + "/" + runtime.GOARCH
}

// CookiesEnabled is always true for the native client: the HTTP layer accepts
// whatever the hosted API sets.
func (e *HostEnvironment) CookiesEnabled() bool { return true }

func (e *HostEnvironment) LocalStorage() bool {
	if e.StateDir == "" {
		return false
	}
	probe := filepath.Join(e.StateDir, ".probe")
	if err := os.WriteFile(probe, nil, 0o600); err != nil {
		return false
	}
	_ = os.Remove(probe)
	return true
}

// SessionStorage reports in-process state, which is always available.
func (e *HostEnvironment) SessionStorage() bool { return true }

func (e *HostEnvironment) WebGL() (string, error) {
	return "", ErrUnavailable
}

func (e *HostEnvironment) Canvas() (string, error) {
	return "", ErrUnavailable
}
