package launcher

import "sync"

var (
	activeLauncher Launcher
	launcherMu     sync.RWMutex
)

// SetActive configures the launcher instance the application should
// use. Passing nil clears any previously configured launcher.
func SetActive(l Launcher) {
	launcherMu.Lock()
	defer launcherMu.Unlock()
	activeLauncher = l
}

// Active returns the currently configured launcher instance, or
// ErrNoActiveLauncher when none has been set.
func Active() (Launcher, error) {
	launcherMu.RLock()
	defer launcherMu.RUnlock()
	if activeLauncher == nil {
		return nil, ErrNoActiveLauncher
	}
	return activeLauncher, nil
}

// ClearActive resets the active launcher reference.
func ClearActive() {
	SetActive(nil)
}
