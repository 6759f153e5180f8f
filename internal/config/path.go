package config

import (
	"os"
	"path/filepath"
)

// DefaultDataDir returns where greetd keeps its store when neither dataDir
// nor storeURL is configured. XDG_DATA_HOME wins; otherwise the first
// platform location whose parent exists is used, then ~/.greetd.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "./data"
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "greetd")
	}
	return dataDirUnder(home, os.Geteuid() == 0)
}

// dataDirUnder picks a location below home. /var/lib is only considered for
// root, as other users cannot create directories there.
func dataDirUnder(home string, root bool) string {
	type candidate struct{ parent, dir string }
	var cands []candidate
	if root {
		cands = append(cands, candidate{"/var/lib", "/var/lib/greetd"})
	}
	cands = append(cands,
		candidate{filepath.Join(home, "Library"), filepath.Join(home, "Library", "Application Support", "greetd")},
		candidate{filepath.Join(home, "AppData"), filepath.Join(home, "AppData", "Local", "greetd")},
		candidate{filepath.Join(home, ".local", "share"), filepath.Join(home, ".local", "share", "greetd")},
	)
	for _, c := range cands {
		if isDir(c.parent) {
			return c.dir
		}
	}
	return filepath.Join(home, ".greetd")
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
