package config

import (
	"os"
	"path/filepath"
	"strings"
)

// EnvHome overrides the base directory relative runtime paths resolve against.
const EnvHome = "LANDING_HOME"

// baseDir returns $LANDING_HOME when set, else the directory of the running
// binary with symlinks resolved, else the working directory.
func baseDir() string {
	if home := strings.TrimSpace(os.Getenv(EnvHome)); home != "" {
		return filepath.Clean(expandHome(home))
	}
	if exe, err := os.Executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		return filepath.Dir(exe)
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

// expandHome replaces a leading "~" with the user's home directory.
func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

// ResolveRuntimePath turns a configured logs or backups directory into an
// absolute path. Empty values fall back to fallback under the base dir.
func ResolveRuntimePath(raw, fallback string) string {
	target := expandHome(strings.TrimSpace(raw))
	if target == "" {
		target = strings.TrimSpace(fallback)
	}
	if filepath.IsAbs(target) {
		return filepath.Clean(target)
	}
	return filepath.Join(baseDir(), target)
}
