package config

import "strings"

func normalizeRedisRawURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "redis://") || strings.HasPrefix(trimmed, "rediss://") {
		return trimmed
	}
	return "redis://" + trimmed
}

func normalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		if v := strings.TrimRight(strings.TrimSpace(o), "/"); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func normalizeEnv(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "prod", "production":
		return "production"
	case "test":
		return "test"
	default:
		return defaultEnv
	}
}

func normalizeRuntimePaths(paths RuntimePathsConfig) RuntimePathsConfig {
	paths.Logs = ResolveRuntimePath(paths.Logs, "logs")
	paths.Backups = ResolveRuntimePath(paths.Backups, "backups")
	return paths
}

func normalizeFixedSections(in []FixedSectionConfig) []FixedSectionConfig {
	out := make([]FixedSectionConfig, 0, len(in))
	for _, f := range in {
		f.ID = strings.TrimSpace(f.ID)
		f.Name = strings.TrimSpace(f.Name)
		f.Anchor = strings.TrimSpace(f.Anchor)
		if f.Anchor == "" {
			f.Anchor = f.ID
		}
		out = append(out, f)
	}
	return out
}

func copyStringMap(input map[string]string) map[string]string {
	if input == nil {
		return nil
	}
	out := make(map[string]string, len(input))
	for key, value := range input {
		k := strings.TrimSpace(key)
		v := strings.TrimSpace(value)
		if k != "" && v != "" {
			out[k] = v
		}
	}
	return out
}
