package app

import (
	"os"
	"strings"
	"time"

	"github.com/mx-space/landing/internal/config"
	"github.com/mx-space/landing/internal/modules/content/section"
	jwtpkg "github.com/mx-space/landing/internal/pkg/jwt"
	"go.uber.org/zap"
)

func applyRuntimeSettings(cfg *config.AppConfig, logger *zap.Logger) error {
	if secret := strings.TrimSpace(cfg.JWTSecret); secret != "" {
		jwtpkg.SetSecret(secret)
	} else {
		logger.Warn("jwt_secret is empty, using built-in default secret")
	}

	tz := strings.TrimSpace(cfg.Timezone)
	if tz == "" {
		return nil
	}
	loc, err := config.ParseTimezone(tz)
	if err != nil {
		return err
	}
	time.Local = loc
	_ = os.Setenv("TZ", tz)
	return nil
}

// fixedSections converts configured blocks; nil keeps the stock set.
func fixedSections(in []config.FixedSectionConfig) []section.FixedSection {
	if in == nil {
		return nil
	}
	out := make([]section.FixedSection, 0, len(in))
	for _, f := range in {
		out = append(out, section.FixedSection{ID: f.ID, Name: f.Name, Anchor: f.Anchor})
	}
	return out
}

func humanizeDuration(d time.Duration) string {
	if d < time.Minute {
		return d.Truncate(time.Second).String()
	}
	if d < time.Hour {
		return d.Truncate(time.Minute).String()
	}
	if d < 24*time.Hour {
		return d.Truncate(time.Hour).String()
	}
	return d.Truncate(24 * time.Hour).String()
}
