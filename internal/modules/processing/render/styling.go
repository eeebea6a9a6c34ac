package render

import (
	"fmt"
	"html/template"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/mx-space/landing/internal/models"
)

// ParallaxFactor is how far the background layer moves per scrolled pixel.
const ParallaxFactor = 0.5

var (
	hexColorPattern   = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)
	colorTokenPattern = regexp.MustCompile(`^[a-z]+(-[0-9]{2,3})?$`)
)

// ParallaxTransform returns the CSS transform of the background layer for a
// given vertical scroll offset.
func ParallaxTransform(s models.SectionStyling, scrollY float64) string {
	if !s.Parallax || strings.TrimSpace(s.BackgroundImage) == "" {
		return "none"
	}
	return "translate3d(0, " + strconv.FormatFloat(scrollY*ParallaxFactor, 'f', -1, 64) + "px, 0)"
}

// BackgroundClass maps a named color token onto a utility class. Hex colors
// are handled inline by BackgroundStyle.
func BackgroundClass(s models.SectionStyling) string {
	token := strings.TrimSpace(s.Background)
	if colorTokenPattern.MatchString(token) {
		return "lp-bg-" + token
	}
	return ""
}

// BackgroundStyle is the inline style of the section wrapper.
func BackgroundStyle(s models.SectionStyling) template.CSS {
	var b strings.Builder
	if token := strings.TrimSpace(s.Background); hexColorPattern.MatchString(token) {
		b.WriteString("background-color:" + token + ";")
	}
	fmt.Fprintf(&b, "--lp-card-radius:%dpx;", max(s.CardBorderRadius, 0))
	fmt.Fprintf(&b, "--lp-card-opacity:%.2f;", float64(clampPercent(s.CardOpacity))/100)
	return template.CSS(b.String()) //nolint:gosec
}

// BackgroundLayerStyle is the inline style of the image layer behind the
// section content. It is empty when no usable image is configured.
func BackgroundLayerStyle(s models.SectionStyling, scrollY float64) template.CSS {
	src, ok := safeImageURL(s.BackgroundImage)
	if !ok {
		return ""
	}
	opacity := 100
	if s.ImageOpacity != nil {
		opacity = clampPercent(*s.ImageOpacity)
	}
	css := fmt.Sprintf(`background-image:url("%s");opacity:%.2f;transform:%s;`,
		src, float64(opacity)/100, ParallaxTransform(s, scrollY))
	return template.CSS(css) //nolint:gosec
}

// ResolveTextTheme picks the text color for a section. Light means light text
// for dark or image backgrounds.
func ResolveTextTheme(s models.SectionStyling) models.TextColor {
	switch s.TextColor {
	case models.TextColorLight, models.TextColorDark:
		return s.TextColor
	}
	if _, ok := safeImageURL(s.BackgroundImage); ok {
		return models.TextColorLight
	}
	if isDarkBackground(s.Background) {
		return models.TextColorLight
	}
	return models.TextColorDark
}

func isDarkBackground(token string) bool {
	token = strings.ToLower(strings.TrimSpace(token))
	if hexColorPattern.MatchString(token) {
		return luminance(token) < 0.5
	}
	if token == "black" {
		return true
	}
	if i := strings.LastIndexByte(token, '-'); i >= 0 {
		if shade, err := strconv.Atoi(token[i+1:]); err == nil {
			return shade >= 600
		}
	}
	return false
}

func luminance(hex string) float64 {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 1
	}
	r := float64((v >> 16) & 0xff)
	g := float64((v >> 8) & 0xff)
	b := float64(v & 0xff)
	return (0.299*r + 0.587*g + 0.114*b) / 255
}

func safeImageURL(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.ContainsAny(raw, "\"'()\\ \t\r\n") {
		return "", false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	switch u.Scheme {
	case "http", "https":
		return u.String(), true
	case "":
		return u.String(), strings.HasPrefix(raw, "/")
	}
	return "", false
}

func clampPercent(v int) int {
	return min(max(v, 0), 100)
}
