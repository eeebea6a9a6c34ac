package render

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/mx-space/landing/internal/models"
)

// ErrInvalidInput means a submitted edit control could not be parsed into its
// schema type.
var ErrInvalidInput = errors.New("invalid edit input")

const (
	presentMarker = "__present"
	removeMarker  = "__remove"
)

// UpdateFunc receives a single-key patch with the complete replacement value
// for that key.
type UpdateFunc func(patch models.Fields) error

type binding struct {
	key   string
	value any
}

// bind parses the submitted controls of schema. Only keys present in form are
// returned, in schema order.
func bind(schema []Control, form url.Values) ([]binding, error) {
	var (
		out  []binding
		errs []string
	)
	for _, c := range schema {
		if c.Kind == KindList {
			if _, ok := form[c.Key+"."+presentMarker]; !ok {
				continue
			}
			items, err := bindList(c, form)
			if err != nil {
				errs = append(errs, err.Error())
				continue
			}
			out = append(out, binding{key: c.Key, value: items})
			continue
		}
		values, ok := form[c.Key]
		if !ok {
			continue
		}
		v, err := parseValue(c, c.Key, values)
		if err != nil {
			errs = append(errs, err.Error())
			continue
		}
		out = append(out, binding{key: c.Key, value: v})
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(errs, "; "))
	}
	return out, nil
}

func bindList(c Control, form url.Values) ([]any, error) {
	prefix := c.Key + "."
	seen := map[int]struct{}{}
	for name := range form {
		rest, ok := strings.CutPrefix(name, prefix)
		if !ok {
			continue
		}
		idx, _, _ := strings.Cut(rest, ".")
		n, err := strconv.Atoi(idx)
		if err != nil || n < 0 {
			continue
		}
		seen[n] = struct{}{}
	}
	indexes := make([]int, 0, len(seen))
	for n := range seen {
		indexes = append(indexes, n)
	}
	sort.Ints(indexes)

	items := make([]any, 0, len(indexes))
	for _, n := range indexes {
		base := fmt.Sprintf("%s.%d.", c.Key, n)
		if parseBool(form[base+removeMarker]) {
			continue
		}
		item := make(map[string]any, len(c.Item))
		blank := true
		for _, sub := range c.Item {
			name := base + sub.Key
			v, err := parseValue(sub, name, form[name])
			if err != nil {
				return nil, err
			}
			if !isBlank(v) && sub.Kind != KindCheckbox && sub.Kind != KindSelect {
				blank = false
			}
			item[sub.Key] = v
		}
		if blank {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func parseValue(c Control, name string, values []string) (any, error) {
	last := ""
	if len(values) > 0 {
		last = values[len(values)-1]
	}
	switch c.Kind {
	case KindCheckbox:
		return parseBool(values), nil
	case KindNumber:
		raw := strings.TrimSpace(last)
		if raw == "" {
			return c.Min, nil
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%s must be a whole number", name)
		}
		if c.Max > c.Min && (n < c.Min || n > c.Max) {
			return nil, fmt.Errorf("%s must be within %d-%d", name, c.Min, c.Max)
		}
		return n, nil
	case KindSelect:
		v := strings.TrimSpace(last)
		if v == "" && len(c.Options) > 0 {
			return c.Options[0], nil
		}
		if !slices.Contains(c.Options, v) {
			return nil, fmt.Errorf("%s must be one of %s", name, strings.Join(c.Options, ", "))
		}
		return v, nil
	case KindTags:
		var out []string
		for _, part := range strings.Split(last, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, nil
	case KindURL:
		return strings.TrimSpace(last), nil
	case KindText:
		return strings.TrimSpace(last), nil
	default:
		return strings.ReplaceAll(last, "\r\n", "\n"), nil
	}
}

// parseBool reads a checkbox rendered as a hidden "false" input followed by
// the box itself, so the last submitted value wins.
func parseBool(values []string) bool {
	if len(values) == 0 {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(values[len(values)-1])) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func isBlank(v any) bool {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val) == ""
	case []string:
		return len(val) == 0
	case int:
		return val == 0
	case bool:
		return !val
	}
	return v == nil
}

// changed reports whether the normalized next value differs from current.
func changed(current, next any) bool {
	return !reflect.DeepEqual(current, next)
}
