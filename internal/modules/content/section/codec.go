package section

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/mx-space/landing/internal/models"
)

const formatVersion = 1

type document struct {
	Version  int              `json:"version"`
	Sections []models.Section `json:"sections"`
}

// Encode serializes the ordered collection.
func Encode(sections []models.Section) ([]byte, error) {
	if sections == nil {
		sections = []models.Section{}
	}
	return json.Marshal(document{Version: formatVersion, Sections: sections})
}

// Decode parses a serialized collection. A bare JSON array, the format the
// browser-only editor used to keep in local storage, is accepted as well.
func Decode(blob []byte) ([]models.Section, error) {
	trimmed := bytes.TrimSpace(blob)
	if len(trimmed) == 0 {
		return []models.Section{}, nil
	}

	var sections []models.Section
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &sections); err != nil {
			return nil, fmt.Errorf("decode sections: %w", err)
		}
	} else {
		var doc document
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("decode sections: %w", err)
		}
		if doc.Version > formatVersion {
			return nil, fmt.Errorf("decode sections: unsupported format version %d", doc.Version)
		}
		sections = doc.Sections
	}

	seen := make(map[string]struct{}, len(sections))
	for i := range sections {
		id := sections[i].ID
		if id == "" {
			return nil, fmt.Errorf("decode sections: section at position %d has no id", i)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("decode sections: duplicate id %q", id)
		}
		seen[id] = struct{}{}
		if sections[i].Fields == nil {
			sections[i].Fields = models.Fields{}
		}
	}
	if sections == nil {
		sections = []models.Section{}
	}
	return sections, nil
}
