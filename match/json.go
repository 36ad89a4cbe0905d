package match

import (
	"encoding/json"
	"io"
)

// WriteJSON emits match groups in the stable external form:
//
//	[{"reference": "path/a.mp4", "duplicates": ["path/b.mp4"], "distances": [0.07]}, ...]
func WriteJSON(w io.Writer, groups []MatchGroup) error {
	if groups == nil {
		groups = []MatchGroup{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(groups)
}
