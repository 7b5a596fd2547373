package cli

import (
	"sort"
	"strings"

	"github.com/loomchat/loom/internal/models"
)

// resolveLine finds a line by id or, failing that, by exact name. Name
// matches must be unambiguous.
func resolveLine(snap *models.Snapshot, ref string) (models.Line, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return models.Line{}, Exitf(ExitCodeFailure, "line reference required")
	}
	if line, ok := snap.Line(ref); ok {
		return line, nil
	}

	var matches []models.Line
	for _, line := range snap.Lines {
		if strings.EqualFold(line.Name, ref) {
			matches = append(matches, line)
		}
	}
	switch len(matches) {
	case 0:
		return models.Line{}, Exitf(ExitCodeFailure, "no line matches %q", ref)
	case 1:
		return matches[0], nil
	default:
		sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })
		ids := make([]string, 0, len(matches))
		for _, line := range matches {
			ids = append(ids, line.ID)
		}
		return models.Line{}, Exitf(ExitCodeFailure, "line name %q is ambiguous: %s", ref, strings.Join(ids, ", "))
	}
}
