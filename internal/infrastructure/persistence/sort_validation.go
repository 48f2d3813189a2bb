package persistence

import (
	"strings"
)

// ValidateSortOrder normalizes the direction to ASC or DESC, falling back to
// defaultDir for anything else.
func ValidateSortOrder(orderDir, defaultDir string) string {
	switch strings.ToUpper(strings.TrimSpace(orderDir)) {
	case "ASC":
		return "ASC"
	case "DESC":
		return "DESC"
	}
	return defaultDir
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// PositionedSortFields are sortable on every orderable table.
var PositionedSortFields = map[string]bool{
	"sort_order": true,
	"created_at": true,
	"updated_at": true,
	"status":     true,
}

func sortFields(extra ...string) map[string]bool {
	fields := make(map[string]bool, len(PositionedSortFields)+len(extra))
	for k := range PositionedSortFields {
		fields[k] = true
	}
	for _, k := range extra {
		fields[k] = true
	}
	return fields
}
