package importer

import "strings"

// EnumKind selects a normalization table.
type EnumKind string

const (
	EnumPriority   EnumKind = "priority"
	EnumUrgency    EnumKind = "urgency"
	EnumImpact     EnumKind = "impact"
	EnumStatus     EnumKind = "status"
	EnumType       EnumKind = "type"
	EnumValidation EnumKind = "validation"
)

type enumTable struct {
	codes    map[string]int
	fallback int
}

// Urgency and impact share the priority table, including its fallback.
var levelTable = enumTable{
	codes: map[string]int{
		"very low": 1, "verylow": 1, "1": 1,
		"low": 2, "2": 2,
		"medium": 3, "med": 3, "3": 3,
		"high": 4, "4": 4,
		"very high": 5, "veryhigh": 5, "5": 5,
	},
	fallback: 3,
}

var enumTables = map[EnumKind]enumTable{
	EnumPriority: levelTable,
	EnumUrgency:  levelTable,
	EnumImpact:   levelTable,
	EnumStatus: {
		codes: map[string]int{
			"new": 1, "incoming": 1, "1": 1,
			"in progress": 2, "progress": 2, "2": 2,
			"waiting": 3, "3": 3,
			"solved": 5, "5": 5,
			"closed": 6, "6": 6,
		},
		fallback: 1,
	},
	EnumType: {
		codes: map[string]int{
			"incident": 1, "1": 1,
			"request": 2, "demand": 2, "2": 2,
		},
		fallback: 1,
	},
	EnumValidation: {
		codes: map[string]int{
			"none": 1, "1": 1,
			"waiting": 2, "2": 2,
			"accepted": 3, "3": 3,
			"refused": 4, "4": 4,
		},
		fallback: 1,
	},
}

// Normalize converts a free-text value to the canonical code of kind.
// Unrecognized or empty input yields the kind's default; it never fails.
func Normalize(kind EnumKind, raw string) int {
	table, ok := enumTables[kind]
	if !ok {
		return 0
	}
	if code, ok := table.codes[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return code
	}
	return table.fallback
}

// DefaultCode returns the fallback code of kind.
func DefaultCode(kind EnumKind) int {
	return enumTables[kind].fallback
}
