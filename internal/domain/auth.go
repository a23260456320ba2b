package domain

// Right is a bitmask of granted actions on a right name.
type Right int

const (
	RightRead   Right = 1
	RightUpdate Right = 2
	RightCreate Right = 4
	RightDelete Right = 8
)

// Right names checked by the import flow.
const (
	RightNameImport = "plugin_importtickets"
	RightNameTicket = "ticket"
)

// Has reports whether every bit of want is granted.
func (r Right) Has(want Right) bool {
	return r&want == want
}
