package importer

// Canonical ticket field names. Explicit field mappings target these names.
const (
	FieldName          = "name"
	FieldContent       = "content"
	FieldUrgency       = "urgency"
	FieldImpact        = "impact"
	FieldPriority      = "priority"
	FieldType          = "type"
	FieldStatus        = "status"
	FieldCategory      = "itilcategories_id"
	FieldEntity        = "entities_id"
	FieldLocation      = "locations_id"
	FieldRequester     = "_users_id_requester"
	FieldAssignee      = "_users_id_assign"
	FieldGroup         = "_groups_id_assign"
	FieldDate          = "date"
	FieldTimeToResolve = "time_to_resolve"
	FieldActionTime    = "actiontime"
	FieldValidation    = "global_validation"
)

// FieldInfo describes an importable field.
type FieldInfo struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

var fieldCatalog = []FieldInfo{
	{Name: FieldName, Label: "Title"},
	{Name: FieldContent, Label: "Description"},
	{Name: FieldUrgency, Label: "Urgency"},
	{Name: FieldImpact, Label: "Impact"},
	{Name: FieldPriority, Label: "Priority"},
	{Name: FieldType, Label: "Type"},
	{Name: FieldStatus, Label: "Status"},
	{Name: FieldCategory, Label: "Category"},
	{Name: FieldEntity, Label: "Entity"},
	{Name: FieldLocation, Label: "Location"},
	{Name: FieldRequester, Label: "Requester"},
	{Name: FieldAssignee, Label: "Technician"},
	{Name: FieldGroup, Label: "Group"},
	{Name: FieldDate, Label: "Creation date"},
	{Name: FieldTimeToResolve, Label: "Time to resolve"},
	{Name: FieldActionTime, Label: "Duration"},
	{Name: FieldValidation, Label: "Validation"},
}

// headerSynonym pairs a recognized column header with its canonical field.
type headerSynonym struct {
	header string
	field  string
}

// headerSynonyms is ordered; positional mapping depends on it.
var headerSynonyms = []headerSynonym{
	{"title", FieldName},
	{"description", FieldContent},
	{"requester", FieldRequester},
	{"technician", FieldAssignee},
	{"group", FieldGroup},
	{"category", FieldCategory},
	{"priority", FieldPriority},
	{"type", FieldType},
	{"status", FieldStatus},
	{"urgency", FieldUrgency},
	{"impact", FieldImpact},
	{"entity", FieldEntity},
	{"location", FieldLocation},
}

var synonymIndex = func() map[string]string {
	m := make(map[string]string, len(headerSynonyms))
	for _, s := range headerSynonyms {
		m[s.header] = s.field
	}
	return m
}()

// Fields returns the importable fields in declared order.
func Fields() []FieldInfo {
	out := make([]FieldInfo, len(fieldCatalog))
	copy(out, fieldCatalog)
	return out
}

// IsField reports whether name is a canonical field name.
func IsField(name string) bool {
	for _, f := range fieldCatalog {
		if f.Name == name {
			return true
		}
	}
	return false
}

// FieldLabel returns the human label of a canonical field, or "" when unknown.
func FieldLabel(name string) string {
	for _, f := range fieldCatalog {
		if f.Name == name {
			return f.Label
		}
	}
	return ""
}

// SampleHeader is the header row of the documented CSV layout.
func SampleHeader() []string {
	out := make([]string, len(headerSynonyms))
	for i, s := range headerSynonyms {
		out[i] = s.header
	}
	return out
}
