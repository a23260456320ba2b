package importer

import "strings"

// ColumnMapping binds one source column to a canonical field. An empty Field
// means the column is ignored.
type ColumnMapping struct {
	Source string `json:"source"`
	Field  string `json:"field"`
}

// HeaderMap is the ordered column mapping of a run.
type HeaderMap []ColumnMapping

// MappedFields holds the trimmed, non-empty cell values of a row keyed by
// canonical field name.
type MappedFields map[string]string

// MapHeaders builds the column mapping of a run.
//
// With an explicit mapping (keyed by source header) it is used verbatim and
// headers absent from it are ignored. Otherwise each header is lowercased,
// trimmed and matched against the synonym dictionary. When hasHeaders is
// false the given headers are disregarded and columns are labelled
// positionally with the dictionary's synonyms.
func MapHeaders(headers []string, hasHeaders bool, explicit map[string]string) HeaderMap {
	if !hasHeaders {
		headers = SampleHeader()
	}

	out := make(HeaderMap, len(headers))
	for i, header := range headers {
		out[i] = ColumnMapping{Source: header}
		if len(explicit) > 0 {
			out[i].Field = explicitTarget(explicit, header)
			continue
		}
		out[i].Field = synonymIndex[strings.ToLower(strings.TrimSpace(header))]
	}
	return out
}

func explicitTarget(explicit map[string]string, header string) string {
	if field, ok := explicit[header]; ok {
		return field
	}
	return explicit[strings.TrimSpace(header)]
}

// Apply projects a row onto canonical fields. Cells beyond the mapping are
// ignored; a later column overrides an earlier one mapped to the same field.
func (m HeaderMap) Apply(row []string) MappedFields {
	fields := make(MappedFields, len(m))
	for i, cell := range row {
		if i >= len(m) || m[i].Field == "" {
			continue
		}
		value := strings.TrimSpace(cell)
		if value == "" {
			continue
		}
		fields[m[i].Field] = value
	}
	return fields
}

// Fields lists the mapped canonical fields in column order.
func (m HeaderMap) Fields() []string {
	var out []string
	for _, c := range m {
		if c.Field != "" {
			out = append(out, c.Field)
		}
	}
	return out
}
