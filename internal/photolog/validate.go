package photolog

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Field names a user-editable field. Header and photo fields share the
// namespace but are reported in separate maps.
type Field string

const (
	FieldProponent     Field = "proponent"
	FieldProjectName   Field = "projectName"
	FieldLocation      Field = "location"
	FieldDate          Field = "date"
	FieldProjectNumber Field = "projectNumber"
	FieldDescription   Field = "description"
	FieldImage         Field = "imageUrl"
)

// FieldSet is a set of invalid fields.
type FieldSet map[Field]struct{}

// Has reports whether f is in the set.
func (s FieldSet) Has(f Field) bool {
	_, ok := s[f]
	return ok
}

// Sorted returns the fields in lexical order.
func (s FieldSet) Sorted() []Field {
	out := make([]Field, 0, len(s))
	for f := range s {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s FieldSet) add(f Field) {
	s[f] = struct{}{}
}

// ValidationErrors is the full result of one validation pass.
type ValidationErrors struct {
	Header FieldSet
	Photos map[int64]FieldSet
}

// Empty reports whether nothing is missing.
func (v ValidationErrors) Empty() bool {
	return len(v.Header) == 0 && len(v.Photos) == 0
}

// Err returns a *ValidationError, or nil when the set is empty.
func (v ValidationErrors) Err() error {
	if v.Empty() {
		return nil
	}
	return &ValidationError{Errors: v}
}

// MarshalJSON renders {"header": [...], "photos": {"<id>": [...]}}.
func (v ValidationErrors) MarshalJSON() ([]byte, error) {
	out := struct {
		Header []Field             `json:"header"`
		Photos map[string][]Field `json:"photos"`
	}{
		Header: v.Header.Sorted(),
		Photos: make(map[string][]Field, len(v.Photos)),
	}
	for id, fields := range v.Photos {
		out.Photos[strconv.FormatInt(id, 10)] = fields.Sorted()
	}
	return json.Marshal(out)
}

// ValidationError blocks an export until the listed fields are filled in.
type ValidationError struct {
	Errors ValidationErrors
}

func (e *ValidationError) Error() string {
	var parts []string
	if n := len(e.Errors.Header); n > 0 {
		names := make([]string, 0, n)
		for _, f := range e.Errors.Header.Sorted() {
			names = append(names, string(f))
		}
		parts = append(parts, "header: "+strings.Join(names, ", "))
	}
	if n := len(e.Errors.Photos); n > 0 {
		parts = append(parts, fmt.Sprintf("%d photo(s) incomplete", n))
	}
	return "missing required fields: " + strings.Join(parts, "; ")
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Validate checks every required field and returns a freshly built error set.
func Validate(header HeaderRecord, list EntryList) ValidationErrors {
	v := ValidationErrors{
		Header: FieldSet{},
		Photos: map[int64]FieldSet{},
	}

	for _, hf := range []struct {
		field Field
		value string
	}{
		{FieldProponent, header.Proponent},
		{FieldProjectName, header.ProjectName},
		{FieldLocation, header.Location},
		{FieldDate, header.Date},
		{FieldProjectNumber, header.ProjectNumber},
	} {
		if blank(hf.value) {
			v.Header.add(hf.field)
		}
	}

	for _, e := range list {
		fields := FieldSet{}
		if blank(e.Date) {
			fields.add(FieldDate)
		}
		if blank(e.Location) {
			fields.add(FieldLocation)
		}
		if blank(e.Description) {
			fields.add(FieldDescription)
		}
		if !e.HasImage() {
			fields.add(FieldImage)
		}
		if len(fields) > 0 {
			v.Photos[e.ID] = fields
		}
	}
	return v
}
