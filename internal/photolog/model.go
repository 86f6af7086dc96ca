// Package photolog holds the photographic log data model: the header record,
// the ordered photo entry list and the operations that keep its numbering
// consistent.
package photolog

import (
	"encoding/json"
	"strconv"
)

// HeaderRecord is the document-level metadata block printed on every page.
type HeaderRecord struct {
	Proponent     string `json:"proponent"`
	ProjectName   string `json:"projectName"`
	Location      string `json:"location"`
	Date          string `json:"date"`
	ProjectNumber string `json:"projectNumber"`
}

// PhotoEntry is one photo record of the log.
//
// The photo number is derived from the entry's position and is only assigned
// by Renumber. ImageURL holds a data URL with the normalized image; empty
// means no image.
type PhotoEntry struct {
	ID          int64
	Date        string
	Location    string
	Description string
	ImageURL    string

	number int
}

// PhotoNumber returns the 1-based display number, or "" when the entry has
// not been placed in a list yet.
func (e PhotoEntry) PhotoNumber() string {
	if e.number <= 0 {
		return ""
	}
	return strconv.Itoa(e.number)
}

// HasImage reports whether an image is attached.
func (e PhotoEntry) HasImage() bool {
	return e.ImageURL != ""
}

type photoEntryJSON struct {
	ID          int64   `json:"id"`
	PhotoNumber string  `json:"photoNumber"`
	Date        string  `json:"date"`
	Location    string  `json:"location"`
	Description string  `json:"description"`
	ImageURL    *string `json:"imageUrl"`
}

// MarshalJSON writes the entry in project file form; a missing image is null.
func (e PhotoEntry) MarshalJSON() ([]byte, error) {
	out := photoEntryJSON{
		ID:          e.ID,
		PhotoNumber: e.PhotoNumber(),
		Date:        e.Date,
		Location:    e.Location,
		Description: e.Description,
	}
	if e.ImageURL != "" {
		img := e.ImageURL
		out.ImageURL = &img
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads an entry. The stored photoNumber is ignored; numbering
// is recomputed from position by the caller.
func (e *PhotoEntry) UnmarshalJSON(data []byte) error {
	var in photoEntryJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*e = PhotoEntry{
		ID:          in.ID,
		Date:        in.Date,
		Location:    in.Location,
		Description: in.Description,
	}
	if in.ImageURL != nil {
		e.ImageURL = *in.ImageURL
	}
	return nil
}

// EntryList is the ordered photo list; order is print order.
type EntryList []PhotoEntry

// Index returns the position of the entry with the given id, or -1.
func (l EntryList) Index(id int64) int {
	for i, e := range l {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// Get returns the entry with the given id.
func (l EntryList) Get(id int64) (PhotoEntry, bool) {
	if i := l.Index(id); i >= 0 {
		return l[i], true
	}
	return PhotoEntry{}, false
}

// Project is the complete saved state of a log.
type Project struct {
	Header HeaderRecord `json:"headerData"`
	Photos EntryList    `json:"photos"`
}
