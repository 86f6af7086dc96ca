package photolog

import (
	"errors"
	"fmt"
	"sync"
)

// ErrExportInProgress is returned for mutations and second exports while an
// export holds the document.
var ErrExportInProgress = errors.New("export in progress")

// ErrEntryNotFound is returned when an entry id is not in the document.
var ErrEntryNotFound = errors.New("photo entry not found")

// EntryUpdate carries the user-editable entry fields. Nil fields are left
// untouched. The photo number is not editable.
type EntryUpdate struct {
	Date        *string `json:"date,omitempty"`
	Location    *string `json:"location,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Document is the live editing state of one log. It is safe for concurrent
// use; exports are single-flight.
type Document struct {
	mu        sync.Mutex
	header    HeaderRecord
	entries   EntryList
	ids       IDGenerator
	exporting bool
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{entries: EntryList{}}
}

// NewDocumentFromProject returns a document holding p.
func NewDocumentFromProject(p *Project) *Document {
	d := NewDocument()
	d.header = p.Header
	d.entries = Renumber(p.Photos)
	d.ids.Observe(d.entries)
	return d
}

// Snapshot returns a copy of the current state.
func (d *Document) Snapshot() *Project {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snapshotLocked()
}

func (d *Document) snapshotLocked() *Project {
	entries := make(EntryList, len(d.entries))
	copy(entries, d.entries)
	return &Project{Header: d.header, Photos: entries}
}

// Header returns the header record.
func (d *Document) Header() HeaderRecord {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.header
}

// Entries returns a copy of the entry list.
func (d *Document) Entries() EntryList {
	return d.Snapshot().Photos
}

// Validate runs the form validator on the current state.
func (d *Document) Validate() ValidationErrors {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Validate(d.header, d.entries)
}

// mutate runs fn under the lock unless an export is running.
func (d *Document) mutate(fn func() error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.exporting {
		return ErrExportInProgress
	}
	return fn()
}

// SetHeader replaces the header record.
func (d *Document) SetHeader(h HeaderRecord) error {
	return d.mutate(func() error {
		d.header = h
		return nil
	})
}

// AddEntry appends an empty entry and returns it.
func (d *Document) AddEntry() (PhotoEntry, error) {
	var added PhotoEntry
	err := d.mutate(func() error {
		d.entries, added = Add(d.entries, &d.ids)
		return nil
	})
	return added, err
}

// RemoveEntry deletes an entry. Unknown ids are ignored.
func (d *Document) RemoveEntry(id int64) error {
	return d.mutate(func() error {
		d.entries = Remove(d.entries, id)
		return nil
	})
}

// MoveEntry moves an entry one position up or down.
func (d *Document) MoveEntry(id int64, dir Direction) error {
	return d.mutate(func() error {
		d.entries = Move(d.entries, id, dir)
		return nil
	})
}

// UpdateEntry applies u to the entry with the given id.
func (d *Document) UpdateEntry(id int64, u EntryUpdate) (PhotoEntry, error) {
	var updated PhotoEntry
	err := d.mutate(func() error {
		idx := d.entries.Index(id)
		if idx < 0 {
			return fmt.Errorf("%w: %d", ErrEntryNotFound, id)
		}
		e := d.entries[idx]
		if u.Date != nil {
			e.Date = *u.Date
		}
		if u.Location != nil {
			e.Location = *u.Location
		}
		if u.Description != nil {
			e.Description = *u.Description
		}
		d.entries[idx] = e
		updated = e
		return nil
	})
	return updated, err
}

// SetImage attaches a normalized image data URL to an entry.
func (d *Document) SetImage(id int64, dataURL string) error {
	return d.mutate(func() error {
		idx := d.entries.Index(id)
		if idx < 0 {
			return fmt.Errorf("%w: %d", ErrEntryNotFound, id)
		}
		d.entries[idx].ImageURL = dataURL
		return nil
	})
}

// Replace swaps the whole state for a loaded project.
func (d *Document) Replace(p *Project) error {
	return d.mutate(func() error {
		d.header = p.Header
		d.entries = Renumber(p.Photos)
		d.ids.Observe(d.entries)
		return nil
	})
}

// BeginExport snapshots the document and blocks mutations until release is
// called.
func (d *Document) BeginExport() (snapshot *Project, release func(), err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.exporting {
		return nil, nil, ErrExportInProgress
	}
	d.exporting = true
	var once sync.Once
	release = func() {
		once.Do(func() {
			d.mu.Lock()
			d.exporting = false
			d.mu.Unlock()
		})
	}
	return d.snapshotLocked(), release, nil
}

// Exporting reports whether an export currently holds the document.
func (d *Document) Exporting() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.exporting
}
