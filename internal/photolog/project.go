package photolog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
)

// ShapeError reports a project file that does not have the expected structure.
type ShapeError struct {
	Problems []string
}

func (e *ShapeError) Error() string {
	return "invalid project file: " + strings.Join(e.Problems, "; ")
}

var headerKeys = []string{"proponent", "projectName", "location", "date", "projectNumber"}

var photoTextKeys = []string{"date", "location", "description"}

// checkShape validates key presence and primitive types before decoding.
func checkShape(data []byte) error {
	if !gjson.ValidBytes(data) {
		return &ShapeError{Problems: []string{"not valid JSON"}}
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return &ShapeError{Problems: []string{"top level must be an object"}}
	}

	var problems []string

	header := root.Get("headerData")
	switch {
	case !header.Exists():
		problems = append(problems, "headerData is missing")
	case !header.IsObject():
		problems = append(problems, "headerData must be an object")
	default:
		for _, k := range headerKeys {
			v := header.Get(k)
			if !v.Exists() {
				problems = append(problems, fmt.Sprintf("headerData.%s is missing", k))
			} else if v.Type != gjson.String {
				problems = append(problems, fmt.Sprintf("headerData.%s must be a string", k))
			}
		}
	}

	photos := root.Get("photos")
	switch {
	case !photos.Exists():
		problems = append(problems, "photos is missing")
	case !photos.IsArray():
		problems = append(problems, "photos must be an array")
	default:
		seen := make(map[int64]bool)
		for i, p := range photos.Array() {
			problems = append(problems, checkPhotoShape(i, p, seen)...)
		}
	}

	if len(problems) > 0 {
		return &ShapeError{Problems: problems}
	}
	return nil
}

func checkPhotoShape(i int, p gjson.Result, seen map[int64]bool) []string {
	if !p.IsObject() {
		return []string{fmt.Sprintf("photos[%d] must be an object", i)}
	}
	var problems []string

	id := p.Get("id")
	switch {
	case !id.Exists():
		problems = append(problems, fmt.Sprintf("photos[%d].id is missing", i))
	case id.Type != gjson.Number || strings.ContainsAny(id.Raw, ".eE"):
		problems = append(problems, fmt.Sprintf("photos[%d].id must be an integer", i))
	case id.Int() <= 0:
		problems = append(problems, fmt.Sprintf("photos[%d].id must be positive", i))
	case seen[id.Int()]:
		problems = append(problems, fmt.Sprintf("photos[%d].id %d is duplicated", i, id.Int()))
	default:
		seen[id.Int()] = true
	}

	for _, k := range photoTextKeys {
		v := p.Get(k)
		if !v.Exists() {
			problems = append(problems, fmt.Sprintf("photos[%d].%s is missing", i, k))
		} else if v.Type != gjson.String {
			problems = append(problems, fmt.Sprintf("photos[%d].%s must be a string", i, k))
		}
	}

	if n := p.Get("photoNumber"); n.Exists() && n.Type != gjson.String {
		problems = append(problems, fmt.Sprintf("photos[%d].photoNumber must be a string", i))
	}

	img := p.Get("imageUrl")
	if !img.Exists() {
		problems = append(problems, fmt.Sprintf("photos[%d].imageUrl is missing", i))
	} else if img.Type != gjson.String && img.Type != gjson.Null {
		problems = append(problems, fmt.Sprintf("photos[%d].imageUrl must be a string or null", i))
	}
	return problems
}

// ParseProject decodes a project snapshot after checking its shape. The photo
// list is renumbered from position.
func ParseProject(data []byte) (*Project, error) {
	if err := checkShape(data); err != nil {
		return nil, err
	}
	var p Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decoding project: %w", err)
	}
	if p.Photos == nil {
		p.Photos = EntryList{}
	}
	p.Photos = Renumber(p.Photos)
	return &p, nil
}

// MarshalProject encodes a project snapshot.
func MarshalProject(p *Project) ([]byte, error) {
	out := Project{Header: p.Header, Photos: Renumber(p.Photos)}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding project: %w", err)
	}
	return data, nil
}

// LoadProjectFile reads and parses a project file.
func LoadProjectFile(path string) (*Project, error) {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("reading project file: %w", err)
	}
	return ParseProject(data)
}

// SaveProjectFile writes a project file via a temp file in the same directory.
func SaveProjectFile(path string, p *Project) error {
	data, err := MarshalProject(p)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".photolog-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if err := errors.Join(werr, cerr); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing project file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing project file: %w", err)
	}
	return nil
}
