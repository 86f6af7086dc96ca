package photolog

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestProjectRoundTrip(t *testing.T) {
	projects := []*Project{
		{Header: HeaderRecord{}, Photos: EntryList{}},
		{Header: validHeader(), Photos: Renumber(EntryList{validEntry(3)})},
		{
			Header: HeaderRecord{Proponent: "Ünïcode \"quoted\"", ProjectName: "a\nb", Location: "<>", Date: "", ProjectNumber: "0"},
			Photos: Renumber(EntryList{
				{ID: 10, Description: "no image"},
				validEntry(2),
				{ID: 99, Date: "d", Location: "l", Description: "tab\there"},
			}),
		},
	}

	for i, p := range projects {
		data, err := MarshalProject(p)
		if err != nil {
			t.Fatalf("project %d: marshal: %v", i, err)
		}
		got, err := ParseProject(data)
		if err != nil {
			t.Fatalf("project %d: parse: %v", i, err)
		}
		if !reflect.DeepEqual(got, p) {
			t.Errorf("project %d: round trip mismatch\n got: %+v\nwant: %+v", i, got, p)
		}
	}
}

func TestMarshalProject_NullImage(t *testing.T) {
	data, err := MarshalProject(&Project{Photos: EntryList{{ID: 1}}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"imageUrl": null`) {
		t.Errorf("expected null imageUrl, got %s", data)
	}
	if !strings.Contains(string(data), `"photoNumber": "1"`) {
		t.Errorf("expected derived photoNumber, got %s", data)
	}
}

func TestParseProject_RenumbersFromPosition(t *testing.T) {
	data := `{"headerData":{"proponent":"","projectName":"","location":"","date":"","projectNumber":""},
	"photos":[
		{"id":5,"photoNumber":"9","date":"","location":"","description":"","imageUrl":null},
		{"id":2,"photoNumber":"1","date":"","location":"","description":"","imageUrl":null}
	]}`
	p, err := ParseProject([]byte(data))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.Photos[0].PhotoNumber() != "1" || p.Photos[1].PhotoNumber() != "2" {
		t.Errorf("expected numbers from position, got %q %q", p.Photos[0].PhotoNumber(), p.Photos[1].PhotoNumber())
	}
}

func TestParseProject_ShapeErrors(t *testing.T) {
	header := `"headerData":{"proponent":"","projectName":"","location":"","date":"","projectNumber":""}`
	tests := []struct {
		name    string
		data    string
		problem string
	}{
		{"not json", `{"headerData":`, "not valid JSON"},
		{"array root", `[]`, "top level must be an object"},
		{"missing header", `{"photos":[]}`, "headerData is missing"},
		{"header not object", `{"headerData":"x","photos":[]}`, "headerData must be an object"},
		{"missing header key", `{"headerData":{"proponent":""},"photos":[]}`, "headerData.projectName is missing"},
		{"header wrong type", `{"headerData":{"proponent":1,"projectName":"","location":"","date":"","projectNumber":""},"photos":[]}`, "headerData.proponent must be a string"},
		{"missing photos", `{` + header + `}`, "photos is missing"},
		{"photos not array", `{` + header + `,"photos":{}}`, "photos must be an array"},
		{"photo not object", `{` + header + `,"photos":[1]}`, "photos[0] must be an object"},
		{"float id", `{` + header + `,"photos":[{"id":1.5,"date":"","location":"","description":"","imageUrl":null}]}`, "photos[0].id must be an integer"},
		{"string id", `{` + header + `,"photos":[{"id":"1","date":"","location":"","description":"","imageUrl":null}]}`, "photos[0].id must be an integer"},
		{"zero id", `{` + header + `,"photos":[{"id":0,"date":"","location":"","description":"","imageUrl":null}]}`, "photos[0].id must be positive"},
		{"negative id", `{` + header + `,"photos":[{"id":2,"date":"","location":"","description":"","imageUrl":null},{"id":-3,"date":"","location":"","description":"","imageUrl":null}]}`, "photos[1].id must be positive"},
		{"duplicate id", `{` + header + `,"photos":[{"id":1,"date":"","location":"","description":"","imageUrl":null},{"id":1,"date":"","location":"","description":"","imageUrl":null}]}`, "photos[1].id 1 is duplicated"},
		{"missing description", `{` + header + `,"photos":[{"id":1,"date":"","location":"","imageUrl":null}]}`, "photos[0].description is missing"},
		{"image wrong type", `{` + header + `,"photos":[{"id":1,"date":"","location":"","description":"","imageUrl":false}]}`, "photos[0].imageUrl must be a string or null"},
		{"missing image", `{` + header + `,"photos":[{"id":1,"date":"","location":"","description":""}]}`, "photos[0].imageUrl is missing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseProject([]byte(tt.data))
			var shapeErr *ShapeError
			if !errors.As(err, &shapeErr) {
				t.Fatalf("expected ShapeError, got %v", err)
			}
			found := false
			for _, p := range shapeErr.Problems {
				if p == tt.problem {
					found = true
				}
			}
			if !found {
				t.Errorf("expected problem %q, got %v", tt.problem, shapeErr.Problems)
			}
		})
	}
}

func TestProjectFile_SaveLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "site.json")
	p := &Project{Header: validHeader(), Photos: Renumber(EntryList{validEntry(1), validEntry(4)})}

	if err := SaveProjectFile(path, p); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := LoadProjectFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(got, p) {
		t.Errorf("loaded project differs\n got: %+v\nwant: %+v", got, p)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the project file, found %d entries", len(entries))
	}
}

func TestLoadProjectFile_Missing(t *testing.T) {
	if _, err := LoadProjectFile(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
