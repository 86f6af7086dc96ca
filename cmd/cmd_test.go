package cmd

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/photolog/internal/imaging"
	"github.com/kozaktomas/photolog/internal/photolog"
)

func writeJPEG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		for y := range h {
			img.Set(x, y, color.RGBA{R: 90, G: 110, B: 130, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80}); err != nil {
		t.Fatalf("failed to encode jpeg: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestIsImageFile(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"IMG_0001.JPG", true},
		{"site.jpeg", true},
		{"plan.png", true},
		{"scan.tif", true},
		{"photo.webp", true},
		{"notes.txt", false},
		{"project.json", false},
		{"noext", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isImageFile(tt.name); got != tt.want {
				t.Errorf("isImageFile(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestCollectImages(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "day2")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"b.jpg", "a.png", "readme.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(sub, "c.jpg"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Run("flat", func(t *testing.T) {
		files, err := collectImages([]string{dir}, false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []string{filepath.Join(dir, "a.png"), filepath.Join(dir, "b.jpg")}
		if !slices.Equal(files, want) {
			t.Errorf("got %v, want %v", files, want)
		}
	})

	t.Run("recursive", func(t *testing.T) {
		files, err := collectImages([]string{dir}, true)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(files) != 3 || files[2] != filepath.Join(sub, "c.jpg") {
			t.Errorf("unexpected files %v", files)
		}
	})

	t.Run("explicit file kept as given", func(t *testing.T) {
		path := filepath.Join(dir, "readme.txt")
		files, err := collectImages([]string{path}, false)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(files) != 1 || files[0] != path {
			t.Errorf("unexpected files %v", files)
		}
	})

	t.Run("missing path", func(t *testing.T) {
		if _, err := collectImages([]string{filepath.Join(dir, "nope")}, false); err == nil {
			t.Error("expected error for missing path")
		}
	})
}

func TestAddPhoto(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "wide.jpg")
	writeJPEG(t, good, 160, 90)
	bad := filepath.Join(dir, "broken.jpg")
	if err := os.WriteFile(bad, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}

	doc := photolog.NewDocument()
	date := "2026-05-02"
	opts := imaging.Options{Policy: imaging.PolicyCrop, Width: 120, Quality: 80}

	if err := addPhoto(doc, good, opts, photolog.EntryUpdate{Date: &date}); err != nil {
		t.Fatalf("addPhoto failed: %v", err)
	}
	err := addPhoto(doc, bad, opts, photolog.EntryUpdate{})
	if !errors.Is(err, imaging.ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}

	entries := doc.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Date != date || e.PhotoNumber() != "1" {
		t.Errorf("unexpected entry %+v", e)
	}
	mime, data, err := imaging.DecodeDataURL(e.ImageURL)
	if err != nil {
		t.Fatalf("image is not a data URL: %v", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode config: %v", err)
	}
	if mime != "image/jpeg" || cfg.Width != 120 || cfg.Height != 90 {
		t.Errorf("expected 120x90 jpeg, got %s %dx%d", mime, cfg.Width, cfg.Height)
	}
}

func writeTruncatedJPEG(t *testing.T, path string) {
	t.Helper()
	writeJPEG(t, path, 160, 120)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data[:len(data)/2], 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestAddPhotos_SkipsUndecodableFiles(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		filepath.Join(dir, "a.jpg"),
		filepath.Join(dir, "b.jpg"),
		filepath.Join(dir, "c.jpg"),
		filepath.Join(dir, "missing.jpg"),
	}
	writeJPEG(t, files[0], 160, 120)
	writeTruncatedJPEG(t, files[1])
	writeJPEG(t, files[2], 160, 120)

	var logs bytes.Buffer
	logger := log.New(&logs)
	doc := photolog.NewDocument()
	opts := imaging.Options{Policy: imaging.PolicyFit, Width: 80, Quality: 80}
	ticks := 0

	added, skipped, err := addPhotos(doc, files, opts, photolog.EntryUpdate{}, logger, func() { ticks++ })
	if err != nil {
		t.Fatalf("addPhotos failed: %v", err)
	}
	if added != 2 || skipped != 2 {
		t.Errorf("expected 2 added and 2 skipped, got %d and %d", added, skipped)
	}
	if ticks != len(files) {
		t.Errorf("expected %d progress ticks, got %d", len(files), ticks)
	}
	if n := len(doc.Entries()); n != 2 {
		t.Errorf("expected 2 entries, got %d", n)
	}
	for _, name := range []string{"b.jpg", "missing.jpg"} {
		if !strings.Contains(logs.String(), name) {
			t.Errorf("log %q does not mention %s", logs.String(), name)
		}
	}
}

func TestAddPhotosCommand_TruncatedJPEGInFolder(t *testing.T) {
	dir := t.TempDir()
	photos := filepath.Join(dir, "site")
	if err := os.Mkdir(photos, 0o755); err != nil {
		t.Fatal(err)
	}
	writeJPEG(t, filepath.Join(photos, "01.jpg"), 160, 120)
	writeTruncatedJPEG(t, filepath.Join(photos, "02.jpg"))

	path := filepath.Join(dir, "depot.json")
	if err := photolog.SaveProjectFile(path, &photolog.Project{
		Header: photolog.HeaderRecord{ProjectName: "Tram Depot"},
	}); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	root := Root()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"add-photos", path, photos})
	t.Cleanup(func() {
		root.SetOut(nil)
		root.SetErr(nil)
		root.SetArgs(nil)
	})

	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("add-photos failed: %v", err)
	}
	project, err := photolog.LoadProjectFile(path)
	if err != nil {
		t.Fatalf("reload project: %v", err)
	}
	if len(project.Photos) != 1 {
		t.Fatalf("expected 1 photo saved, got %d", len(project.Photos))
	}
	if project.Photos[0].ImageURL == "" {
		t.Error("saved photo has no image")
	}
}

func TestDescribeTargets(t *testing.T) {
	list := photolog.Renumber(photolog.EntryList{
		{ID: 1, ImageURL: "data:image/jpeg;base64,AA=="},
		{ID: 2, ImageURL: "data:image/jpeg;base64,AA==", Description: "Done already."},
		{ID: 3},
	})

	ids := func(l photolog.EntryList) []int64 {
		var out []int64
		for _, e := range l {
			out = append(out, e.ID)
		}
		return out
	}

	tests := []struct {
		name      string
		id        int64
		overwrite bool
		want      []int64
	}{
		{"blank only", 0, false, []int64{1}},
		{"overwrite", 0, true, []int64{1, 2}},
		{"single with description", 2, false, []int64{2}},
		{"single without image", 3, false, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ids(describeTargets(list, tt.id, tt.overwrite)); !slices.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	c := &cobra.Command{Use: "test"}
	addLayoutFlags(c)
	addPolicyFlag(c)
	if err := c.ParseFlags([]string{"--page-size", "LETTER", "--layout", "grouped", "--group-size", "3", "--policy", "fit"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg := loadConfig(c)
	if cfg.Layout.PageSize != "letter" || cfg.Layout.Strategy != "grouped" || cfg.Layout.GroupSize != 3 {
		t.Errorf("layout flags not applied: %+v", cfg.Layout)
	}
	if cfg.Image.Policy != "fit" {
		t.Errorf("expected fit policy, got %s", cfg.Image.Policy)
	}

	pl, err := cfg.PageLayout()
	if err != nil {
		t.Fatalf("PageLayout: %v", err)
	}
	if pl.GroupSize != 3 {
		t.Errorf("expected group size 3, got %d", pl.GroupSize)
	}
}

func TestLoadConfig_RejectsUnusableLayouts(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"group slots too small", []string{"--layout", "grouped", "--group-size", "30"}},
		{"text column too narrow", []string{"--text-ratio", "0.1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &cobra.Command{Use: "test"}
			addLayoutFlags(c)
			if err := c.ParseFlags(tt.args); err != nil {
				t.Fatalf("parse flags: %v", err)
			}
			if _, err := loadConfig(c).PageLayout(); err == nil {
				t.Error("expected invalid layout error")
			}
		})
	}
}

func TestValidateCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "depot.json")
	project := &photolog.Project{
		Header: photolog.HeaderRecord{Proponent: "City of Brno", ProjectName: "Tram Depot"},
		Photos: photolog.EntryList{{ID: 7, Date: "2026-05-02"}},
	}
	if err := photolog.SaveProjectFile(path, project); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	root := Root()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"validate", path})
	t.Cleanup(func() {
		root.SetOut(nil)
		root.SetErr(nil)
		root.SetArgs(nil)
	})

	err := root.ExecuteContext(context.Background())
	var verr *photolog.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	got := out.String()
	for _, want := range []string{"Header: missing date, location, projectNumber", "Photo 1 (id 7): missing"} {
		if !strings.Contains(got, want) {
			t.Errorf("output %q missing %q", got, want)
		}
	}
}
