package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/kozaktomas/photolog/internal/imaging"
	"github.com/kozaktomas/photolog/internal/photolog"
)

func newPhotosHandler(d *fakeDescriber) (*PhotosHandler, *Workspace) {
	ws := NewWorkspace()
	var h *PhotosHandler
	if d == nil {
		h = NewPhotosHandler(ws, imaging.DefaultOptions(), nil, quietLogger())
	} else {
		h = NewPhotosHandler(ws, imaging.DefaultOptions(), d, quietLogger())
	}
	return h, ws
}

func photoParams(id int64) map[string]string {
	return map[string]string{"photoId": strconv.FormatInt(id, 10)}
}

func TestPhotosHandler_AddUpdate(t *testing.T) {
	handler, ws := newPhotosHandler(nil)
	id, doc := ws.Create()

	recorder := httptest.NewRecorder()
	handler.Add(recorder, docRequest("POST", "/", id, nil, nil))
	assertStatusCode(t, recorder, http.StatusCreated)

	var added photolog.PhotoEntry
	parseJSONResponse(t, recorder, &added)
	if added.ID == 0 || added.HasImage() {
		t.Fatalf("unexpected entry %+v", added)
	}

	recorder = httptest.NewRecorder()
	body := jsonBody(t, map[string]string{"location": "Pier 3", "description": "Bearing installed"})
	handler.Update(recorder, docRequest("PUT", "/", id, body, photoParams(added.ID)))
	assertStatusCode(t, recorder, http.StatusOK)

	e, _ := doc.Entries().Get(added.ID)
	if e.Location != "Pier 3" || e.Description != "Bearing installed" || e.Date != "" {
		t.Errorf("unexpected entry after update %+v", e)
	}
	if e.PhotoNumber() != "1" {
		t.Errorf("expected photo number 1, got %q", e.PhotoNumber())
	}
}

func TestPhotosHandler_UpdateUnknownEntry(t *testing.T) {
	handler, ws := newPhotosHandler(nil)
	id, _ := ws.Create()

	recorder := httptest.NewRecorder()
	handler.Update(recorder, docRequest("PUT", "/", id, jsonBody(t, map[string]string{"date": "x"}), photoParams(42)))
	assertStatusCode(t, recorder, http.StatusNotFound)
}

func TestPhotosHandler_DeleteRenumbers(t *testing.T) {
	handler, ws := newPhotosHandler(nil)
	id, doc := ws.Create()
	first, _ := doc.AddEntry()
	second, _ := doc.AddEntry()
	third, _ := doc.AddEntry()

	recorder := httptest.NewRecorder()
	handler.Delete(recorder, docRequest("DELETE", "/", id, nil, photoParams(first.ID)))
	assertStatusCode(t, recorder, http.StatusOK)

	var list []photolog.PhotoEntry
	parseJSONResponse(t, recorder, &list)
	if len(list) != 2 || list[0].ID != second.ID || list[1].ID != third.ID {
		t.Fatalf("unexpected list %+v", list)
	}
	if list[0].PhotoNumber() != "1" || list[1].PhotoNumber() != "2" {
		t.Errorf("expected renumbering, got %s %s", list[0].PhotoNumber(), list[1].PhotoNumber())
	}

	recorder = httptest.NewRecorder()
	handler.Delete(recorder, docRequest("DELETE", "/", id, nil, photoParams(first.ID)))
	assertStatusCode(t, recorder, http.StatusNotFound)
}

func TestPhotosHandler_Move(t *testing.T) {
	tests := []struct {
		name      string
		move      int
		direction string
		want      []int
		status    int
	}{
		{"down from top", 0, "down", []int{1, 0, 2}, http.StatusOK},
		{"up from bottom", 2, "up", []int{0, 2, 1}, http.StatusOK},
		{"up at top is no-op", 0, "up", []int{0, 1, 2}, http.StatusOK},
		{"down at bottom is no-op", 2, "down", []int{0, 1, 2}, http.StatusOK},
		{"bad direction", 1, "sideways", []int{0, 1, 2}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, ws := newPhotosHandler(nil)
			id, doc := ws.Create()
			var ids []int64
			for range 3 {
				e, _ := doc.AddEntry()
				ids = append(ids, e.ID)
			}

			recorder := httptest.NewRecorder()
			body := jsonBody(t, map[string]string{"direction": tt.direction})
			handler.Move(recorder, docRequest("POST", "/", id, body, photoParams(ids[tt.move])))
			assertStatusCode(t, recorder, tt.status)

			entries := doc.Entries()
			for pos, idx := range tt.want {
				if entries[pos].ID != ids[idx] {
					t.Errorf("position %d: expected id %d, got %d", pos, ids[idx], entries[pos].ID)
				}
				if entries[pos].PhotoNumber() != strconv.Itoa(pos+1) {
					t.Errorf("position %d: photo number %q", pos, entries[pos].PhotoNumber())
				}
			}
		})
	}
}

func TestPhotosHandler_UploadImage(t *testing.T) {
	handler, ws := newPhotosHandler(nil)
	id, doc := ws.Create()
	e, _ := doc.AddEntry()

	body, contentType := multipartFile(t, "site.jpg", testJPEG(t, 1600, 900))
	req := docRequest("POST", "/", id, body, photoParams(e.ID))
	req.Header.Set("Content-Type", contentType)

	recorder := httptest.NewRecorder()
	handler.UploadImage(recorder, req)
	assertStatusCode(t, recorder, http.StatusOK)

	var resp struct {
		Width       int    `json:"width"`
		Height      int    `json:"height"`
		SourceWidth int    `json:"sourceWidth"`
		Mode        string `json:"mode"`
	}
	parseJSONResponse(t, recorder, &resp)
	if resp.Width != 1200 || resp.Height != 900 || resp.SourceWidth != 1600 || resp.Mode != string(imaging.ModeCropped) {
		t.Errorf("unexpected upload result %+v", resp)
	}

	stored, _ := doc.Entries().Get(e.ID)
	if !strings.HasPrefix(stored.ImageURL, "data:image/jpeg;base64,") {
		t.Errorf("expected JPEG data URL, got %.40s", stored.ImageURL)
	}
}

func TestPhotosHandler_UploadUnsupported(t *testing.T) {
	handler, ws := newPhotosHandler(nil)
	id, doc := ws.Create()
	e, _ := doc.AddEntry()

	body, contentType := multipartFile(t, "notes.txt", []byte("not an image at all"))
	req := docRequest("POST", "/", id, body, photoParams(e.ID))
	req.Header.Set("Content-Type", contentType)

	recorder := httptest.NewRecorder()
	handler.UploadImage(recorder, req)
	assertStatusCode(t, recorder, http.StatusUnsupportedMediaType)
	assertJSONError(t, recorder, imaging.ErrUnsupportedType.Error())

	stored, _ := doc.Entries().Get(e.ID)
	if stored.HasImage() {
		t.Error("entry should keep no image after a rejected upload")
	}
}

func TestPhotosHandler_UploadMissingFile(t *testing.T) {
	handler, ws := newPhotosHandler(nil)
	id, doc := ws.Create()
	e, _ := doc.AddEntry()

	req := docRequest("POST", "/", id, strings.NewReader("plain"), photoParams(e.ID))
	req.Header.Set("Content-Type", "text/plain")

	recorder := httptest.NewRecorder()
	handler.UploadImage(recorder, req)
	assertStatusCode(t, recorder, http.StatusBadRequest)
}

func TestPhotosHandler_DescribeWithoutProvider(t *testing.T) {
	handler, ws := newPhotosHandler(nil)
	id, _ := completeDocument(t, ws, 1)

	recorder := httptest.NewRecorder()
	handler.Describe(recorder, docRequest("POST", "/", id, nil, photoParams(1)))
	assertStatusCode(t, recorder, http.StatusServiceUnavailable)
}

func TestPhotosHandler_Describe(t *testing.T) {
	d := &fakeDescriber{text: "Column formwork being stripped in Hall B."}
	handler, ws := newPhotosHandler(d)
	id, doc := completeDocument(t, ws, 1)
	entryID := doc.Entries()[0].ID

	t.Run("draft only", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		handler.Describe(recorder, docRequest("POST", "/", id, nil, photoParams(entryID)))
		assertStatusCode(t, recorder, http.StatusOK)

		var resp describeResponse
		parseJSONResponse(t, recorder, &resp)
		if resp.Description != d.text || resp.Applied || resp.Model != "fake-vision" {
			t.Errorf("unexpected response %+v", resp)
		}
		if d.last.ProjectName != "Tram Depot" || d.last.Location != "Hall B" {
			t.Errorf("unexpected photo context %+v", d.last)
		}
		if e, _ := doc.Entries().Get(entryID); e.Description != "Column formwork" {
			t.Errorf("description should be untouched, got %q", e.Description)
		}
	})

	t.Run("apply", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		body := jsonBody(t, map[string]any{"apply": true, "notes": "formwork"})
		handler.Describe(recorder, docRequest("POST", "/", id, body, photoParams(entryID)))
		assertStatusCode(t, recorder, http.StatusOK)

		if e, _ := doc.Entries().Get(entryID); e.Description != d.text {
			t.Errorf("expected description applied, got %q", e.Description)
		}
		if d.last.Notes != "formwork" {
			t.Errorf("expected notes to reach the provider, got %q", d.last.Notes)
		}
	})

	t.Run("provider error", func(t *testing.T) {
		d.err = errors.New("quota exceeded")
		defer func() { d.err = nil }()
		recorder := httptest.NewRecorder()
		handler.Describe(recorder, docRequest("POST", "/", id, nil, photoParams(entryID)))
		assertStatusCode(t, recorder, http.StatusBadGateway)
	})
}

func TestPhotosHandler_DescribeNoImage(t *testing.T) {
	handler, ws := newPhotosHandler(&fakeDescriber{text: "x"})
	id, doc := ws.Create()
	e, _ := doc.AddEntry()

	recorder := httptest.NewRecorder()
	handler.Describe(recorder, docRequest("POST", "/", id, nil, photoParams(e.ID)))
	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, "photo has no image")
}

func TestPhotosHandler_UnknownDocument(t *testing.T) {
	handler, _ := newPhotosHandler(nil)

	recorder := httptest.NewRecorder()
	handler.Add(recorder, docRequest("POST", "/", uuid.New(), nil, nil))
	assertStatusCode(t, recorder, http.StatusNotFound)
}
