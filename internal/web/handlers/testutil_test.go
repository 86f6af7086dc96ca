package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kozaktomas/photolog/internal/describe"
	"github.com/kozaktomas/photolog/internal/export"
	"github.com/kozaktomas/photolog/internal/imaging"
	"github.com/kozaktomas/photolog/internal/layout"
	"github.com/kozaktomas/photolog/internal/photolog"
	"github.com/kozaktomas/photolog/internal/render"
)

// quietLogger discards handler log output
func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

// testExporter creates an exporter with the default layout and style
func testExporter() *export.Exporter {
	return export.New(layout.DefaultConfig(), render.DefaultStyle(), quietLogger())
}

// requestWithChiParams creates a request with chi URL parameters
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// docRequest creates a request addressed to an open document
func docRequest(method, path string, id uuid.UUID, body io.Reader, extra map[string]string) *http.Request {
	params := map[string]string{"id": id.String()}
	for k, v := range extra {
		params[k] = v
	}
	return requestWithChiParams(httptest.NewRequest(method, path, body), params)
}

// jsonBody encodes v as a request body
func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to encode body: %v", err)
	}
	return bytes.NewReader(data)
}

// testJPEG encodes a solid w x h JPEG
func testJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		for y := range h {
			img.Set(x, y, color.RGBA{R: 120, G: 140, B: 160, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80}); err != nil {
		t.Fatalf("failed to encode jpeg: %v", err)
	}
	return buf.Bytes()
}

// multipartFile builds a multipart body with one "file" part
func multipartFile(t *testing.T, name string, data []byte) (io.Reader, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	part.Write(data)
	writer.Close()
	return body, writer.FormDataContentType()
}

// completeDocument opens a document that passes validation
func completeDocument(t *testing.T, ws *Workspace, photos int) (uuid.UUID, *photolog.Document) {
	t.Helper()
	id, doc := ws.Create()
	if err := doc.SetHeader(photolog.HeaderRecord{
		Proponent:     "City of Brno",
		ProjectName:   "Tram Depot",
		Location:      "Brno",
		Date:          "2026-05-02",
		ProjectNumber: "TD-7",
	}); err != nil {
		t.Fatalf("SetHeader: %v", err)
	}
	imageURL := imaging.EncodeDataURL("image/jpeg", testJPEG(t, 120, 90))
	for range photos {
		e, err := doc.AddEntry()
		if err != nil {
			t.Fatalf("AddEntry: %v", err)
		}
		date, loc, desc := "2026-05-02", "Hall B", "Column formwork"
		if _, err := doc.UpdateEntry(e.ID, photolog.EntryUpdate{Date: &date, Location: &loc, Description: &desc}); err != nil {
			t.Fatalf("UpdateEntry: %v", err)
		}
		if err := doc.SetImage(e.ID, imageURL); err != nil {
			t.Fatalf("SetImage: %v", err)
		}
	}
	return id, doc
}

// fakeDescriber answers every request with a fixed description
type fakeDescriber struct {
	text  string
	err   error
	calls int
	last  *describe.PhotoContext
}

func (f *fakeDescriber) Name() string { return "fake-vision" }

func (f *fakeDescriber) Describe(ctx context.Context, imageData []byte, pc *describe.PhotoContext) (*describe.Description, error) {
	f.calls++
	f.last = pc
	if f.err != nil {
		return nil, f.err
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(imageData)); err != nil {
		return nil, err
	}
	return &describe.Description{Description: f.text}, nil
}

func (f *fakeDescriber) GetUsage() describe.Usage {
	return describe.Usage{InputTokens: 10 * f.calls, OutputTokens: 5 * f.calls}
}

func (f *fakeDescriber) ResetUsage() {}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%v'", expectedMessage, result["error"])
	}
}
