package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/charmbracelet/log"

	"github.com/kozaktomas/photolog/internal/describe"
	"github.com/kozaktomas/photolog/internal/imaging"
	"github.com/kozaktomas/photolog/internal/photolog"
)

// PhotosHandler handles photo entry endpoints of an open document
type PhotosHandler struct {
	workspace *Workspace
	imageOpts imaging.Options
	describer describe.Provider
	logger    *log.Logger
}

// NewPhotosHandler creates a new photos handler. A nil describer disables
// the describe endpoint.
func NewPhotosHandler(ws *Workspace, opts imaging.Options, describer describe.Provider, logger *log.Logger) *PhotosHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &PhotosHandler{workspace: ws, imageOpts: opts, describer: describer, logger: logger}
}

// Add appends an empty entry
func (h *PhotosHandler) Add(w http.ResponseWriter, r *http.Request) {
	_, doc, ok := h.workspace.document(w, r)
	if !ok {
		return
	}
	e, err := doc.AddEntry()
	if err != nil {
		respondDocumentError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, e)
}

// Update edits the date, location or description of an entry
func (h *PhotosHandler) Update(w http.ResponseWriter, r *http.Request) {
	_, doc, ok := h.workspace.document(w, r)
	if !ok {
		return
	}
	photoID, ok := photoIDParam(w, r)
	if !ok {
		return
	}
	var u photolog.EntryUpdate
	if !decodeJSON(w, r, &u) {
		return
	}
	e, err := doc.UpdateEntry(photoID, u)
	if err != nil {
		respondDocumentError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, e)
}

// Delete removes an entry and renumbers the rest
func (h *PhotosHandler) Delete(w http.ResponseWriter, r *http.Request) {
	_, doc, ok := h.workspace.document(w, r)
	if !ok {
		return
	}
	photoID, ok := photoIDParam(w, r)
	if !ok {
		return
	}
	if _, found := doc.Entries().Get(photoID); !found {
		respondError(w, http.StatusNotFound, photolog.ErrEntryNotFound.Error())
		return
	}
	if err := doc.RemoveEntry(photoID); err != nil {
		respondDocumentError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, doc.Entries())
}

type moveRequest struct {
	Direction string `json:"direction"`
}

// Move shifts an entry one position up or down. Moves past either end are
// no-ops.
func (h *PhotosHandler) Move(w http.ResponseWriter, r *http.Request) {
	_, doc, ok := h.workspace.document(w, r)
	if !ok {
		return
	}
	photoID, ok := photoIDParam(w, r)
	if !ok {
		return
	}
	var req moveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	dir, err := photolog.ParseDirection(req.Direction)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, found := doc.Entries().Get(photoID); !found {
		respondError(w, http.StatusNotFound, photolog.ErrEntryNotFound.Error())
		return
	}
	if err := doc.MoveEntry(photoID, dir); err != nil {
		respondDocumentError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, doc.Entries())
}

type uploadResponse struct {
	Entry        photolog.PhotoEntry `json:"entry"`
	Width        int                 `json:"width"`
	Height       int                 `json:"height"`
	SourceWidth  int                 `json:"sourceWidth"`
	SourceHeight int                 `json:"sourceHeight"`
	Mode         imaging.Mode        `json:"mode"`
}

// UploadImage normalizes the uploaded "file" and attaches it to the entry
func (h *PhotosHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	_, doc, ok := h.workspace.document(w, r)
	if !ok {
		return
	}
	photoID, ok := photoIDParam(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read file")
		return
	}

	res, err := imaging.Normalize(data, h.imageOpts)
	if errors.Is(err, imaging.ErrUnsupportedType) {
		respondError(w, http.StatusUnsupportedMediaType, err.Error())
		return
	}
	if err != nil {
		h.logger.Warn("image normalization failed", "file", sanitizeForLog(header.Filename), "err", err)
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := doc.SetImage(photoID, res.DataURL()); err != nil {
		respondDocumentError(w, err)
		return
	}
	e, _ := doc.Entries().Get(photoID)
	respondJSON(w, http.StatusOK, uploadResponse{
		Entry:        e,
		Width:        res.Width,
		Height:       res.Height,
		SourceWidth:  res.SourceWidth,
		SourceHeight: res.SourceHeight,
		Mode:         res.Mode,
	})
}

type describeRequest struct {
	Apply bool   `json:"apply"`
	Notes string `json:"notes"`
}

type describeResponse struct {
	Description string               `json:"description"`
	Applied     bool                 `json:"applied"`
	Model       string               `json:"model"`
	Usage       describe.Usage       `json:"usage"`
	Entry       *photolog.PhotoEntry `json:"entry,omitempty"`
}

// Describe drafts a description for the entry's image. With apply the draft
// replaces the entry's description.
func (h *PhotosHandler) Describe(w http.ResponseWriter, r *http.Request) {
	if h.describer == nil {
		respondError(w, http.StatusServiceUnavailable, describe.ErrNoProvider.Error())
		return
	}
	_, doc, ok := h.workspace.document(w, r)
	if !ok {
		return
	}
	photoID, ok := photoIDParam(w, r)
	if !ok {
		return
	}

	var req describeRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	e, found := doc.Entries().Get(photoID)
	if !found {
		respondError(w, http.StatusNotFound, photolog.ErrEntryNotFound.Error())
		return
	}
	if !e.HasImage() {
		respondError(w, http.StatusBadRequest, "photo has no image")
		return
	}
	_, data, err := imaging.DecodeDataURL(e.ImageURL)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	d, err := h.describer.Describe(r.Context(), data, &describe.PhotoContext{
		ProjectName: doc.Header().ProjectName,
		Date:        e.Date,
		Location:    e.Location,
		Notes:       req.Notes,
	})
	if err != nil {
		h.logger.Error("describe failed", "photo", photoID, "err", err)
		respondError(w, http.StatusBadGateway, err.Error())
		return
	}

	resp := describeResponse{
		Description: d.Description,
		Model:       h.describer.Name(),
		Usage:       h.describer.GetUsage(),
	}
	if req.Apply {
		updated, err := doc.UpdateEntry(photoID, photolog.EntryUpdate{Description: &d.Description})
		if err != nil {
			respondDocumentError(w, err)
			return
		}
		resp.Applied = true
		resp.Entry = &updated
	}
	respondJSON(w, http.StatusOK, resp)
}
