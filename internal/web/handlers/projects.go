package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/kozaktomas/photolog/internal/database"
	"github.com/kozaktomas/photolog/internal/export"
	"github.com/kozaktomas/photolog/internal/photolog"
	"github.com/kozaktomas/photolog/internal/render"
)

// ProjectsHandler handles document, validation, export and storage endpoints
type ProjectsHandler struct {
	workspace *Workspace
	exporter  *export.Exporter
	logger    *log.Logger
}

// NewProjectsHandler creates a new projects handler
func NewProjectsHandler(ws *Workspace, exp *export.Exporter, logger *log.Logger) *ProjectsHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &ProjectsHandler{workspace: ws, exporter: exp, logger: logger}
}

type projectResponse struct {
	ID string `json:"id"`
	*photolog.Project
}

// List returns the open documents
func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.workspace.List())
}

// Create opens a new document. A non-empty body is parsed as a project file.
func (h *ProjectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, ok := readProject(w, r, true)
	if !ok {
		return
	}
	id, doc := h.workspace.Create()
	if p != nil {
		if err := doc.Replace(p); err != nil {
			respondDocumentError(w, err)
			return
		}
	}
	respondJSON(w, http.StatusCreated, projectResponse{ID: id.String(), Project: doc.Snapshot()})
}

// Get returns the document snapshot
func (h *ProjectsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, doc, ok := h.workspace.document(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, projectResponse{ID: id.String(), Project: doc.Snapshot()})
}

// Replace swaps the document state for the project in the body
func (h *ProjectsHandler) Replace(w http.ResponseWriter, r *http.Request) {
	id, doc, ok := h.workspace.document(w, r)
	if !ok {
		return
	}
	p, ok := readProject(w, r, false)
	if !ok {
		return
	}
	if err := doc.Replace(p); err != nil {
		respondDocumentError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, projectResponse{ID: id.String(), Project: doc.Snapshot()})
}

// Close removes the document from the workspace
func (h *ProjectsHandler) Close(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	if !h.workspace.Close(id) {
		respondError(w, http.StatusNotFound, "project not open")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateHeader replaces the header record
func (h *ProjectsHandler) UpdateHeader(w http.ResponseWriter, r *http.Request) {
	_, doc, ok := h.workspace.document(w, r)
	if !ok {
		return
	}
	var header photolog.HeaderRecord
	if !decodeJSON(w, r, &header) {
		return
	}
	if err := doc.SetHeader(header); err != nil {
		respondDocumentError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, doc.Header())
}

type validateResponse struct {
	Valid  bool                      `json:"valid"`
	Errors photolog.ValidationErrors `json:"errors"`
}

// Validate reports the missing required fields
func (h *ProjectsHandler) Validate(w http.ResponseWriter, r *http.Request) {
	_, doc, ok := h.workspace.document(w, r)
	if !ok {
		return
	}
	v := doc.Validate()
	respondJSON(w, http.StatusOK, validateResponse{Valid: v.Empty(), Errors: v})
}

// Export renders the document and streams the PDF
func (h *ProjectsHandler) Export(w http.ResponseWriter, r *http.Request) {
	id, doc, ok := h.workspace.document(w, r)
	if !ok {
		return
	}

	res, err := h.exporter.Export(r.Context(), doc)
	if err != nil {
		var verr *photolog.ValidationError
		var perr *render.PageError
		switch {
		case errors.As(err, &verr):
			respondJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error":  verr.Error(),
				"fields": verr.Errors,
			})
		case errors.Is(err, photolog.ErrExportInProgress):
			respondError(w, http.StatusConflict, err.Error())
		case errors.As(err, &perr):
			h.logger.Error("export failed", "project", id, "page", perr.Page, "err", perr.Err)
			respondError(w, http.StatusInternalServerError, perr.Error())
		default:
			h.logger.Error("export failed", "project", id, "err", err)
			respondError(w, http.StatusInternalServerError, "export failed")
		}
		return
	}

	for _, warning := range res.Report.Warnings {
		h.logger.Warn("export warning", "project", id, "warning", sanitizeForLog(warning))
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(res.PDF)))
	w.Header().Set("X-Photolog-Pages", strconv.Itoa(res.Report.PageCount))
	w.Header().Set("X-Photolog-Warnings", strconv.Itoa(len(res.Report.Warnings)))
	w.WriteHeader(http.StatusOK)
	w.Write(res.PDF)
}

func projectStore(w http.ResponseWriter, r *http.Request) database.ProjectWriter {
	store, err := database.GetProjectStore(r.Context())
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "project storage not available")
		return nil
	}
	return store
}

// Save writes the document to the project store under its workspace id
func (h *ProjectsHandler) Save(w http.ResponseWriter, r *http.Request) {
	id, doc, ok := h.workspace.document(w, r)
	if !ok {
		return
	}
	store := projectStore(w, r)
	if store == nil {
		return
	}

	sp, err := database.NewStoredProject(id, doc.Snapshot())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := store.Save(r.Context(), sp); err != nil {
		h.logger.Error("save project", "project", id, "err", err)
		respondError(w, http.StatusInternalServerError, "failed to save project")
		return
	}
	respondJSON(w, http.StatusOK, sp.Summary())
}

// ListStored returns the saved projects, optionally only those at the
// ?location= header location. X-Photolog-Stored-Total carries the unfiltered count.
func (h *ProjectsHandler) ListStored(w http.ResponseWriter, r *http.Request) {
	store := projectStore(w, r)
	if store == nil {
		return
	}
	filter := database.ListFilter{Location: r.URL.Query().Get("location")}
	list, err := store.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list projects", "err", err)
		respondError(w, http.StatusInternalServerError, "failed to list projects")
		return
	}
	total, err := store.Count(r.Context())
	if err != nil {
		h.logger.Error("count projects", "err", err)
		respondError(w, http.StatusInternalServerError, "failed to count projects")
		return
	}
	w.Header().Set("X-Photolog-Stored-Total", strconv.Itoa(total))
	respondJSON(w, http.StatusOK, list)
}

// Open loads a saved project into the workspace under its stored id
func (h *ProjectsHandler) Open(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	store := projectStore(w, r)
	if store == nil {
		return
	}

	sp, err := store.Get(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		h.logger.Error("open project", "project", id, "err", err)
		respondError(w, http.StatusInternalServerError, "failed to load project")
		return
	}
	p, err := sp.Project()
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if doc, open := h.workspace.Get(id); open {
		if err := doc.Replace(p); err != nil {
			respondDocumentError(w, err)
			return
		}
	} else {
		h.workspace.Put(id, photolog.NewDocumentFromProject(p))
	}
	doc, _ := h.workspace.Get(id)
	respondJSON(w, http.StatusOK, projectResponse{ID: id.String(), Project: doc.Snapshot()})
}

// DeleteStored removes a saved project
func (h *ProjectsHandler) DeleteStored(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	store := projectStore(w, r)
	if store == nil {
		return
	}
	if err := store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		h.logger.Error("delete project", "project", id, "err", err)
		respondError(w, http.StatusInternalServerError, "failed to delete project")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// readProject parses a project file body. With allowEmpty an empty body
// yields nil.
func readProject(w http.ResponseWriter, r *http.Request, allowEmpty bool) (*photolog.Project, bool) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadSize))
	if err != nil {
		respondError(w, http.StatusRequestEntityTooLarge, "project too large")
		return nil, false
	}
	if len(data) == 0 {
		if allowEmpty {
			return nil, true
		}
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return nil, false
	}
	p, err := photolog.ParseProject(data)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return p, true
}
