package handlers

import (
	"net/http"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/kozaktomas/photolog/internal/photolog"
)

// Workspace holds the documents open in this server process.
type Workspace struct {
	mu   sync.RWMutex
	docs map[uuid.UUID]*photolog.Document
}

// NewWorkspace returns an empty workspace.
func NewWorkspace() *Workspace {
	return &Workspace{docs: make(map[uuid.UUID]*photolog.Document)}
}

// Create opens a new empty document and returns its id.
func (ws *Workspace) Create() (uuid.UUID, *photolog.Document) {
	id := uuid.New()
	doc := photolog.NewDocument()
	ws.Put(id, doc)
	return id, doc
}

// Put stores doc under id, replacing any document already there.
func (ws *Workspace) Put(id uuid.UUID, doc *photolog.Document) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.docs[id] = doc
}

// Get returns the document with the given id.
func (ws *Workspace) Get(id uuid.UUID) (*photolog.Document, bool) {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	doc, ok := ws.docs[id]
	return doc, ok
}

// Close removes a document. It reports whether the id was open.
func (ws *Workspace) Close(id uuid.UUID) bool {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if _, ok := ws.docs[id]; !ok {
		return false
	}
	delete(ws.docs, id)
	return true
}

// OpenDocument is the list view of a workspace document.
type OpenDocument struct {
	ID          uuid.UUID `json:"id"`
	ProjectName string    `json:"projectName"`
	PhotoCount  int       `json:"photoCount"`
	Exporting   bool      `json:"exporting"`
}

// List returns the open documents ordered by project name, then id.
func (ws *Workspace) List() []OpenDocument {
	ws.mu.RLock()
	out := make([]OpenDocument, 0, len(ws.docs))
	for id, doc := range ws.docs {
		out = append(out, OpenDocument{
			ID:          id,
			ProjectName: doc.Header().ProjectName,
			PhotoCount:  len(doc.Entries()),
			Exporting:   doc.Exporting(),
		})
	}
	ws.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].ProjectName != out[j].ProjectName {
			return out[i].ProjectName < out[j].ProjectName
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

// document resolves the {id} URL parameter, writing 400 or 404 on failure.
func (ws *Workspace) document(w http.ResponseWriter, r *http.Request) (uuid.UUID, *photolog.Document, bool) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return uuid.Nil, nil, false
	}
	doc, ok := ws.Get(id)
	if !ok {
		respondError(w, http.StatusNotFound, "project not open")
		return uuid.Nil, nil, false
	}
	return id, doc, true
}
