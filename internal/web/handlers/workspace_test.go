package handlers

import (
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/kozaktomas/photolog/internal/photolog"
)

func TestWorkspace(t *testing.T) {
	ws := NewWorkspace()
	idB, docB := ws.Create()
	docB.SetHeader(photolog.HeaderRecord{ProjectName: "Bypass"})
	idA, docA := ws.Create()
	docA.SetHeader(photolog.HeaderRecord{ProjectName: "Abutment"})
	docA.AddEntry()

	list := ws.List()
	if len(list) != 2 || list[0].ID != idA || list[1].ID != idB {
		t.Fatalf("expected name order, got %+v", list)
	}
	if list[0].PhotoCount != 1 {
		t.Errorf("expected 1 photo, got %d", list[0].PhotoCount)
	}

	if !ws.Close(idA) || ws.Close(idA) {
		t.Error("Close should succeed once")
	}
	if _, ok := ws.Get(idA); ok {
		t.Error("closed document still open")
	}
	if _, ok := ws.Get(uuid.New()); ok {
		t.Error("unknown id should not resolve")
	}
}

func TestWorkspace_Concurrent(t *testing.T) {
	ws := NewWorkspace()
	var wg sync.WaitGroup
	for range 20 {
		wg.Go(func() {
			id, doc := ws.Create()
			doc.AddEntry()
			ws.List()
			ws.Close(id)
		})
	}
	wg.Wait()
	if n := len(ws.List()); n != 0 {
		t.Errorf("expected empty workspace, got %d", n)
	}
}
