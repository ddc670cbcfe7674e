package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jbonatakis/mockingbird/internal/engine"
	"github.com/jbonatakis/mockingbird/internal/mockup"
)

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newSessionView(s.session.Snapshot()))
}

func (s *Server) setMode(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Mode string `json:"mode"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	mode, err := mockup.ParseMode(body.Mode)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := s.session.SetMode(mode); err != nil {
		writeError(w, err)
		return
	}
	s.getSession(w, r)
}

func (s *Server) setInput(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Field string `json:"field"`
		Value string `json:"value"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	field, err := mockup.ParseField(body.Field)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := s.session.SetInput(field, body.Value); err != nil {
		badRequest(w, err.Error())
		return
	}
	s.getSession(w, r)
}

func (s *Server) setScreenshots(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Screenshots []mockup.Image `json:"screenshots"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if err := s.session.SetScreenshots(body.Screenshots); err != nil {
		writeError(w, err)
		return
	}
	s.getSession(w, r)
}

// startRun begins a run for the current form. With ?wait=true the response
// is held until the run settles.
func (s *Server) startRun(w http.ResponseWriter, r *http.Request) {
	handle, err := s.session.StartRun()
	if err != nil {
		writeError(w, err)
		return
	}
	wait, _ := strconv.ParseBool(r.URL.Query().Get("wait"))
	if !wait {
		writeJSON(w, http.StatusAccepted, map[string]uint64{"runId": handle.ID})
		return
	}
	if err := handle.Wait(r.Context()); err != nil {
		return
	}
	s.getSession(w, r)
}

func (s *Server) listHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newHistoryItems(s.session.Snapshot().History))
}

func (s *Server) getHistoryEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	entry, ok := s.session.Snapshot().History.Find(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "history entry not found"})
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) clearHistory(w http.ResponseWriter, r *http.Request) {
	s.session.ClearHistory(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) restoreEntry(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Restore(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	s.getSession(w, r)
}

func (s *Server) listTemplates(w http.ResponseWriter, r *http.Request) {
	snap := s.session.Snapshot()
	out := make([]templateView, 0, len(snap.Templates))
	for _, t := range snap.Templates {
		out = append(out, newTemplateView(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) generateTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	html, err := s.session.GenerateTemplate(r.Context(), id)
	if errors.Is(err, engine.ErrTemplateNotFound) {
		writeError(w, err)
		return
	}
	if err != nil {
		writeJSON(w, http.StatusBadGateway, errorBody{Error: "Failed to generate template."})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "html": html})
}

func (s *Server) useTemplate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Target string `json:"target"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	target, err := mockup.ParseTemplateTarget(body.Target)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := s.session.UseTemplate(chi.URLParam(r, "id"), target); err != nil {
		writeError(w, err)
		return
	}
	s.getSession(w, r)
}
