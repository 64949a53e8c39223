package http

import (
	"net/http"

	"controlly/internal/services"
)

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	list := s.svc.Goals.List(r.Context())
	views := make([]services.GoalView, 0, len(list))
	for _, g := range list {
		views = append(views, s.svc.Goals.View(g))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	g, err := s.svc.Goals.Get(r.Context(), pathID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	p, err := decodeBody(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	g, err := s.svc.Goals.Create(r.Context(), p.GoalInput())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.svc.Goals.View(g))
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	p, err := decodeBody(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	g, err := s.svc.Goals.Update(r.Context(), pathID(r), p.GoalInput())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Goals.View(g))
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Goals.Delete(r.Context(), pathID(r)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGoalProgress(w http.ResponseWriter, r *http.Request) {
	v, err := s.svc.Goals.Progress(r.Context(), pathID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// handleAddGoalProgress answers 409 with the overshoot details when the
// amount passes the target and confirm is not set.
func (s *Server) handleAddGoalProgress(w http.ResponseWriter, r *http.Request) {
	p, err := decodeBody(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	amount, confirm, err := p.ProgressInput()
	if err != nil {
		writeError(w, r, err)
		return
	}
	g, err := s.svc.Goals.AddProgress(r.Context(), pathID(r), amount, confirm)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Goals.View(g))
}
