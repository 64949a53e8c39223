package http

import "net/http"

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Cards.List(r.Context()))
}

func (s *Server) handleGetCard(w http.ResponseWriter, r *http.Request) {
	c, err := s.svc.Cards.Get(r.Context(), pathID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	p, err := decodeBody(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	in, err := p.CardInput()
	if err != nil {
		writeError(w, r, err)
		return
	}
	c, err := s.svc.Cards.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleUpdateCard(w http.ResponseWriter, r *http.Request) {
	p, err := decodeBody(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	in, err := p.CardInput()
	if err != nil {
		writeError(w, r, err)
		return
	}
	c, err := s.svc.Cards.Update(r.Context(), pathID(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// handleDeleteCard removes the card only; transactions keep their cardId.
func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Cards.Delete(r.Context(), pathID(r)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCardUsage(w http.ResponseWriter, r *http.Request) {
	ref, err := s.refDate(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	u, err := s.svc.Cards.Usage(r.Context(), pathID(r), ref)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleCardTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.svc.Cards.Transactions(r.Context(), pathID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}
