package http

import (
	"bytes"
	"net/http"

	"controlly/internal/core"
	"controlly/internal/ledger"
)

// transactionsInPeriod returns every transaction, or only those inside
// ?start=&end= when either bound is given.
func (s *Server) transactionsInPeriod(r *http.Request) ([]core.Transaction, error) {
	q := r.URL.Query()
	if q.Get("start") == "" && q.Get("end") == "" {
		return s.svc.Transactions.List(r.Context()), nil
	}
	defStart, defEnd := s.svc.Reports.DefaultPeriod()
	start, end, err := ParsePeriod(q, defStart, defEnd)
	if err != nil {
		return nil, err
	}
	return s.svc.Transactions.ListByPeriod(r.Context(), start, end), nil
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.transactionsInPeriod(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleExportTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.transactionsInPeriod(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := ledger.WriteCSV(&buf, txs); err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	t, err := s.svc.Transactions.Get(r.Context(), pathID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	p, err := decodeBody(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	in, err := p.TransactionInput()
	if err != nil {
		writeError(w, r, err)
		return
	}
	t, err := s.svc.Transactions.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	p, err := decodeBody(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	in, err := p.TransactionInput()
	if err != nil {
		writeError(w, r, err)
		return
	}
	t, err := s.svc.Transactions.Update(r.Context(), pathID(r), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Transactions.Delete(r.Context(), pathID(r)); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
