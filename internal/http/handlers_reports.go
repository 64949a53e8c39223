package http

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"controlly/internal/core"
	"controlly/internal/ledger"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Reports.Dashboard(r.Context()))
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	defStart, defEnd := s.svc.Reports.DefaultPeriod()
	start, end, err := ParsePeriod(r.URL.Query(), defStart, defEnd)
	if err != nil {
		writeError(w, r, err)
		return
	}
	rep, err := s.svc.Reports.Report(r.Context(), start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// handleDistribution splits income by a preset rule, or by
// ?rule=custom&essentials=&wants=&savings=. ?income= overrides the
// recorded income total.
func (s *Server) handleDistribution(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rule, err := ruleFromQuery(q)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var income *core.Money
	if v := strings.TrimSpace(q.Get("income")); v != "" {
		m, err := core.ParseMoney(v)
		if err != nil {
			writeError(w, r, core.Invalid("income", err))
			return
		}
		income = &m
	}

	d, err := s.svc.Reports.Distribution(r.Context(), rule, income)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func ruleFromQuery(q url.Values) (ledger.Rule, error) {
	name := strings.ToLower(strings.TrimSpace(q.Get("rule")))
	if name != "custom" {
		rule, ok := ledger.PresetRule(name)
		if !ok {
			return ledger.Rule{}, core.Invalid("rule", core.ErrInvalidRule)
		}
		return rule, nil
	}

	rule := ledger.Rule{Name: "custom"}
	parts := []struct {
		key string
		dst *int
	}{
		{"essentials", &rule.Essentials},
		{"wants", &rule.Wants},
		{"savings", &rule.Savings},
	}
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(q.Get(p.key)))
		if err != nil {
			return ledger.Rule{}, core.Invalid(p.key, core.ErrInvalidRule)
		}
		*p.dst = n
	}
	return rule, rule.Validate()
}
