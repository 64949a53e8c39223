package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"

	"controlly/internal/cache"
	"controlly/internal/cards"
	"controlly/internal/core"
	"controlly/internal/ledger"
	"controlly/internal/log"
)

// RecentCount is how many transactions the dashboard lists.
const RecentCount = 5

type Dashboard struct {
	Date       core.Date              `json:"date"`
	Summary    ledger.Summary         `json:"summary"`
	Categories []ledger.CategoryTotal `json:"categories"`
	Months     []ledger.MonthTotals   `json:"months"`
	Recent     []core.Transaction     `json:"recent"`
	Cards      []cards.Usage          `json:"cards"`
	Goals      []GoalView             `json:"goals"`
}

type Report struct {
	Start      core.Date              `json:"start"`
	End        core.Date              `json:"end"`
	Summary    ledger.Summary         `json:"summary"`
	Categories []ledger.CategoryTotal `json:"categories"`
	Months     []ledger.MonthTotals   `json:"months"`
}

// ReportService computes dashboard and report figures. Results are cached
// per slot revision, so any write, including one from another process on
// the same backend, makes the next read recompute.
type ReportService struct {
	txs   *TransactionService
	cards *CardService
	goals *GoalService
	clock Clock

	dashboards *cache.LRUCache[Dashboard]
	reports    *cache.LRUCache[Report]
	group      singleflight.Group
	logger     *log.Logger
}

func NewReportService(txs *TransactionService, cardSvc *CardService, goalSvc *GoalService, dashboards *cache.LRUCache[Dashboard], reports *cache.LRUCache[Report], logger *log.Logger, clock Clock) *ReportService {
	if logger == nil {
		logger = log.Nop()
	}
	if clock == nil {
		clock = Options{}.withDefaults().Clock
	}
	return &ReportService{
		txs:        txs,
		cards:      cardSvc,
		goals:      goalSvc,
		clock:      clock,
		dashboards: dashboards,
		reports:    reports,
		logger:     logger.WithComponent(log.ComponentReports),
	}
}

// revisionKey changes whenever any slot's contents change, whichever
// process wrote them.
func (s *ReportService) revisionKey(ctx context.Context) string {
	return fmt.Sprintf("t%s.c%s.g%s", s.txs.Revision(ctx), s.cards.Revision(ctx), s.goals.Revision(ctx))
}

// Dashboard returns the overview for today.
func (s *ReportService) Dashboard(ctx context.Context) Dashboard {
	today := core.DateOf(s.clock())
	key := "dashboard:" + today.String() + ":" + s.revisionKey(ctx)
	if d, ok := s.dashboards.Get(key); ok {
		return d
	}
	v, _, _ := s.group.Do(key, func() (any, error) {
		d := s.buildDashboard(ctx, today)
		s.dashboards.Set(key, d)
		return d, nil
	})
	return v.(Dashboard)
}

func (s *ReportService) buildDashboard(ctx context.Context, today core.Date) Dashboard {
	txs := s.txs.List(ctx)
	goalList := s.goals.List(ctx)
	views := make([]GoalView, 0, len(goalList))
	for _, g := range goalList {
		views = append(views, s.goals.View(g))
	}
	s.logger.DebugContext(ctx, "Dashboard computed", log.FieldCount, len(txs))
	return Dashboard{
		Date:       today,
		Summary:    ledger.Summarize(txs),
		Categories: ledger.CategoryTotals(txs),
		Months:     ledger.MonthlyRollup(txs, today, ledger.DashboardMonths),
		Recent:     ledger.Recent(txs, RecentCount),
		Cards:      s.cards.UsageAll(ctx, today),
		Goals:      views,
	}
}

// DefaultPeriod is the first of the current month through today.
func (s *ReportService) DefaultPeriod() (core.Date, core.Date) {
	today := core.DateOf(s.clock())
	start, _ := ledger.MonthBounds(today)
	return start, today
}

// Report summarizes the transactions dated within [start, end].
func (s *ReportService) Report(ctx context.Context, start, end core.Date) (Report, error) {
	if end.Compare(start) < 0 {
		return Report{}, core.Invalid("end", core.ErrInvalidDate)
	}
	key := "report:" + start.String() + ":" + end.String() + ":" + s.revisionKey(ctx)
	if r, ok := s.reports.Get(key); ok {
		return r, nil
	}
	v, _, _ := s.group.Do(key, func() (any, error) {
		txs := s.txs.ListByPeriod(ctx, start, end)
		r := Report{
			Start:      start,
			End:        end,
			Summary:    ledger.Summarize(txs),
			Categories: ledger.CategoryTotals(txs),
			Months:     ledger.GroupByMonth(txs),
		}
		s.reports.Set(key, r)
		return r, nil
	})
	return v.(Report), nil
}

// Distribution splits income by rule and sets the recorded figures beside
// it. Without an explicit income the total recorded income is used.
func (s *ReportService) Distribution(ctx context.Context, rule ledger.Rule, income *core.Money) (ledger.Distribution, error) {
	txs := s.txs.List(ctx)
	actual := ledger.ActualSpending(txs)
	base := actual.Income
	if income != nil {
		base = *income
	}
	d, err := ledger.Distribute(base, rule)
	if err != nil {
		return ledger.Distribution{}, err
	}
	d.Actual = actual
	return d, nil
}

// CacheStats reports the dashboard and report cache counters.
func (s *ReportService) CacheStats() map[string]cache.Stats {
	return map[string]cache.Stats{
		"dashboard": s.dashboards.Stats(),
		"report":    s.reports.Stats(),
	}
}
