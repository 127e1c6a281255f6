package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tomasz-trela/catermetrics/internal/clock"
	"github.com/tomasz-trela/catermetrics/internal/config"
	cookscoredomain "github.com/tomasz-trela/catermetrics/internal/cookscore/domain"
	coursestatsdomain "github.com/tomasz-trela/catermetrics/internal/coursestats/domain"
	deliverystatsdomain "github.com/tomasz-trela/catermetrics/internal/deliverystats/domain"
	"github.com/tomasz-trela/catermetrics/internal/diag"
	forecastdomain "github.com/tomasz-trela/catermetrics/internal/forecast/domain"
	"github.com/tomasz-trela/catermetrics/internal/observability/metrics"
	pairingdomain "github.com/tomasz-trela/catermetrics/internal/pairing/domain"
	reconciledomain "github.com/tomasz-trela/catermetrics/internal/reconcile/domain"
	recordstoredomain "github.com/tomasz-trela/catermetrics/internal/recordstore/domain"
	rfmdomain "github.com/tomasz-trela/catermetrics/internal/rfm/domain"
)

// BatchReport is one full engine run. Degraded marks a run cut short by
// the caller's deadline; reports computed before the cut are kept.
type BatchReport struct {
	GeneratedAt time.Time                  `json:"generated_at"`
	Degraded    bool                       `json:"degraded"`
	Reconciled  reconciledomain.Report     `json:"reconciliation"`
	RFM         rfmdomain.Report           `json:"rfm"`
	Cooks       cookscoredomain.Report     `json:"cooks"`
	Pairings    pairingdomain.Report       `json:"pairings"`
	Forecast    forecastdomain.Report      `json:"forecast"`
	Courses     coursestatsdomain.Report   `json:"courses"`
	Deliveries  deliverystatsdomain.Report `json:"deliveries"`
	Diagnostics diag.List                  `json:"diagnostics"`
}

// Engine loads snapshots once and runs the analytics modules over them.
// Reconciliation runs first since RFM and Forecast consume its verified
// totals; the remaining modules share nothing and run in parallel.
type Engine struct {
	log   *zap.Logger
	clock clock.Clock
	cfg   config.Config

	store         recordstoredomain.Repository
	reconcileSvc  reconciledomain.Service
	rfmSvc        rfmdomain.Service
	cookscoreSvc  cookscoredomain.Service
	pairingSvc    pairingdomain.Service
	forecastSvc   forecastdomain.Service
	coursestats   coursestatsdomain.Service
	deliverystats deliverystatsdomain.Service
}

type Param struct {
	fx.In

	Log    *zap.Logger
	Clock  clock.Clock
	Config config.Config

	Store         recordstoredomain.Repository
	Reconcile     reconciledomain.Service
	RFM           rfmdomain.Service
	CookScore     cookscoredomain.Service
	Pairing       pairingdomain.Service
	Forecast      forecastdomain.Service
	CourseStats   coursestatsdomain.Service
	DeliveryStats deliverystatsdomain.Service
}

func New(p Param) *Engine {
	return &Engine{
		log:           p.Log.Named("engine"),
		clock:         p.Clock,
		cfg:           p.Config,
		store:         p.Store,
		reconcileSvc:  p.Reconcile,
		rfmSvc:        p.RFM,
		cookscoreSvc:  p.CookScore,
		pairingSvc:    p.Pairing,
		forecastSvc:   p.Forecast,
		coursestats:   p.CourseStats,
		deliverystats: p.DeliveryStats,
	}
}

// Run executes one batch. A context deadline bounds the run: modules that
// finished keep their reports and the batch is returned degraded instead
// of failing outright.
func (e *Engine) Run(ctx context.Context) (BatchReport, error) {
	report := BatchReport{GeneratedAt: e.clock.Now()}

	snaps, err := e.store.LoadSnapshots(ctx)
	if err != nil {
		return report, err
	}

	// Reconciliation first: downstream modules read its verified totals.
	recReport, recDiags, err := e.runReconcile(ctx, snaps)
	if err != nil {
		if isContextErr(err) {
			report.Degraded = true
			return report, nil
		}
		return report, err
	}
	report.Reconciled = recReport
	verified := recReport.VerifiedGross()

	var mu sync.Mutex
	diags := recDiags

	g, gctx := errgroup.WithContext(ctx)

	run := func(name string, fn func(context.Context) (diag.List, error)) func() error {
		return func() error {
			started := time.Now()
			extra, err := fn(gctx)
			metrics.Engine().ObserveModuleRun(name, resultLabel(err), time.Since(started))
			if err != nil {
				return err
			}
			mu.Lock()
			diags = append(diags, extra...)
			mu.Unlock()
			metrics.Engine().AddDiagnostics(name, len(extra))
			return nil
		}
	}

	g.Go(run("rfm", func(ctx context.Context) (diag.List, error) {
		out, extra, err := e.rfmSvc.Segment(ctx, snaps.UsersByRole(recordstoredomain.RoleCustomer), snaps.Orders, verified)
		if err != nil {
			return nil, err
		}
		report.RFM = out
		return extra, nil
	}))

	g.Go(run("cookscore", func(ctx context.Context) (diag.List, error) {
		out, extra, err := e.cookscoreSvc.Score(ctx, snaps.Fulfillments, snaps.Complaints, snaps.UsersByRole(recordstoredomain.RoleCook))
		if err != nil {
			return nil, err
		}
		report.Cooks = out
		return extra, nil
	}))

	g.Go(run("pairing", func(ctx context.Context) (diag.List, error) {
		out, extra, err := e.pairingSvc.TopPairs(ctx, snaps.Orders, snaps.Courses, e.cfg.PairingLimit)
		if err != nil {
			return nil, err
		}
		report.Pairings = out
		return extra, nil
	}))

	g.Go(run("forecast", func(ctx context.Context) (diag.List, error) {
		out, extra, err := e.forecastSvc.Project(ctx, snaps.Orders, snaps.Invoices, verified, e.cfg.ForecastDays)
		if err != nil {
			return nil, err
		}
		report.Forecast = out
		return extra, nil
	}))

	g.Go(run("coursestats", func(ctx context.Context) (diag.List, error) {
		out, extra, err := e.coursestats.Analyze(ctx, snaps.Orders, snaps.Complaints, snaps.Opinions, snaps.Courses)
		if err != nil {
			return nil, err
		}
		report.Courses = out
		return extra, nil
	}))

	g.Go(run("deliverystats", func(ctx context.Context) (diag.List, error) {
		out, extra, err := e.deliverystats.Profile(ctx, snaps.Deliveries, snaps.UsersByRole(recordstoredomain.RoleCourier))
		if err != nil {
			return nil, err
		}
		report.Deliveries = out
		return extra, nil
	}))

	if err := g.Wait(); err != nil {
		if isContextErr(err) {
			e.log.Warn("batch cut short by deadline, returning degraded report", zap.Error(err))
			report.Degraded = true
		} else {
			return report, err
		}
	}

	report.Diagnostics = diags
	return report, nil
}

// TopPairs runs just the co-occurrence module with a caller-chosen limit.
func (e *Engine) TopPairs(ctx context.Context, limit int) (pairingdomain.Report, error) {
	snaps, err := e.store.LoadSnapshots(ctx)
	if err != nil {
		return pairingdomain.Report{}, err
	}
	started := time.Now()
	out, _, err := e.pairingSvc.TopPairs(ctx, snaps.Orders, snaps.Courses, limit)
	metrics.Engine().ObserveModuleRun("pairing", resultLabel(err), time.Since(started))
	return out, err
}

// ProjectRevenue runs reconciliation plus the forecast module with a
// caller-chosen horizon.
func (e *Engine) ProjectRevenue(ctx context.Context, horizonDays int) (forecastdomain.Report, error) {
	snaps, err := e.store.LoadSnapshots(ctx)
	if err != nil {
		return forecastdomain.Report{}, err
	}
	recReport, _, err := e.runReconcile(ctx, snaps)
	if err != nil {
		return forecastdomain.Report{}, err
	}
	started := time.Now()
	out, _, err := e.forecastSvc.Project(ctx, snaps.Orders, snaps.Invoices, recReport.VerifiedGross(), horizonDays)
	metrics.Engine().ObserveModuleRun("forecast", resultLabel(err), time.Since(started))
	return out, err
}

func (e *Engine) runReconcile(ctx context.Context, snaps recordstoredomain.Snapshots) (reconciledomain.Report, diag.List, error) {
	started := time.Now()
	out, extra, err := e.reconcileSvc.Reconcile(ctx, snaps.Orders, snaps.Invoices)
	metrics.Engine().ObserveModuleRun("reconcile", resultLabel(err), time.Since(started))
	metrics.Engine().AddDiagnostics("reconcile", len(extra))
	return out, extra, err
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "success"
	case isContextErr(err):
		return "cancelled"
	default:
		return "failed"
	}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
