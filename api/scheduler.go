/*
scheduler.go - Automated period-close export

PURPOSE:
  Periodically checks whether a payroll period has closed and, if its
  report has not been archived yet, writes it to the export directory.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - The closed period is the one before the period containing today
  - A period counts as archived when its file already exists, so restarts
    don't rewrite old exports
  - Export failures are logged and retried on the next tick

LIFECYCLE:
  Start after Stop resumes checking; Start on a running scheduler is a no-op.

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - Dir: Where to write reports; empty disables the scheduler
  - Format: csv or xlsx (default: xlsx)

USAGE:
  scheduler := NewPeriodCloseScheduler(handler, "./exports")
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: ExportReport endpoint (manual export)
  - export/: CSV and XLSX writers
*/
package api

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/warp/payroll-engine/export"
	"github.com/warp/payroll-engine/generic"
)

// PeriodCloseScheduler archives the report of each closed payroll period.
type PeriodCloseScheduler struct {
	Handler       *Handler
	Dir           string
	Format        export.Format
	CheckInterval time.Duration
	Now           func() time.Time

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewPeriodCloseScheduler creates a new scheduler writing into dir.
func NewPeriodCloseScheduler(handler *Handler, dir string) *PeriodCloseScheduler {
	return &PeriodCloseScheduler{
		Handler:       handler,
		Dir:           dir,
		Format:        export.FormatXLSX,
		CheckInterval: 1 * time.Hour,
		Now:           time.Now,
	}
}

// Start begins the scheduler.
func (ps *PeriodCloseScheduler) Start() {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if ps.Dir == "" {
		log.Info("[Scheduler] No export directory, not starting")
		return
	}
	if ps.ticker != nil {
		return
	}

	// Stop closes the channel, so each start needs a fresh one.
	ps.stop = make(chan struct{})
	ps.ticker = time.NewTicker(ps.CheckInterval)
	ps.wg.Add(1)

	go ps.run(ps.ticker, ps.stop)

	log.Infof("[Scheduler] Started with check interval: %v", ps.CheckInterval)
}

// Stop stops the scheduler.
func (ps *PeriodCloseScheduler) Stop() {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if ps.ticker != nil {
		ps.ticker.Stop()
		close(ps.stop)
		ps.wg.Wait()
		ps.ticker = nil
		log.Info("[Scheduler] Stopped")
	}
}

func (ps *PeriodCloseScheduler) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer ps.wg.Done()

	// Run immediately on start
	ps.RunNow(context.Background())

	for {
		select {
		case <-ticker.C:
			ps.RunNow(context.Background())
		case <-stop:
			return
		}
	}
}

// RunNow archives the last closed period if needed and returns the written
// path ("" when nothing was written).
func (ps *PeriodCloseScheduler) RunNow(ctx context.Context) (string, error) {
	pc := ps.Handler.Engine.Rules.Period
	today := generic.FromTime(ps.Now())

	current, err := pc.PeriodForSelector(pc.SelectorFor(today))
	if err != nil {
		return "", err
	}
	closed := pc.SelectorFor(current.Start.AddDays(-1))

	path := filepath.Join(ps.Dir, ps.Format.Filename(closed))
	if _, err := os.Stat(path); err == nil {
		return "", nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}

	path, err = ps.archive(ctx, closed, path)
	if err != nil {
		log.WithError(err).WithField("selector", closed).Error("[Scheduler] Export failed")
		return "", err
	}
	log.WithFields(log.Fields{"selector": closed, "path": path}).Info("[Scheduler] Period archived")
	return path, nil
}

func (ps *PeriodCloseScheduler) archive(ctx context.Context, selector, path string) (string, error) {
	period, err := ps.Handler.Engine.Rules.Period.PeriodForSelector(selector)
	if err != nil {
		return "", err
	}
	shifts, err := ps.Handler.Store.ListRange(ctx, period.Start, period.End)
	if err != nil {
		return "", err
	}
	report, err := ps.Handler.Engine.GenerateReport(shifts, selector)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, ps.Format, report); err != nil {
		return "", err
	}
	if err := os.MkdirAll(ps.Dir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// GetNextRunTime returns when the next scheduled check will occur.
func (ps *PeriodCloseScheduler) GetNextRunTime() time.Time {
	return ps.Now().Add(ps.CheckInterval)
}
