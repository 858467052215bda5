/*
reloader.go - Periodic reload of the table provider bundle

PURPOSE:
  When the server runs on stored tables, the seed command (or an operator)
  may replace them while the server is up. The reloader re-reads the table
  source on an interval and swaps the handler's engine once the new bundle
  is complete. A failed reload keeps the previous engine.

DESIGN:
  - Runs a background goroutine with a configurable interval
  - Builds a fresh engine per reload; engines are never mutated
  - Records every attempt in the table_reloads_total counter

USAGE:
  reloader := NewTableReloader(source, handler, time.Minute)
  reloader.Start()
  // ... later
  reloader.Stop()

SEE ALSO:
  - handlers.go: Handler.SetEngine
  - providers/table/bundle.go: table.Load
*/
package api

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kamio90/zus-retirement-simulator-sub000/engine"
	"github.com/kamio90/zus-retirement-simulator-sub000/providers/table"
)

// TableReloader refreshes a Handler's engine from a table source.
type TableReloader struct {
	Source   table.Source
	Handler  *Handler
	Interval time.Duration
	Options  []engine.Option

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewTableReloader creates a reloader. It does nothing until Start.
func NewTableReloader(src table.Source, h *Handler, interval time.Duration, opts ...engine.Option) *TableReloader {
	return &TableReloader{
		Source:   src,
		Handler:  h,
		Interval: interval,
		Options:  opts,
	}
}

// Start begins periodic reloads. A non-positive interval disables them.
func (tr *TableReloader) Start() {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	if tr.Interval <= 0 || tr.ticker != nil {
		return
	}

	tr.ticker = time.NewTicker(tr.Interval)
	tr.stop = make(chan struct{})
	tr.wg.Add(1)

	go tr.run(tr.ticker, tr.stop)

	tr.Handler.Logger.Info("table reloader started", zap.Duration("interval", tr.Interval))
}

// Stop ends periodic reloads and waits for a running reload to finish.
func (tr *TableReloader) Stop() {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	if tr.ticker == nil {
		return
	}
	tr.ticker.Stop()
	close(tr.stop)
	tr.wg.Wait()
	tr.ticker = nil
	tr.Handler.Logger.Info("table reloader stopped")
}

func (tr *TableReloader) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer tr.wg.Done()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), tr.Interval)
			if err := tr.Reload(ctx); err != nil {
				tr.Handler.Logger.Warn("table reload failed, keeping previous bundle", zap.Error(err))
			}
			cancel()
		case <-stop:
			return
		}
	}
}

// Reload reads the source once and swaps the engine on success.
func (tr *TableReloader) Reload(ctx context.Context) error {
	err := tr.reload(ctx)
	tr.Handler.Metrics.observeReload(err)
	return err
}

func (tr *TableReloader) reload(ctx context.Context) error {
	p, err := table.Load(ctx, tr.Source)
	if err != nil {
		return err
	}
	e, err := engine.New(p, tr.Options...)
	if err != nil {
		return fmt.Errorf("failed to build engine: %w", err)
	}
	tr.Handler.SetEngine(e)
	tr.Handler.Logger.Debug("table bundle reloaded", zap.Any("assumptions", e.Assumptions()))
	return nil
}
