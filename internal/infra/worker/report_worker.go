package worker

import (
	"context"
	"log"
	"time"

	"github.com/growthkit/leadflow/internal/usecase"
)

// ReportWorker polls the delivery provider for plans that were dispatched but
// not yet finalized, so delivered and failed outcomes land without the user
// asking for a report by hand.
type ReportWorker struct {
	outreach     *usecase.OutreachWorkflow
	tickInterval time.Duration
}

func NewReportWorker(outreach *usecase.OutreachWorkflow, tick time.Duration) *ReportWorker {
	if tick <= 0 {
		tick = time.Minute
	}
	return &ReportWorker{
		outreach:     outreach,
		tickInterval: tick,
	}
}

func (w *ReportWorker) Start(ctx context.Context) {
	log.Printf("report worker started (tick %s)", w.tickInterval)

	ticker := time.NewTicker(w.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("report worker stopped")
			return
		case <-ticker.C:
			for _, report := range w.outreach.FinalizeReports(ctx) {
				log.Printf("report worker: plan %s (%d delivered, %d failed)",
					report.PlanID, report.Delivered, report.Failed)
			}
		}
	}
}
