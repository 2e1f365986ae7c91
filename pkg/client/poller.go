package client

import (
	"context"
	"fmt"
	"time"

	"github.com/bonocatalog/backend/internal/models"
	"github.com/bonocatalog/backend/pkg/stage"
)

// Clock abstracts the poll delay so tests can drive the loop without real
// time passing.
type Clock interface {
	Sleep(d time.Duration)
}

type realClock struct{}

func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

// Submitter, StatusSource and Assembler are the three backend interactions
// the poller needs. *APIClient satisfies all of them.
type Submitter interface {
	SubmitJob(ctx context.Context, sub *Submission) (string, error)
}

type StatusSource interface {
	JobStatus(ctx context.Context, jobID string) (*models.StatusRecord, error)
}

type Assembler interface {
	AssembleCatalog(ctx context.Context, jobID string) (string, error)
}

// Progress is the poller's client-facing view of a job: overall progress on
// a single [0,100] scale plus the latest server message and item counters.
type Progress struct {
	JobID       string
	Stage       stage.Stage
	Overall     int
	Message     string
	CurrentItem int
	TotalItems  int
	Error       string
	PDFURL      string
}

// PollerConfig carries the timing contract: one status read per interval,
// a hard attempt budget, and the slice of the overall progress bar that the
// generation phase occupies.
type PollerConfig struct {
	Interval      time.Duration
	Budget        int
	GenerationLow int
	GenerationHi  int
}

func DefaultPollerConfig() PollerConfig {
	return PollerConfig{
		Interval:      5 * time.Second,
		Budget:        60,
		GenerationLow: 30,
		GenerationHi:  80,
	}
}

// Poller drives a job from submission to a terminal outcome. There is no
// cancel operation: leaving the loop has no effect on server-side work.
type Poller struct {
	cfg       PollerConfig
	submitter Submitter
	source    StatusSource
	assembler Assembler
	clock     Clock

	// OnUpdate, when set, observes every progress change.
	OnUpdate func(Progress)
}

func NewPoller(cfg PollerConfig, submitter Submitter, source StatusSource, assembler Assembler) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Second
	}
	if cfg.Budget <= 0 {
		cfg.Budget = 60
	}
	if cfg.GenerationHi <= cfg.GenerationLow {
		cfg.GenerationLow, cfg.GenerationHi = 30, 80
	}
	return &Poller{
		cfg:       cfg,
		submitter: submitter,
		source:    source,
		assembler: assembler,
		clock:     realClock{},
	}
}

// WithClock swaps the delay source, for tests.
func (p *Poller) WithClock(c Clock) *Poller {
	p.clock = c
	return p
}

// Run submits the job and polls it to a terminal state. The returned
// Progress is always terminal: stage complete with the catalog URL, or stage
// error with an explanation. Submission failure short-circuits to error with
// no polling.
func (p *Poller) Run(ctx context.Context, sub *Submission) Progress {
	jobID, err := p.submitter.SubmitJob(ctx, sub)
	if err != nil {
		return p.emit(Progress{Stage: stage.Error, Error: fmt.Sprintf("submission failed: %v", err)})
	}
	return p.Track(ctx, jobID)
}

// Track polls an already-submitted job to a terminal state.
func (p *Poller) Track(ctx context.Context, jobID string) Progress {
	cur := p.emit(Progress{
		JobID:   jobID,
		Stage:   stage.Uploading,
		Overall: p.cfg.GenerationLow,
		Message: "Images uploaded, waiting for generation...",
	})

	for attempt := 0; attempt < p.cfg.Budget; attempt++ {
		p.clock.Sleep(p.cfg.Interval)

		rec, err := p.source.JobStatus(ctx, jobID)
		if err != nil {
			// An unknown job can never become known again; anything else
			// may be transient and still counts against the budget.
			if models.IsNotFound(err) {
				cur.Stage = stage.Error
				cur.Error = fmt.Sprintf("job %s not found", jobID)
				return p.emit(cur)
			}
			continue
		}

		switch rec.Stage {
		case stage.Error:
			cur.Stage = stage.Error
			cur.Message = rec.Message
			cur.Error = rec.Error
			if cur.Error == "" {
				cur.Error = "generation failed"
			}
			return p.emit(cur)

		case stage.Complete:
			cur.Stage = stage.Assembling
			cur.Overall = p.cfg.GenerationHi
			cur.Message = "Assembling catalog..."
			cur = p.emit(cur)

			// Exactly one assembly request. Its failure is fatal even
			// though generation succeeded.
			pdfURL, err := p.assembler.AssembleCatalog(ctx, jobID)
			if err != nil {
				cur.Stage = stage.Error
				cur.Error = fmt.Sprintf("catalog assembly failed: %v", err)
				return p.emit(cur)
			}
			cur.Stage = stage.Complete
			cur.Overall = 100
			cur.Message = "Catalog ready"
			cur.PDFURL = pdfURL
			return p.emit(cur)

		default:
			// Non-terminal: rescale the phase progress into the generation
			// window and never let the bar move backwards.
			overall := stage.MapToOverall(rec.Progress, p.cfg.GenerationLow, p.cfg.GenerationHi)
			if overall > cur.Overall {
				cur.Overall = overall
			}
			cur.Stage = rec.Stage
			cur.Message = rec.Message
			cur.CurrentItem = rec.CurrentItem
			cur.TotalItems = rec.TotalItems
			cur = p.emit(cur)
		}
	}

	cur.Stage = stage.Error
	cur.Error = fmt.Sprintf("timed out after %d status checks; generation may still complete on the server", p.cfg.Budget)
	return p.emit(cur)
}

func (p *Poller) emit(pr Progress) Progress {
	if p.OnUpdate != nil {
		p.OnUpdate(pr)
	}
	return pr
}
