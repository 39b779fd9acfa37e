// Package pipeline runs one report through every stage and produces its record.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/medreport-summarizer/constants"
	"github.com/joseph-ayodele/medreport-summarizer/internal/common"
	"github.com/joseph-ayodele/medreport-summarizer/internal/core/assemble"
	"github.com/joseph-ayodele/medreport-summarizer/internal/core/extract"
	"github.com/joseph-ayodele/medreport-summarizer/internal/core/normalize"
	"github.com/joseph-ayodele/medreport-summarizer/internal/core/summarize"
	"github.com/joseph-ayodele/medreport-summarizer/internal/entity"
	"github.com/joseph-ayodele/medreport-summarizer/internal/llm"
)

// RunRecorder stores run metadata. Implementations must not block for long;
// failures are logged and otherwise ignored.
type RunRecorder interface {
	RecordRun(ctx context.Context, run entity.SummaryRun) error
}

// Notices added to record warnings when a model stage degrades.
const (
	NoticeNERUnavailable        = "entity recognition unavailable; lists come from section extraction only"
	NoticeSummarizerUnavailable = "summarizer unavailable; no generated narrative"
)

// Processor coordinates normalization, extraction, entity recognition,
// summarization and assembly for one report at a time. It is safe for
// concurrent use.
type Processor struct {
	logger     *slog.Logger
	models     *llm.Models
	summarizer *summarize.Service
	assembler  *assemble.Assembler
	recorder   RunRecorder
	timeout    time.Duration
}

func NewProcessor(logger *slog.Logger, models *llm.Models, cfg common.PipelineConfig, recorder RunRecorder) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if models == nil {
		models = &llm.Models{}
	}
	if models.Recognizer == nil {
		models.Recognizer = llm.Unavailable{Reason: "no recognizer configured"}
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.SummaryMaxInputChars <= 0 {
		cfg.SummaryMaxInputChars = 1024
	}
	if cfg.SummaryMaxSentences <= 0 {
		cfg.SummaryMaxSentences = 3
	}
	return &Processor{
		logger:     logger,
		models:     models,
		summarizer: summarize.NewService(models.Summarizer, cfg.SummaryMaxInputChars, cfg.SummaryMaxSentences, logger),
		assembler:  assemble.New(nil, logger),
		recorder:   recorder,
		timeout:    cfg.RequestTimeout,
	}
}

// Models returns the backends the processor was built with.
func (p *Processor) Models() *llm.Models { return p.models }

// Result is a finished run.
type Result struct {
	Record *entity.SummaryRecord
	Run    entity.SummaryRun
}

type stageOutput struct {
	fields     extract.Fields
	entities   []entity.Entity
	narrative  string
	nerErr     error
	summaryErr error
}

// Process summarizes one report. Empty input fails with common.ErrEmptyInput
// before any stage runs; an expired deadline fails with common.ErrTimeout and
// no partial record.
func (p *Processor) Process(ctx context.Context, source, report string) (*Result, error) {
	run := entity.SummaryRun{
		ID:         uuid.New(),
		RequestID:  common.RequestIDFromContext(ctx),
		Source:     source,
		InputChars: len(report),
		StartedAt:  time.Now().UTC(),
	}
	log := common.LoggerFromContext(ctx, p.logger).With("run_id", run.ID.String())

	if strings.TrimSpace(report) == "" {
		p.finish(ctx, &run, common.ErrEmptyInput)
		log.Info("pipeline.rejected", "reason", "empty_input")
		return nil, common.ErrEmptyInput
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	text, err := normalize.Normalize(report)
	if err != nil {
		p.finish(ctx, &run, err)
		return nil, err
	}
	idx := extract.BuildIndex(text)
	run.SectionsFound = idx.HeaderCount()
	log.Debug("pipeline.indexed", "chars", text.Len(), "lines", text.LineCount(), "sections", run.SectionsFound)

	out, err := p.fanOut(ctx, idx)
	if err != nil {
		err = common.AsTimeout(err)
		p.finish(ctx, &run, err)
		log.Error("pipeline.failed", "error", err, "elapsed_ms", time.Since(run.StartedAt).Milliseconds())
		return nil, err
	}

	var notices []string
	if out.nerErr != nil {
		run.NERDegraded = true
		notices = append(notices, NoticeNERUnavailable)
		log.Warn("pipeline.ner.degraded", "backend", p.models.NERBackend, "error", out.nerErr)
	}
	if out.summaryErr != nil {
		run.SummarizerDegraded = true
		notices = append(notices, NoticeSummarizerUnavailable)
		log.Warn("pipeline.summarize.degraded", "backend", p.models.SummarizerBackend, "error", out.summaryErr)
	}

	rec := p.assembler.Build(assemble.Inputs{
		Text:      text.String(),
		Fields:    out.fields,
		Entities:  out.entities,
		Narrative: out.narrative,
		Notices:   notices,
	})
	run.EntitiesFound = len(out.entities)
	run.FlagsRaised = len(rec.CriticalFlags)
	p.finish(ctx, &run, nil)

	log.Info("pipeline.ok",
		"sections", run.SectionsFound,
		"entities", run.EntitiesFound,
		"flags", run.FlagsRaised,
		"ner_degraded", run.NERDegraded,
		"summarizer_degraded", run.SummarizerDegraded,
		"elapsed_ms", run.Elapsed().Milliseconds(),
	)
	return &Result{Record: rec, Run: run}, nil
}

// fanOut runs extraction, entity recognition and summarization concurrently.
// Model failures are captured in the output; only the deadline fails the run.
// Stages that ignore cancellation are abandoned when the deadline passes.
func (p *Processor) fanOut(ctx context.Context, idx *extract.Index) (*stageOutput, error) {
	out := &stageOutput{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return recovered("extract", func() error {
			out.fields = extract.Extract(idx)
			return nil
		})
	})
	g.Go(func() error {
		out.nerErr = recovered("ner", func() error {
			ents, err := p.models.Recognizer.RecognizeEntities(gctx, idx.Text().String())
			out.entities = ents
			return err
		})
		if out.nerErr != nil {
			out.entities = nil
		}
		return nil
	})
	g.Go(func() error {
		out.summaryErr = recovered("summarize", func() error {
			narrative, err := p.summarizer.Run(gctx, idx)
			out.narrative = narrative
			return err
		})
		if out.summaryErr != nil {
			out.narrative = ""
		}
		return nil
	})

	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	select {
	case err := <-done:
		if err != nil {
			return nil, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return out, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// recovered runs fn and converts a panic into an error.
func recovered(stage string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s stage panic: %v", stage, r)
		}
	}()
	return fn()
}

// finish stamps the run outcome and hands it to the recorder.
func (p *Processor) finish(ctx context.Context, run *entity.SummaryRun, err error) {
	run.FinishedAt = time.Now().UTC()
	switch {
	case err == nil:
		run.Status = string(constants.RunStatusOK)
	case errors.Is(err, common.ErrEmptyInput):
		run.Status = string(constants.RunStatusRejected)
	case errors.Is(err, common.ErrTimeout):
		run.Status = string(constants.RunStatusTimeout)
	default:
		run.Status = string(constants.RunStatusFailed)
	}
	run.ErrorCode = common.ErrorCode(err)

	if p.recorder == nil {
		return
	}
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if rerr := p.recorder.RecordRun(rctx, *run); rerr != nil {
		p.logger.Warn("pipeline.audit.write_failed", "run_id", run.ID.String(), "error", rerr)
	}
}
