package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/agridoc/internal/assistant"
	"github.com/dgallion1/agridoc/internal/history"
	"github.com/dgallion1/agridoc/internal/metrics"
)

// Worker processes a single generation job.
type Worker struct {
	gen     assistant.Generator
	hist    HistoryStore
	stats   *assistant.LLMStats
	metrics *metrics.Metrics
	log     *slog.Logger
	backoff func(attempt int, err error) time.Duration
}

func NewWorker(gen assistant.Generator, hist HistoryStore, stats *assistant.LLMStats, m *metrics.Metrics, log *slog.Logger) *Worker {
	return &Worker{
		gen:     gen,
		hist:    hist,
		stats:   stats,
		metrics: m,
		log:     log,
		backoff: Backoff,
	}
}

// Process streams the reply for job. Retryable failures are retried only
// while no text has arrived; once deltas have been shown a failure is final.
func (w *Worker) Process(ctx context.Context, job *Job) {
	kind := job.Prompt.Kind
	log := w.log.With("job_id", job.ID, "kind", kind)

	job.SetStatus(StatusGenerating, "waiting_for_model")
	start := time.Now()

	var err error
	for attempt := range MaxRetries {
		job.IncrAttempts()
		err = w.gen.Stream(ctx, job.Prompt, func(delta string) {
			if !job.HasText() {
				job.SetPhase("streaming")
			}
			job.AppendDelta(delta)
		})
		if err == nil || job.HasText() || !IsRetryable(err) {
			break
		}
		if attempt == MaxRetries-1 {
			break
		}
		log.Warn("retryable generation error", "attempt", attempt, "error", err)
		job.SetPhase("retrying")
		select {
		case <-time.After(w.backoff(attempt, err)):
		case <-ctx.Done():
			err = ctx.Err()
		}
		if ctx.Err() != nil {
			break
		}
	}

	elapsed := time.Since(start)
	if w.stats != nil {
		w.stats.Record(kind, elapsed, err != nil)
	}
	w.metrics.ObserveGeneration(string(kind), elapsed, err != nil)

	if err != nil {
		log.Error("generation failed", "error", err, "duration_ms", elapsed.Milliseconds())
		job.AddError(fmt.Sprintf("generate: %s", err))
		job.SetStatus(StatusFailed, "generating")
		return
	}

	text := job.Text()
	if kind.JSONReply() {
		if _, err := assistant.ParseCropCalendar(text); err != nil {
			log.Error("invalid json reply", "error", err)
			job.AddError(err.Error())
			job.SetStatus(StatusFailed, "validating")
			return
		}
	}

	if w.hist != nil {
		item, err := w.hist.Add(ctx, history.Item{
			Kind:     string(kind),
			Title:    job.Prompt.Subject(),
			Language: job.Prompt.Language,
			Content:  text,
		})
		if err != nil {
			log.Warn("history write failed", "error", err)
			job.AddError(fmt.Sprintf("history: %s", err))
		} else {
			job.SetHistoryID(item.ID)
		}
	}

	log.Info("generation complete", "duration_ms", elapsed.Milliseconds(), "bytes", len(text))
	job.SetStatus(StatusCompleted, "done")
}
