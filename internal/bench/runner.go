package bench

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"loom/internal/errs"
	"loom/internal/score"
)

// DefaultConcurrency suits CPU-bound inference.
const DefaultConcurrency = 4

// Options tunes the async runner.
type Options struct {
	// Concurrency caps in-flight samples. Values below 1 use the default.
	Concurrency int
}

func (o Options) concurrency() int {
	if o.Concurrency < 1 {
		return DefaultConcurrency
	}
	return o.Concurrency
}

// Progress describes one completed sample. Current is the completion count,
// monotonically increasing even when samples finish out of order.
type Progress struct {
	Current  int
	Total    int
	SampleID string
	Correct  bool
}

// ProgressFunc receives progress events. Calls are serialized; the callback
// never runs concurrently with itself and must not block.
type ProgressFunc func(Progress)

// Run evaluates the dataset one sample at a time.
func Run(ctx context.Context, ds *Dataset, scorer score.Scorer) (*BenchResult, error) {
	start := time.Now()
	results := make([]SampleResult, len(ds.Samples))
	for i, s := range ds.Samples {
		if err := ctx.Err(); err != nil {
			return nil, errs.Wrap(errs.Cancelled, err, "bench run aborted")
		}
		results[i] = evaluate(s, scorer)
	}
	res := buildResult(ds, results)
	res.Elapsed = time.Since(start)
	return res, nil
}

// RunAsync evaluates the dataset with at most opts.Concurrency samples in
// flight. Results land in dataset order. On cancellation, dispatch stops,
// in-flight samples run to completion, and no partial result is returned.
func RunAsync(ctx context.Context, ds *Dataset, scorer score.Scorer, opts Options, onProgress ProgressFunc) (*BenchResult, error) {
	start := time.Now()
	results := make([]SampleResult, len(ds.Samples))

	err := forEachSample(ctx, ds, opts, onProgress, func(i int, s Sample) (string, bool) {
		r := evaluate(s, scorer)
		results[i] = r
		return r.ID, r.Correct
	})
	if err != nil {
		return nil, err
	}

	res := buildResult(ds, results)
	res.Elapsed = time.Since(start)
	return res, nil
}

// forEachSample runs fn over every sample under the concurrency cap and
// funnels completions through a single consumer goroutine so progress
// callbacks are serial and Current counts completions.
func forEachSample(ctx context.Context, ds *Dataset, opts Options, onProgress ProgressFunc, fn func(i int, s Sample) (sampleID string, correct bool)) error {
	type completion struct {
		sampleID string
		correct  bool
	}
	events := make(chan completion, opts.concurrency())
	consumed := make(chan struct{})
	go func() {
		defer close(consumed)
		current := 0
		for ev := range events {
			current++
			if onProgress != nil {
				onProgress(Progress{
					Current:  current,
					Total:    len(ds.Samples),
					SampleID: ev.sampleID,
					Correct:  ev.correct,
				})
			}
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.concurrency())
	for i, s := range ds.Samples {
		if gctx.Err() != nil {
			break
		}
		i, s := i, s
		g.Go(func() error {
			id, correct := fn(i, s)
			events <- completion{sampleID: id, correct: correct}
			return nil
		})
	}

	werr := g.Wait()
	close(events)
	<-consumed

	if err := ctx.Err(); err != nil {
		return errs.Wrap(errs.Cancelled, err, "bench run aborted")
	}
	return werr
}

// evaluate scores one sample. A scorer failure is recorded on the result as
// a reject with no detected labels; it does not abort the run.
func evaluate(s Sample, scorer score.Scorer) SampleResult {
	r := SampleResult{
		ID:               s.ID,
		ExpectedDecision: s.ExpectedDecision,
		ExpectedLabels:   s.ExpectedLabels,
	}

	out, err := scorer.Score(s.Text)
	if err != nil {
		r.ActualDecision = score.Reject
		r.Err = err.Error()
	} else {
		r.ActualDecision = out.Decision()
		r.Score = out.Score()
		r.DetectedLabels = out.DetectedLabels()
	}
	r.Correct = r.ActualDecision == s.ExpectedDecision
	return r
}
