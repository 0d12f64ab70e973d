package imaging

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MonkyMars/gecho"
)

// Outcome is the result of processing one unique image payload: the encoded
// bytes ready for storage, or Err when the image failed or timed out. The
// pipeline deduplicates the decode/resize/encode work only; callers write
// their own file per record, so stored files are never shared.
type Outcome struct {
	Data []byte
	Err  error
}

// Pipeline fans unique image payloads out to a bounded worker pool. Each
// payload gets its own processing deadline, so one slow or corrupt image
// never stalls the rest of an import.
type Pipeline struct {
	codec   *Codec
	logger  *gecho.Logger
	workers int
	timeout time.Duration
}

func NewPipeline(codec *Codec, logger *gecho.Logger, workers int, timeout time.Duration) *Pipeline {
	if workers <= 0 {
		workers = 1
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Pipeline{
		codec:   codec,
		logger:  logger,
		workers: workers,
		timeout: timeout,
	}
}

type job struct {
	digest string
	raw    []byte
}

type result struct {
	digest string
	out    Outcome
}

// ProcessUnique runs every payload through decode → flatten → downscale →
// encode and returns the outcome per digest. Results arrive in completion
// order; callers map them back to rows by digest, never by position. The
// whole map is always populated, even on failure.
func (p *Pipeline) ProcessUnique(ctx context.Context, unique map[string][]byte) map[string]Outcome {
	outcomes := make(map[string]Outcome, len(unique))
	if len(unique) == 0 {
		return outcomes
	}

	// In-flight work (including tasks abandoned after a timeout, which keep
	// running until their codec call returns) is capped at twice the worker
	// count to bound decoded-bitmap memory.
	sem := make(chan struct{}, p.workers*2)
	jobs := make(chan job)
	results := make(chan result, len(unique))

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go p.worker(ctx, jobs, results, sem, &wg)
	}

	go func() {
		for digest, raw := range unique {
			jobs <- job{digest: digest, raw: raw}
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for r := range results {
		if r.out.Err != nil {
			p.logger.Warn("Image degraded to absent",
				gecho.Field("digest", r.digest[:12]),
				gecho.Field("error", r.out.Err),
			)
		}
		outcomes[r.digest] = r.out
	}
	return outcomes
}

func (p *Pipeline) worker(ctx context.Context, jobs <-chan job, results chan<- result, sem chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()
	for j := range jobs {
		results <- result{digest: j.digest, out: p.processOne(ctx, sem, j.raw)}
	}
}

// processOne wraps a single image in the per-item deadline. The underlying
// work is not cooperatively cancellable once inside the codec, so on timeout
// its eventual result is simply discarded; nothing is written until the
// caller decides what to do with the bytes.
func (p *Pipeline) processOne(ctx context.Context, sem chan struct{}, raw []byte) Outcome {
	select {
	case sem <- struct{}{}:
	case <-ctx.Done():
		return Outcome{Err: ctx.Err()}
	}

	tctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	done := make(chan Outcome, 1)
	go func() {
		defer func() { <-sem }()
		defer func() {
			if r := recover(); r != nil {
				done <- Outcome{Err: fmt.Errorf("image processing panic: %v", r)}
			}
		}()

		data, err := p.codec.Process(raw)
		if err != nil {
			done <- Outcome{Err: err}
			return
		}
		done <- Outcome{Data: data}
	}()

	select {
	case out := <-done:
		return out
	case <-tctx.Done():
		return Outcome{Err: fmt.Errorf("image processing timed out after %v: %w", p.timeout, tctx.Err())}
	}
}
