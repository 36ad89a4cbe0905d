// Package pipeline schedules digest, cache lookup, decode and hash work
// across bounded worker pools. Items flow through four bounded queues; a
// full downstream queue blocks the upstream worker, so memory stays flat
// no matter how many files are enumerated. Failed items carry their error
// and never stop the run, with two exceptions: a missing decoder binary,
// and repeated resource exhaustion.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/lepinkainen/videodup/cache"
	"github.com/lepinkainen/videodup/decode"
	"github.com/lepinkainen/videodup/vhash"
)

// Stage names an item's position in the pipeline, used in progress events.
type Stage string

const (
	StageEnumerate Stage = "enumerate"
	StageDigest    Stage = "digest"
	StageLookup    Stage = "cache-lookup"
	StageDecode    Stage = "decode"
	StageCrop      Stage = "crop"
	StageHash      Stage = "hash"
	StageStore     Stage = "cache-store"
	StageDone      Stage = "done"
	StageFailed    Stage = "failed"
)

// Event is emitted after every stage transition. Err is set only for
// StageFailed.
type Event struct {
	Path  string
	Stage Stage
	Err   error
}

// Config bundles everything a run needs. Zero-valued pool and queue sizes
// fall back to the documented defaults; Params must be valid and CacheDir
// must be set, or Run returns an error.
type Config struct {
	Params   vhash.Params
	CacheDir string

	// Decoder is the injected decoder invocation; ignored when Source is
	// set.
	Decoder decode.DecoderSpec
	// Source overrides the ffmpeg-backed frame source. Tests and
	// alternative decoder backends plug in here.
	Source decode.Source

	// DecodeWorkers sizes the decode/hash pool; default NumCPU-1, min 1.
	// DigestWorkers sizes the I/O-bound digest pool; default 2.
	DecodeWorkers int
	DigestWorkers int

	// QueueSize bounds each inter-stage queue; default 64.
	QueueSize int

	// Progress receives stage-transition events; optional. It must be safe
	// for concurrent calls.
	Progress func(Event)
}

func (c *Config) fill() {
	if c.DecodeWorkers <= 0 {
		c.DecodeWorkers = runtime.NumCPU() - 1
		if c.DecodeWorkers < 1 {
			c.DecodeWorkers = 1
		}
	}
	if c.DigestWorkers <= 0 {
		c.DigestWorkers = 2
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 64
	}
}

// Result is the terminal state of one input path.
type Result struct {
	Path     string
	Hash     *vhash.VideoHash
	CacheHit bool
	Err      error
}

// Report summarizes a finished run.
type Report struct {
	Hashes   []*vhash.VideoHash
	Results  []Result
	CacheHits int
	Built    int
	Failures map[decode.ErrorKind]int
	// Aborted is set when the run stopped early: missing decoder binary,
	// repeated resource exhaustion, or cancellation.
	Aborted    bool
	AbortCause error
}

// item is the unit of work flowing between stages.
type item struct {
	path   string
	digest [32]byte
	key    cache.Key
	hash   *vhash.VideoHash
	hit    bool
	built  bool
	err    error
}

// escalationWindow and escalationLimit implement the resource-exhaustion
// circuit breaker: more than escalationLimit such failures within the last
// escalationWindow items abort the run.
const (
	escalationWindow = 10
	escalationLimit  = 3
)

// Run pushes every path through the pipeline and blocks until all items
// reach a terminal state. Item-level failures are recorded in the report;
// the returned error is non-nil only for setup failures.
func Run(ctx context.Context, paths []string, cfg Config) (*Report, error) {
	cfg.fill()
	if err := cfg.Params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid hashing params: %w", err)
	}
	if cfg.CacheDir == "" {
		return nil, errors.New("cache directory not configured")
	}

	store, err := cache.Open(cfg.CacheDir)
	if err != nil {
		return nil, err
	}

	src := cfg.Source
	if src == nil {
		src = decode.NewFFmpegSource(cfg.Decoder, cfg.Params)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	emit := func(path string, stage Stage, err error) {
		if cfg.Progress != nil {
			cfg.Progress(Event{Path: path, Stage: stage, Err: err})
		}
	}

	slots := int64(cfg.DecodeWorkers)
	if budget := fdBudget(); budget < slots {
		slots = budget
	}
	decodeSem := semaphore.NewWeighted(slots)

	pathQ := make(chan string, cfg.QueueSize)
	digestQ := make(chan *item, cfg.QueueSize)
	lookupQ := make(chan *item, cfg.QueueSize)
	buildQ := make(chan *item, cfg.QueueSize)

	report := &Report{Failures: make(map[decode.ErrorKind]int)}
	var abortCause error

	// enumerate
	go func() {
		defer close(pathQ)
		for _, p := range paths {
			emit(p, StageEnumerate, nil)
			select {
			case pathQ <- p:
			case <-ctx.Done():
				return
			}
		}
	}()

	// digest
	digestG := &errgroup.Group{}
	for w := 0; w < cfg.DigestWorkers; w++ {
		digestG.Go(func() error {
			for p := range pathQ {
				it := &item{path: p}
				if d, err := cache.FileDigest(p); err != nil {
					it.err = &decode.Error{Kind: decode.KindFileUnreadable, Path: p, Err: err}
				} else {
					it.digest = d
					it.key = cache.NewKey(d, cfg.Params)
					emit(p, StageDigest, nil)
				}
				select {
				case digestQ <- it:
				case <-ctx.Done():
					return nil
				}
			}
			return nil
		})
	}
	go func() { _ = digestG.Wait(); close(digestQ) }()

	// cache lookup: lock-free fast path for entries that already exist
	lookupG := &errgroup.Group{}
	for w := 0; w < 2; w++ {
		lookupG.Go(func() error {
			for it := range digestQ {
				if it.err == nil {
					if vh, ok, err := store.Lookup(it.key); err == nil && ok {
						it.hash = vh.WithPath(it.path)
						it.hit = true
					}
					emit(it.path, StageLookup, nil)
				}
				select {
				case lookupQ <- it:
				case <-ctx.Done():
					return nil
				}
			}
			return nil
		})
	}
	go func() { _ = lookupG.Wait(); close(lookupQ) }()

	// decode + crop + hash + store; at-most-once per key via the cache
	buildG := &errgroup.Group{}
	for w := 0; w < cfg.DecodeWorkers; w++ {
		buildG.Go(func() error {
			for it := range lookupQ {
				if it.err == nil && !it.hit {
					it.err = buildOne(ctx, it, store, src, cfg, decodeSem, emit)
				}
				select {
				case buildQ <- it:
				case <-ctx.Done():
					return nil
				}
			}
			return nil
		})
	}
	go func() { _ = buildG.Wait(); close(buildQ) }()

	// collect
	window := make([]decode.ErrorKind, 0, escalationWindow)
	for it := range buildQ {
		res := Result{Path: it.path, Hash: it.hash, CacheHit: it.hit, Err: it.err}
		report.Results = append(report.Results, res)

		if it.err != nil {
			kind := decode.Kind(it.err)
			report.Failures[kind]++
			emit(it.path, StageFailed, it.err)

			if kind == decode.KindDecoderMissing && abortCause == nil {
				abortCause = it.err
				cancel()
			}
			window = append(window, kind)
		} else {
			report.Hashes = append(report.Hashes, it.hash)
			if it.hit {
				report.CacheHits++
			} else {
				report.Built++
			}
			emit(it.path, StageDone, nil)
			window = append(window, decode.KindUnknown)
		}

		if len(window) > escalationWindow {
			window = window[1:]
		}
		exhausted := 0
		for _, k := range window {
			if k == decode.KindResourceExhausted {
				exhausted++
			}
		}
		if exhausted > escalationLimit && abortCause == nil {
			abortCause = fmt.Errorf("%d resource failures within the last %d items", exhausted, len(window))
			cancel()
		}
	}

	if abortCause != nil {
		report.Aborted = true
		report.AbortCause = abortCause
	} else if err := ctx.Err(); err != nil {
		report.Aborted = true
		report.AbortCause = err
	}
	return report, nil
}

// buildOne produces and stores the hash for a cache miss. The semaphore
// keeps the number of live decoder children inside the fd budget; the
// cache's GetOrBuild guarantees a single build per key even when duplicate
// files are in flight at once.
func buildOne(ctx context.Context, it *item, store *cache.Store, src decode.Source, cfg Config, sem *semaphore.Weighted, emit func(string, Stage, error)) error {
	vh, hit, err := store.GetOrBuild(ctx, it.key, func() (*vhash.VideoHash, error) {
		if err := sem.Acquire(ctx, 1); err != nil {
			return nil, &decode.Error{Kind: decode.KindCancelled, Path: it.path, Err: err}
		}
		defer sem.Release(1)

		emit(it.path, StageDecode, nil)
		vh, err := src.Hash(ctx, it.path)
		if err != nil {
			return nil, err
		}
		if cfg.Params.CropMode == vhash.CropLetterbox {
			emit(it.path, StageCrop, nil)
		}
		emit(it.path, StageHash, nil)
		return vh, nil
	})
	if err != nil {
		if decode.Kind(err) != decode.KindUnknown {
			return err
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return &decode.Error{Kind: decode.KindCancelled, Path: it.path, Err: err}
		}
		// Cache I/O failures (fd limit, disk full) land here.
		return &decode.Error{Kind: decode.KindResourceExhausted, Path: it.path, Err: err}
	}

	it.hash = vh.WithPath(it.path)
	it.hit = hit
	if !hit {
		it.built = true
		emit(it.path, StageStore, nil)
	}
	return nil
}
