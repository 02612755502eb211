// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/gomlx/gomlx/pkg/ml/train"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/recordfeed/config"
	"github.com/poiesic/recordfeed/core"
	"github.com/poiesic/recordfeed/decode"
	"golang.org/x/sync/errgroup"
)

// Dataset is a running pipeline yielding tensor batches. It implements
// gomlx train.Dataset so a training loop can consume it directly; Yield
// returns io.EOF after the configured number of epochs.
//
// Decoding runs in parallel and is not order-preserving: even with
// shuffling disabled, examples can swap places within the decode window.
type Dataset struct {
	cfg      *config.InputReader
	settings *settings
	decoder  *decode.Decoder
	source   Source
	owned    bool

	mu         sync.Mutex
	stream     *RecordStream
	batches    chan *Batch
	group      *errgroup.Group
	cancel     context.CancelFunc
	pool       *ants.Pool
	generation int64
	runErr     error
	finished   bool
	closed     bool
}

var _ train.Dataset = (*Dataset)(nil)

// Build assembles the full pipeline the configuration describes: source,
// read stage, sampling, parallel decode, batching and prefetch. The
// pipeline starts immediately; callers must Close it when done.
func Build(cfg *config.InputReader, opts ...Option) (*Dataset, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}
	settings, err := newSettings(opts)
	if err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		// An injected source stands in for the config's source block.
		if !(errors.Is(err, config.ErrNoSource) && settings.source != nil) {
			return nil, err
		}
	}

	var decodeOpts []decode.Option
	if settings.labels != nil {
		decodeOpts = append(decodeOpts, decode.WithLabelMap(settings.labels))
	}
	decoder, err := decode.NewDecoder(cfg, decodeOpts...)
	if err != nil {
		return nil, err
	}

	source := settings.source
	owned := false
	if source == nil {
		source, err = NewSource(cfg)
		if err != nil {
			return nil, err
		}
		owned = true
	}

	d := &Dataset{
		cfg:      cfg,
		settings: settings,
		decoder:  decoder,
		source:   source,
		owned:    owned,
	}
	if err := d.start(); err != nil {
		if owned {
			source.Close()
		}
		return nil, err
	}
	return d, nil
}

// parallelism is the number of concurrent decode calls: scaled by the
// batch size when batching, flat otherwise.
func (d *Dataset) parallelism() int {
	if d.settings.batchSize > 0 {
		return d.settings.batchSize * d.cfg.NumParallelBatches
	}
	return d.cfg.NumParallelMapCalls
}

// start assembles and launches the stage chain. Callers hold d.mu or have
// exclusive access.
func (d *Dataset) start() error {
	parallelism := d.parallelism()
	pool, err := ants.NewPool(parallelism)
	if err != nil {
		return fmt.Errorf("failed to create decode pool: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	group, ctx := errgroup.WithContext(ctx)

	runSettings := *d.settings
	runSettings.seed += d.generation * 2
	d.generation++

	stream, err := readRecords(ctx, d.cfg, d.source, &runSettings)
	if err != nil {
		pool.Release()
		cancel()
		return err
	}

	raw := stream.Records()
	if d.cfg.SampleOneOfN > 1 {
		in := raw
		sampled := make(chan []byte, 1)
		group.Go(func() error {
			defer close(sampled)
			return sampleOneOfN(ctx, in, sampled, d.cfg.SampleOneOfN)
		})
		raw = sampled
	}

	examples := make(chan *core.Example, parallelism)
	group.Go(func() error {
		defer close(examples)
		return d.decodeStage(ctx, pool, parallelism, raw, examples)
	})

	batches := make(chan *Batch, d.cfg.PrefetchBatches)
	group.Go(func() error {
		defer close(batches)
		return d.batchStage(ctx, examples, batches)
	})

	group.Go(stream.Wait)

	d.stream = stream
	d.batches = batches
	d.group = group
	d.cancel = cancel
	d.pool = pool
	d.runErr = nil
	d.finished = false
	return nil
}

// stop tears down the running stage chain. Callers hold d.mu.
func (d *Dataset) stop() {
	if d.cancel == nil {
		return
	}
	d.cancel()
	d.stream.Close()
	for range d.batches {
	}
	_ = d.group.Wait()
	d.pool.Release()
	d.cancel = nil
}

// finish records the pipeline outcome once the batch channel has closed.
// Callers hold d.mu.
func (d *Dataset) finish() error {
	if d.finished {
		return d.runErr
	}
	d.finished = true

	err := d.group.Wait()
	d.pool.Release()
	d.cancel()
	d.cancel = nil
	if err != nil && !errors.Is(err, context.Canceled) {
		d.runErr = err
	}
	return d.runErr
}

// Name implements train.Dataset.
func (d *Dataset) Name() string {
	return d.settings.name
}

// NextBatch returns the next prefetched batch, or io.EOF when the pipeline
// has yielded every epoch. After an error the same error is returned on
// every call.
func (d *Dataset) NextBatch(ctx context.Context) (*Batch, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, ErrClosed
	}
	if d.runErr != nil {
		return nil, d.runErr
	}
	if d.finished {
		return nil, io.EOF
	}

	select {
	case batch, ok := <-d.batches:
		if !ok {
			if err := d.finish(); err != nil {
				return nil, err
			}
			return nil, io.EOF
		}
		return batch, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Yield implements train.Dataset: inputs are [image], labels are
// [boxes, classes, numBoxes].
func (d *Dataset) Yield() (spec any, inputs []*tensors.Tensor, labels []*tensors.Tensor, err error) {
	batch, err := d.NextBatch(context.Background())
	if err != nil {
		return nil, nil, nil, err
	}
	return nil, batch.Inputs(), batch.Labels(), nil
}

// Reset implements train.Dataset: the pipeline is torn down and rebuilt
// from the start of the input. train.Dataset gives Reset no error return,
// so a rebuild failure surfaces on the next Yield.
func (d *Dataset) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	d.stop()
	d.finished = false
	if err := d.start(); err != nil {
		d.runErr = err
		d.finished = true
	}
}

// Close stops the pipeline and releases its pools, and closes the source
// when the dataset opened it. Safe to call more than once.
func (d *Dataset) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true
	d.stop()
	if d.owned {
		return d.source.Close()
	}
	return nil
}

// sampleOneOfN forwards every nth record starting with the first.
func sampleOneOfN(ctx context.Context, in <-chan []byte, out chan<- []byte, n int) error {
	index := 0
	for {
		select {
		case record, ok := <-in:
			if !ok {
				return nil
			}
			keep := index%n == 0
			index++
			if !keep {
				continue
			}
			select {
			case out <- record:
			case <-ctx.Done():
				return ctx.Err()
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// decodeStage fans raw records out over the decode pool, applying the
// transform when one is configured. Not order-preserving.
func (d *Dataset) decodeStage(ctx context.Context, pool *ants.Pool, parallelism int, in <-chan []byte, out chan<- *core.Example) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errs := make(chan error, parallelism)
	var wg sync.WaitGroup

	for i := 0; i < parallelism; i++ {
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			for {
				select {
				case record, ok := <-in:
					if !ok {
						return
					}
					example, err := d.decodeOne(record)
					if err != nil {
						errs <- err
						cancel()
						return
					}
					select {
					case out <- example:
					case <-ctx.Done():
						return
					}
				case <-ctx.Done():
					return
				}
			}
		})
		if submitErr != nil {
			wg.Done()
			cancel()
			wg.Wait()
			return fmt.Errorf("failed to start decode worker: %w", submitErr)
		}
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
	}
	return context.Cause(ctx)
}

func (d *Dataset) decodeOne(record []byte) (*core.Example, error) {
	example, err := d.decoder.Decode(record)
	if err != nil {
		return nil, err
	}
	if d.settings.transform != nil {
		if err := d.settings.transform(example); err != nil {
			return nil, fmt.Errorf("transform failed on example %s: %w", example.SourceId, err)
		}
	}
	return example, nil
}

// batchStage groups decoded examples into fixed-size batches, dropping the
// short remainder. With batching disabled every example becomes a batch of
// one.
func (d *Dataset) batchStage(ctx context.Context, in <-chan *core.Example, out chan<- *Batch) error {
	size := d.settings.batchSize
	if size == 0 {
		size = 1
	}

	buf := make([]*core.Example, 0, size)
	for {
		select {
		case example, ok := <-in:
			if !ok {
				// remainder dropped
				return nil
			}
			buf = append(buf, example)
			if len(buf) < size {
				continue
			}
			batch, err := NewBatch(buf)
			if err != nil {
				return err
			}
			buf = make([]*core.Example, 0, size)
			select {
			case out <- batch:
			case <-ctx.Done():
				return ctx.Err()
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
