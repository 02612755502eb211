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
	"math/rand"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/recordfeed/config"
	"golang.org/x/sync/errgroup"
)

// RecordStream is a running raw-record read stage: shards are read in
// parallel and interleaved into a single channel, repeated over epochs,
// optionally shuffled at the shard and record level.
type RecordStream struct {
	records chan []byte
	cancel  context.CancelFunc
	group   *errgroup.Group
	pool    *ants.Pool

	closeOnce sync.Once
	waitErr   error
}

// ReadRecords starts the read stage described by the configuration over the
// given source. The returned stream owns a reader pool; callers must drain
// Records and call Wait, or call Close to tear the stage down early.
//
// Shard order and record order are shuffled only when the configuration
// enables shuffling; with shuffling off and a single reader the stream is
// fully deterministic.
func ReadRecords(ctx context.Context, cfg *config.InputReader, source Source, opts ...Option) (*RecordStream, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}
	settings, err := newSettings(opts)
	if err != nil {
		return nil, err
	}
	return readRecords(ctx, cfg, source, settings)
}

func readRecords(ctx context.Context, cfg *config.InputReader, source Source, settings *settings) (*RecordStream, error) {
	logger := settings.logger

	shards, err := source.Shards(ctx)
	if err != nil {
		return nil, err
	}
	if len(shards) == 0 {
		return nil, ErrNoShards
	}

	numReaders := cfg.NumReaders
	if numReaders > len(shards) {
		logger.Warn("reducing parallel readers to the number of input shards",
			"num_readers", cfg.NumReaders, "shards", len(shards))
		numReaders = len(shards)
	}
	shuffle := cfg.ShuffleEnabled()
	if !shuffle && numReaders > 1 {
		logger.Warn("shuffle is disabled but records are still slightly shuffled by parallel interleaving",
			"num_readers", numReaders)
	}

	pool, err := ants.NewPool(numReaders)
	if err != nil {
		return nil, fmt.Errorf("failed to create reader pool: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	group, ctx := errgroup.WithContext(ctx)

	stage := &readStage{
		shards:      shards,
		numReaders:  numReaders,
		blockLength: cfg.ReadBlockLength,
		epochs:      cfg.NumEpochs,
		pool:        pool,
	}

	stream := &RecordStream{
		records: make(chan []byte, numReaders),
		cancel:  cancel,
		group:   group,
		pool:    pool,
	}

	if shuffle {
		orderRng := rand.New(rand.NewSource(settings.seed))
		recordRng := rand.New(rand.NewSource(settings.seed + 1))
		interleaved := make(chan []byte, numReaders)
		group.Go(func() error {
			defer close(interleaved)
			return stage.runSloppy(ctx, orderRng, cfg.FilenameShuffleBuffer, interleaved)
		})
		group.Go(func() error {
			defer close(stream.records)
			return shuffleRecords(ctx, interleaved, stream.records, cfg.ShuffleBuffer, recordRng)
		})
	} else {
		group.Go(func() error {
			defer close(stream.records)
			return stage.runOrdered(ctx, stream.records)
		})
	}

	return stream, nil
}

// Records is the stream output. The channel closes when every epoch has
// been read or the stage fails; call Wait to tell the two apart.
func (s *RecordStream) Records() <-chan []byte {
	return s.records
}

// Wait blocks until the stage has stopped and returns its first error.
// Records must be drained or the stage cancelled first.
func (s *RecordStream) Wait() error {
	s.closeOnce.Do(func() {
		err := s.group.Wait()
		s.pool.Release()
		if err != nil && !errors.Is(err, context.Canceled) {
			s.waitErr = err
		}
	})
	return s.waitErr
}

// Close cancels the stage and releases its reader pool. Safe to call more
// than once.
func (s *RecordStream) Close() error {
	s.cancel()
	return s.Wait()
}

// readStage holds the shard plan for one running read stage.
type readStage struct {
	shards      []Shard
	numReaders  int
	blockLength int
	epochs      int
	pool        *ants.Pool
}

// runSloppy feeds shards to a pool of readers through one queue, repeating
// over epochs with the shard order reshuffled each time. Records are merged
// in whatever order readers produce them, so epoch boundaries blur the way
// a ready-first interleave does.
func (st *readStage) runSloppy(ctx context.Context, rng *rand.Rand, orderBuffer int, out chan<- []byte) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	queue := make(chan Shard)
	errs := make(chan error, st.numReaders)
	var wg sync.WaitGroup

	for i := 0; i < st.numReaders; i++ {
		wg.Add(1)
		submitErr := st.pool.Submit(func() {
			defer wg.Done()
			for shard := range queue {
				if err := copyShard(ctx, shard, out); err != nil {
					errs <- err
					cancel()
					return
				}
			}
		})
		if submitErr != nil {
			wg.Done()
			cancel()
			close(queue)
			wg.Wait()
			return fmt.Errorf("failed to start shard reader: %w", submitErr)
		}
	}

feed:
	for epoch := 0; st.epochs == 0 || epoch < st.epochs; epoch++ {
		order := shuffleWithBuffer(st.shards, orderBuffer, rng)
		for _, shard := range order {
			select {
			case queue <- shard:
			case <-ctx.Done():
				break feed
			}
		}
	}
	close(queue)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
	}
	return context.Cause(ctx)
}

// runOrdered interleaves deterministically: reader i is statically assigned
// every numReaders-th shard and fills its own lane, and a collector takes
// blockLength records from each lane in turn. Epochs run back to back with
// the same shard order.
func (st *readStage) runOrdered(ctx context.Context, out chan<- []byte) error {
	for epoch := 0; st.epochs == 0 || epoch < st.epochs; epoch++ {
		if err := st.interleaveOrdered(ctx, out); err != nil {
			return err
		}
	}
	return nil
}

func (st *readStage) interleaveOrdered(ctx context.Context, out chan<- []byte) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lanes := make([]chan []byte, st.numReaders)
	errs := make(chan error, st.numReaders)
	var wg sync.WaitGroup

	for i := range lanes {
		lane := make(chan []byte, st.blockLength)
		lanes[i] = lane

		var assigned []Shard
		for j := i; j < len(st.shards); j += st.numReaders {
			assigned = append(assigned, st.shards[j])
		}

		wg.Add(1)
		submitErr := st.pool.Submit(func() {
			defer wg.Done()
			defer close(lane)
			for _, shard := range assigned {
				if err := copyShard(ctx, shard, lane); err != nil {
					errs <- err
					cancel()
					return
				}
			}
		})
		if submitErr != nil {
			wg.Done()
			close(lane)
			cancel()
			wg.Wait()
			return fmt.Errorf("failed to start shard reader: %w", submitErr)
		}
	}

	collectErr := st.collect(ctx, lanes, out)

	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
	}
	return collectErr
}

// collect round-robins over the lanes, forwarding blockLength records from
// each before moving on. Exhausted lanes drop out of the cycle.
func (st *readStage) collect(ctx context.Context, lanes []chan []byte, out chan<- []byte) error {
	done := make([]bool, len(lanes))
	open := len(lanes)

	for open > 0 {
		for i, lane := range lanes {
			if done[i] {
				continue
			}
			for k := 0; k < st.blockLength; k++ {
				var record []byte
				var ok bool
				select {
				case record, ok = <-lane:
				case <-ctx.Done():
					return context.Cause(ctx)
				}
				if !ok {
					done[i] = true
					open--
					break
				}
				select {
				case out <- record:
				case <-ctx.Done():
					return context.Cause(ctx)
				}
			}
		}
	}
	return nil
}

// copyShard opens a shard and forwards all its records to out.
func copyShard(ctx context.Context, shard Shard, out chan<- []byte) error {
	reader, err := shard.Open(ctx)
	if err != nil {
		return fmt.Errorf("failed to open shard %s: %w", shard.Name(), err)
	}
	defer reader.Close()

	for {
		record, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read shard %s: %w", shard.Name(), err)
		}
		select {
		case out <- record:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
