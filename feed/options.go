package feed

import (
	"log/slog"
	"time"

	"github.com/poiesic/recordfeed/core"
	"github.com/poiesic/recordfeed/labelmap"
)

// TransformFunc mutates a decoded example before batching, e.g. for
// augmentation or normalization. Transforms run concurrently and must not
// share mutable state.
type TransformFunc func(*core.Example) error

// settings carries everything the functional options can configure. The
// zero batch size means unbatched: the dataset yields one example at a
// time.
type settings struct {
	batchSize int
	transform TransformFunc
	source    Source
	labels    *labelmap.Map
	logger    *slog.Logger
	name      string
	seed      int64
}

// Option configures a pipeline built with Build, ReadRecords or
// NewIterator.
type Option func(*settings) error

func newSettings(opts []Option) (*settings, error) {
	s := &settings{
		logger: slog.Default(),
		name:   "recordfeed",
		seed:   time.Now().UnixNano(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// WithBatchSize sets the number of examples per yielded batch. Short final
// batches are dropped. 0 disables batching.
func WithBatchSize(size int) Option {
	return func(s *settings) error {
		if size < 0 {
			size = 0
		}
		s.batchSize = size
		return nil
	}
}

// WithTransform sets a per-example transform applied after decoding.
func WithTransform(fn TransformFunc) Option {
	return func(s *settings) error {
		s.transform = fn
		return nil
	}
}

// WithSource overrides the source the configuration describes, e.g. to
// feed an already-open record store.
func WithSource(src Source) Option {
	return func(s *settings) error {
		s.source = src
		return nil
	}
}

// WithLabelMap sets the label map directly instead of loading it from the
// configured path.
func WithLabelMap(labels *labelmap.Map) Option {
	return func(s *settings) error {
		s.labels = labels
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithName sets the dataset name reported to the training loop.
func WithName(name string) Option {
	return func(s *settings) error {
		s.name = name
		return nil
	}
}

// WithSeed fixes the shuffle seed for reproducible runs. Default is the
// current time.
func WithSeed(seed int64) Option {
	return func(s *settings) error {
		s.seed = seed
		return nil
	}
}
