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


package decode

import (
	"fmt"

	"github.com/poiesic/recordfeed/config"
	"github.com/poiesic/recordfeed/core"
	"github.com/poiesic/recordfeed/labelmap"
)

// Decoder turns serialized records into validated examples with resolved
// class ids. A Decoder is safe for concurrent use.
type Decoder struct {
	labels             *labelmap.Map
	useDisplayName     bool
	loadMasks          bool
	additionalChannels int
}

// Option configures a Decoder.
type Option func(*Decoder) error

// WithLabelMap sets the label map directly instead of loading it from the
// configured path.
func WithLabelMap(labels *labelmap.Map) Option {
	return func(d *Decoder) error {
		d.labels = labels
		return nil
	}
}

// NewDecoder creates a decoder for the given reader configuration, loading
// the configured label map unless one is supplied via WithLabelMap.
func NewDecoder(cfg *config.InputReader, opts ...Option) (*Decoder, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}

	d := &Decoder{
		useDisplayName:     cfg.UseDisplayName,
		loadMasks:          cfg.LoadMasks,
		additionalChannels: cfg.AdditionalChannels,
	}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}

	if d.labels == nil && cfg.LabelMapPath != "" {
		labels, err := labelmap.Load(cfg.LabelMapPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load label map: %w", err)
		}
		d.labels = labels
	}

	return d, nil
}

// Decode deserializes one record, validates it, and resolves class names to
// class ids. The returned example is freshly allocated.
func (d *Decoder) Decode(data []byte) (*core.Example, error) {
	example, n, err := core.ExampleMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUndecodable, err)
	}
	if n != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrTrailingBytes, len(data)-n)
	}

	if err := core.ValidateExample(&example); err != nil {
		return nil, err
	}

	if err := d.apply(&example); err != nil {
		return nil, err
	}
	return &example, nil
}

// apply resolves classes and enforces decoder options on a deserialized
// example.
func (d *Decoder) apply(example *core.Example) error {
	if len(example.Classes) > 0 {
		if d.labels == nil {
			return fmt.Errorf("%w: example %s has %d classes",
				ErrNoLabelMap, example.SourceId, len(example.Classes))
		}
		example.ClassIds = make([]int64, len(example.Classes))
		for i, name := range example.Classes {
			id, ok := d.lookup(name)
			if !ok {
				return fmt.Errorf("%w: %q", ErrUnknownClass, name)
			}
			example.ClassIds[i] = id
		}
	}

	if !d.loadMasks {
		example.Masks = nil
	}

	if want := d.additionalChannels * example.NumPixels(); len(example.Extra) != want {
		return fmt.Errorf("%w: example %s has %d extra values, want %d",
			ErrAdditionalChannels, example.SourceId, len(example.Extra), want)
	}

	return nil
}

func (d *Decoder) lookup(name string) (int64, bool) {
	if d.useDisplayName {
		return d.labels.LookupDisplay(name)
	}
	return d.labels.Lookup(name)
}

// Labels returns the decoder's label map, or nil when none is configured.
func (d *Decoder) Labels() *labelmap.Map {
	return d.labels
}
