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


// Package recordfeed turns declarative input reader configurations into
// streaming pipelines of decoded, batched training examples. This package
// is the facade: configuration loading plus pipeline assembly. The
// subpackages carry the pieces: config, decode, feed, labelmap, recordio
// and store.
package recordfeed

import (
	"fmt"

	"github.com/poiesic/recordfeed/config"
	"github.com/poiesic/recordfeed/feed"
)

// Open loads the configuration file at configPath and builds its pipeline.
// The returned dataset implements gomlx train.Dataset and must be closed
// when done.
func Open(configPath string, opts ...feed.Option) (*feed.Dataset, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load reader config: %w", err)
	}
	return feed.Build(cfg, opts...)
}

// OpenIterator loads the configuration file at configPath and returns a
// pull-style iterator over its pipeline.
func OpenIterator(configPath string, opts ...feed.Option) (*feed.Iterator, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load reader config: %w", err)
	}
	return feed.NewIterator(cfg, opts...)
}
