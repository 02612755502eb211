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


package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/poiesic/recordfeed/config"
	"github.com/poiesic/recordfeed/core"
	"github.com/poiesic/recordfeed/feed"
	"github.com/poiesic/recordfeed/recordio"
	badgerstore "github.com/poiesic/recordfeed/store/badger"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "recordfeed",
		Usage: "Training-data record tooling: convert, inspect and benchmark record feeds",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "convert",
				Usage:     "Load record files into a record store",
				ArgsUsage: "PATTERN [PATTERN...]",
				Action:    convertCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "store",
						Aliases:  []string{"s"},
						Usage:    "Path to the record store directory",
						Required: true,
					},
				},
			},
			{
				Name:   "export",
				Usage:  "Write the contents of a record store to a record file",
				Action: exportCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "store",
						Aliases:  []string{"s"},
						Usage:    "Path to the record store directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "out",
						Aliases:  []string{"o"},
						Usage:    "Output record file path",
						Required: true,
					},
				},
			},
			{
				Name:      "inspect",
				Usage:     "Summarize record files: counts, class histogram, image shapes",
				ArgsUsage: "PATTERN [PATTERN...]",
				Action:    inspectCommand,
			},
			{
				Name:   "bench",
				Usage:  "Run a configured pipeline and report throughput",
				Action: benchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "config",
						Aliases:  []string{"c"},
						Usage:    "Path to the reader configuration file",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of examples per batch",
						Value: 32,
					},
					&cli.IntFlag{
						Name:  "max-batches",
						Usage: "Stop after N batches (0 runs to the end of the input)",
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N examples",
						Value: 1000,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

// forEachRecordFile opens every file matched by the patterns in turn and
// hands its reader to fn.
func forEachRecordFile(patterns []string, fn func(path string, reader *recordio.Reader) error) error {
	src := feed.NewFileSource(patterns, 0)
	shards, err := src.Shards(context.Background())
	if err != nil {
		return err
	}

	for _, shard := range shards {
		reader, err := recordio.Open(shard.Name())
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", shard.Name(), err)
		}
		err = fn(shard.Name(), reader)
		reader.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func convertCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one record file pattern is required")
	}

	rs, err := badgerstore.Open(c.String("store"))
	if err != nil {
		return fmt.Errorf("failed to open record store: %w", err)
	}
	defer rs.Close()

	ctx := context.Background()
	total := 0
	err = forEachRecordFile(c.Args().Slice(), func(path string, reader *recordio.Reader) error {
		count := 0
		for {
			example, err := reader.NextExample()
			if err == io.EOF {
				break
			}
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}
			if _, err := rs.AddExamples(ctx, example); err != nil {
				return fmt.Errorf("failed to store example from %s: %w", path, err)
			}
			count++
		}
		slog.Info("converted record file", "path", path, "examples", count)
		total += count
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Printf("Stored %d examples in %s\n", total, c.String("store"))
	return nil
}

func exportCommand(c *cli.Context) error {
	rs, err := badgerstore.Open(c.String("store"))
	if err != nil {
		return fmt.Errorf("failed to open record store: %w", err)
	}
	defer rs.Close()

	ctx := context.Background()
	reader, err := rs.OpenShard(ctx, 0, 1)
	if err != nil {
		return err
	}
	defer reader.Close()

	writer, err := recordio.Create(c.String("out"))
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", c.String("out"), err)
	}

	for {
		record, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			writer.Close()
			return fmt.Errorf("failed to read store: %w", err)
		}
		if err := writer.AppendRaw(record); err != nil {
			writer.Close()
			return fmt.Errorf("failed to write %s: %w", c.String("out"), err)
		}
	}
	if err := writer.Close(); err != nil {
		return err
	}

	fmt.Printf("Exported %d examples to %s\n", writer.Count(), c.String("out"))
	return nil
}

// shapeKey renders an image shape for the inspect histogram.
func shapeKey(example *core.Example) string {
	return fmt.Sprintf("%dx%dx%d", example.Height, example.Width, example.Channels)
}

func inspectCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one record file pattern is required")
	}

	total := 0
	boxes := 0
	classes := map[string]int{}
	shapes := map[string]int{}

	err := forEachRecordFile(c.Args().Slice(), func(path string, reader *recordio.Reader) error {
		for {
			example, err := reader.NextExample()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}
			total++
			boxes += len(example.Boxes)
			shapes[shapeKey(example)]++
			for _, class := range example.Classes {
				classes[class]++
			}
		}
	})
	if err != nil {
		return err
	}

	fmt.Printf("Examples: %d\n", total)
	fmt.Printf("Boxes:    %d\n", boxes)

	fmt.Println("Shapes:")
	for _, shape := range sortedKeys(shapes) {
		fmt.Printf("  %-16s %d\n", shape, shapes[shape])
	}

	if len(classes) > 0 {
		fmt.Println("Classes:")
		for _, class := range sortedKeys(classes) {
			fmt.Printf("  %-16s %d\n", class, classes[class])
		}
	}
	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func benchCommand(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	dataset, err := feed.Build(cfg, feed.WithBatchSize(c.Int("batch-size")))
	if err != nil {
		return err
	}
	defer dataset.Close()

	tracker := feed.NewProgressTracker(os.Stderr, c.Int("report-interval"))
	tracker.Start()

	ctx := context.Background()
	maxBatches := c.Int("max-batches")
	for maxBatches == 0 || tracker.Batches() < maxBatches {
		batch, err := dataset.NextBatch(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		tracker.ObserveBatch(batch.Size)
	}
	tracker.Finish()

	elapsed := tracker.Elapsed().Seconds()
	fmt.Printf("Read %d examples in %d batches in %.2fs (%.1f examples/s)\n",
		tracker.Examples(), tracker.Batches(), elapsed,
		float64(tracker.Examples())/elapsed)
	return nil
}
