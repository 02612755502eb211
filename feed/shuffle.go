package feed

import (
	"context"
	"math/rand"
)

// shuffleWithBuffer shuffles a slice with a sliding buffer of the given
// size, the way a streaming shuffle would: positions can only move within
// bufferSize of their origin when the buffer is smaller than the input.
// The input slice is not modified.
func shuffleWithBuffer[T any](items []T, bufferSize int, rng *rand.Rand) []T {
	out := make([]T, 0, len(items))
	if bufferSize < 1 {
		bufferSize = 1
	}

	buf := make([]T, 0, bufferSize)
	emit := func() {
		i := rng.Intn(len(buf))
		out = append(out, buf[i])
		buf[i] = buf[len(buf)-1]
		buf = buf[:len(buf)-1]
	}

	for _, item := range items {
		buf = append(buf, item)
		if len(buf) == bufferSize {
			emit()
		}
	}
	for len(buf) > 0 {
		emit()
	}
	return out
}

// shuffleRecords applies a streaming shuffle buffer to a record channel:
// records are held in a buffer of the given size and released in random
// order, then the buffer drains when the input closes. Runs until the
// input is exhausted or the context is cancelled.
func shuffleRecords(ctx context.Context, in <-chan []byte, out chan<- []byte, size int, rng *rand.Rand) error {
	if size < 1 {
		size = 1
	}
	buf := make([][]byte, 0, size)

	emit := func() error {
		i := rng.Intn(len(buf))
		record := buf[i]
		buf[i] = buf[len(buf)-1]
		buf = buf[:len(buf)-1]
		select {
		case out <- record:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	for {
		select {
		case record, ok := <-in:
			if !ok {
				for len(buf) > 0 {
					if err := emit(); err != nil {
						return err
					}
				}
				return nil
			}
			buf = append(buf, record)
			if len(buf) == size {
				if err := emit(); err != nil {
					return err
				}
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
