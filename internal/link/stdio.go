package link

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/boopdotpng/auto-chessboard/internal/events"
	"github.com/boopdotpng/auto-chessboard/internal/wire"
)

// RunStdio speaks the wire protocol over a line stream, one frame per
// line. The serial bridge points it at the board's tty; tests point it
// at buffers. It blocks until the input is exhausted or ctx is
// canceled.
func RunStdio(ctx context.Context, bus *events.Bus, in io.Reader, out io.Writer) error {
	var mu sync.Mutex
	writeLine := func(line string) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintln(out, line)
	}

	bus.Register(func(ev events.Event) error {
		if line, ok := wire.Encode(ev); ok {
			writeLine(line)
		}
		return nil
	})

	done := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			ev, err := wire.Decode(line)
			if err != nil {
				if reply, ok := wire.Encode(events.InvalidMove{Reason: err.Error()}); ok {
					writeLine(reply)
				}
				continue
			}
			bus.Publish(ev)
		}
		done <- scanner.Err()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}
