package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"time"
)

var errAnswerTimeout = errors.New("answer time is up")

type lineResult struct {
	line string
	err  error
}

// lineReader feeds input lines through a channel so prompts can wait with
// a deadline. One goroutine owns the underlying reader.
type lineReader struct {
	lines chan lineResult
	done  chan struct{}
}

func newLineReader(in io.Reader) *lineReader {
	r := &lineReader{
		lines: make(chan lineResult),
		done:  make(chan struct{}),
	}
	go func() {
		defer close(r.lines)
		reader := bufio.NewReader(in)
		for {
			line, err := reader.ReadString('\n')
			if line != "" && !r.send(lineResult{line: line}) {
				return
			}
			if err != nil {
				r.send(lineResult{err: err})
				return
			}
		}
	}()
	return r
}

func (r *lineReader) send(result lineResult) bool {
	select {
	case r.lines <- result:
		return true
	case <-r.done:
		return false
	}
}

// close releases the reading goroutine once it is unblocked by input.
func (r *lineReader) close() {
	close(r.done)
}

// next waits for a line. A non-positive timeout waits indefinitely.
func (r *lineReader) next(ctx context.Context, timeout time.Duration) (string, error) {
	var deadline <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	select {
	case result, ok := <-r.lines:
		if !ok {
			return "", io.EOF
		}
		return result.line, result.err
	case <-deadline:
		return "", errAnswerTimeout
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
