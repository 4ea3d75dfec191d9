package secret

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Prompt asks a human on a terminal.
// One background reader owns the input for the lifetime of the channel,
// so a prompt that timed out never swallows the answer to the next one.
type Prompt struct {
	in  io.Reader
	out io.Writer

	once  sync.Once
	lines chan string
	mu    sync.Mutex
}

// NewPrompt creates a prompt reading answers from in and writing questions to out.
func NewPrompt(in io.Reader, out io.Writer) *Prompt {
	return &Prompt{in: in, out: out}
}

// Request asks for each descriptor in turn until the deadline passes.
func (p *Prompt) Request(ctx context.Context, req Request) (map[string]string, error) {
	if len(req.Descriptors) == 0 {
		return nil, ErrUnavailable
	}

	p.once.Do(p.startReader)

	// Prompts from concurrent sign-ins would interleave on one terminal.
	p.mu.Lock()
	defer p.mu.Unlock()

	ctx, cancel := withDeadline(ctx, req.Timeout)
	defer cancel()

	found := make(map[string]string, len(req.Descriptors))

	for _, d := range req.Descriptors {
		//nolint:errcheck // Nothing useful to do when the terminal is gone.
		fmt.Fprintf(p.out, "%s (%s), waiting up to %s: ", d.Name, d.Description, req.Timeout)

		select {
		case <-ctx.Done():
			fmt.Fprintln(p.out) //nolint:errcheck // See above.

			return partial(found)
		case line, ok := <-p.lines:
			if !ok {
				return partial(found)
			}

			if value := strings.TrimSpace(line); value != "" {
				found[d.Name] = value
			}
		}
	}

	return partial(found)
}

func (p *Prompt) startReader() {
	p.lines = make(chan string)

	go func() {
		defer close(p.lines)

		scanner := bufio.NewScanner(p.in)
		for scanner.Scan() {
			p.lines <- scanner.Text()
		}
	}()
}

func partial(found map[string]string) (map[string]string, error) {
	if len(found) == 0 {
		return nil, ErrUnavailable
	}

	return found, nil
}
