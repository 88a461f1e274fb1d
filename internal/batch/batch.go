// Package batch parses many citations concurrently against one parser.
package batch

import (
	"context"
	"runtime"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/FocuswithJustin/lectio/core/citation"
	"github.com/FocuswithJustin/lectio/core/errors"
	"github.com/FocuswithJustin/lectio/internal/normalize"
)

// Status is the outcome of parsing one input.
type Status string

const (
	StatusOK       Status = "ok"
	StatusNotFound Status = "not_found"
	StatusInvalid  Status = "invalid"
)

// Result is the outcome for one input, at the input's index.
type Result struct {
	ID        string              `json:"id"`
	Index     int                 `json:"index"`
	Input     string              `json:"input"`
	Citation  string              `json:"citation"`
	Status    Status              `json:"status"`
	Locations []citation.Location `json:"locations,omitempty"`
	Compact   string              `json:"compact,omitempty"`
	Error     string              `json:"error,omitempty"`
}

// Options controls ParseAll.
type Options struct {
	// Workers bounds concurrency; values below 1 mean GOMAXPROCS.
	Workers int
	// Strict rejects malformed citations as StatusInvalid before resolving.
	Strict bool
	// Normalize cleans raw lectionary links first.
	Normalize bool
}

// ParseAll parses inputs with at most opts.Workers goroutines and returns
// one Result per input in input order. Per-input failures are reported in
// the Result; the error is non-nil only when ctx ends first.
func ParseAll(ctx context.Context, p *citation.Parser, inputs []string, opts Options) ([]Result, error) {
	workers := opts.Workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	results := make([]Result, len(inputs))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, input := range inputs {
		if gCtx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			results[i] = parseOne(p, i, input, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func parseOne(p *citation.Parser, index int, input string, opts Options) Result {
	r := Result{ID: uuid.NewString(), Index: index, Input: input, Citation: input}
	if opts.Normalize {
		r.Citation = normalize.Link(input)
	}

	var set *citation.LocationSet
	if opts.Strict {
		var err error
		set, err = p.ParseStrict(r.Citation)
		if err != nil {
			r.Error = err.Error()
			r.Status = StatusInvalid
			if errors.Is(err, errors.ErrNotFound) {
				r.Status = StatusNotFound
			}
			return r
		}
	} else {
		var ok bool
		if set, ok = p.Parse(r.Citation); !ok {
			r.Status = StatusNotFound
			return r
		}
	}
	r.Status = StatusOK
	r.Locations = set.Locations
	r.Compact = citation.FormatLocations(set.Locations)
	return r
}

// Summary counts results by status.
type Summary struct {
	Total    int `json:"total"`
	OK       int `json:"ok"`
	NotFound int `json:"not_found"`
	Invalid  int `json:"invalid"`
}

// Summarize counts results by status.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		switch r.Status {
		case StatusOK:
			s.OK++
		case StatusNotFound:
			s.NotFound++
		case StatusInvalid:
			s.Invalid++
		}
	}
	return s
}
