// Package batch evaluates a csv file of withdrawal requests
package batch

import (
	"context"
	"fmt"
	"io"
	logger "log"
	"os"

	"github.com/bonoaccess/accesscheck/business/eligibility"
	"golang.org/x/sync/errgroup"
)

// Result is the outcome of evaluating one Row
type Result struct {
	Row      Row
	Decision eligibility.Decision
	// Err holds the validation error of the row, if any
	Err error
}

// String formats the result as one report line
func (r Result) String() string {
	if r.Err != nil {
		return fmt.Sprintf("line %d: %s", r.Row.Line, r.Err)
	}
	outcome := "denied"
	if r.Decision.Permitted {
		outcome = "permitted"
	}
	return fmt.Sprintf("line %d: %s %s %s %s %s (%s)", r.Row.Line, r.Row.Identity, r.Row.Date, r.Row.Time,
		r.Decision.Weekday, outcome, r.Decision.Reason)
}

// Evaluate evaluates rows concurrently with at most workers evaluations in flight.
// Results are in the order of rows. Rows failing validation carry their error in Result.Err,
// any other error, such as a failing holiday lookup, cancels the remaining evaluations and is returned.
func Evaluate(ctx context.Context, evaluator *eligibility.Evaluator, rows []Row, workers int) ([]Result, error) {
	if workers < 1 {
		workers = 1
	}
	results := make([]Result, len(rows))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, row := range rows {
		i, row := i, row
		g.Go(func() error {
			req, err := eligibility.ParseRequest(row.Identity, row.Date, row.Time)
			if err != nil {
				results[i] = Result{Row: row, Err: err}
				return nil
			}
			decision, err := evaluator.Decide(ctx, req)
			if err != nil {
				return fmt.Errorf("line %d: %w", row.Line, err)
			}
			results[i] = Result{Row: row, Decision: decision}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Run reads the batch file at path, evaluates its rows and writes one line per row to out
func Run(ctx context.Context, log *logger.Logger, evaluator *eligibility.Evaluator, path string, workers int, out io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening batch file: %w", err)
	}

	defer func() {
		_ = f.Close()
	}()

	rows, err := ReadRows(f, path)
	if err != nil {
		return err
	}
	log.Printf("batch: evaluating %d rows from %s with %d workers", len(rows), path, workers)

	results, err := Evaluate(ctx, evaluator, rows, workers)
	if err != nil {
		return err
	}

	permitted, invalid := 0, 0
	for _, result := range results {
		if result.Err != nil {
			invalid++
		} else if result.Decision.Permitted {
			permitted++
		}
		if _, err := fmt.Fprintln(out, result); err != nil {
			return fmt.Errorf("writing batch results: %w", err)
		}
	}
	log.Printf("batch: %d rows, %d permitted, %d denied, %d invalid",
		len(results), permitted, len(results)-permitted-invalid, invalid)
	return nil
}
