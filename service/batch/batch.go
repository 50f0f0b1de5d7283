// Package batch is the shared scaffolding for paginated, failure-isolated,
// rate-bounded batch jobs driven by the scheduler ticks.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"ticket-rush/common/constant"

	"github.com/oklog/ulid/v2"
)

type Options struct {
	PageSize int32
	MaxItems int32 // hard per-run item cap, bounds worst-case tick duration
}

// Report describes one run. CapHit signals backlog growth that operators
// must address: the run stopped at MaxItems with work likely remaining.
type Report struct {
	RunID     string
	Job       string
	Examined  int
	Succeeded int
	Failed    int
	CapHit    bool
}

// Run drives a batch job page by page. One item's failure is logged with
// the run ID and item key, counted, and never aborts the rest of the batch.
// fetch must re-evaluate its predicate each call: handled items are expected
// to drop out of the result set, so pages are always fetched from the start.
func Run[T any](
	ctx context.Context,
	job string,
	opts Options,
	fetch func(ctx context.Context, limit int32) ([]T, error),
	key func(item T) string,
	handle func(ctx context.Context, item T) error,
) (Report, error) {
	if opts.PageSize <= 0 {
		opts.PageSize = 100
	}
	if opts.MaxItems <= 0 {
		opts.MaxItems = 1000
	}

	report := Report{RunID: ulid.Make().String(), Job: job}
	runIdAttr := slog.String(constant.LogFieldRunId, report.RunID)
	jobAttr := slog.String(constant.LogFieldJob, job)

	for {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		limit := opts.PageSize
		if remaining := opts.MaxItems - int32(report.Examined); remaining <= 0 {
			report.CapHit = true
			slog.WarnContext(ctx, "batch run cap hit", runIdAttr, jobAttr, slog.Int("examined", report.Examined))
			break
		} else if limit > remaining {
			limit = remaining
		}

		items, err := fetch(ctx, limit)
		if err != nil {
			return report, fmt.Errorf("fetch %s page: %w", job, err)
		}

		if len(items) == 0 {
			break
		}

		progressed := false
		for _, item := range items {
			report.Examined++

			if err := handle(ctx, item); err != nil {
				report.Failed++
				slog.ErrorContext(ctx, "batch item failed", runIdAttr, jobAttr,
					slog.String("item", key(item)), slog.Any(constant.LogFieldErr, err))
				continue
			}

			report.Succeeded++
			progressed = true
		}

		if int32(len(items)) < limit {
			break
		}

		// A full page with zero successes would refetch the same records.
		if !progressed {
			break
		}
	}

	slog.InfoContext(ctx, "batch run finished", runIdAttr, jobAttr,
		slog.Int("examined", report.Examined),
		slog.Int("succeeded", report.Succeeded),
		slog.Int("failed", report.Failed),
		slog.Bool("cap_hit", report.CapHit),
	)

	return report, nil
}
