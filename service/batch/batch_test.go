package batch

import (
	"context"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/suite"
)

// backlog mimics a predicate-driven table: handled items drop out of the
// fetch result, failing items stay in.
type backlog struct {
	items   []int
	handled map[int]bool
	failing map[int]bool
}

func newBacklog(n int) *backlog {
	b := &backlog{handled: make(map[int]bool), failing: make(map[int]bool)}
	for i := 1; i <= n; i++ {
		b.items = append(b.items, i)
	}
	return b
}

func (b *backlog) fetch(_ context.Context, limit int32) ([]int, error) {
	var out []int
	for _, item := range b.items {
		if b.handled[item] {
			continue
		}
		out = append(out, item)
		if int32(len(out)) == limit {
			break
		}
	}
	return out, nil
}

func (b *backlog) handle(_ context.Context, item int) error {
	if b.failing[item] {
		return fmt.Errorf("item %d broken", item)
	}
	b.handled[item] = true
	return nil
}

type BatchRunTestSuite struct {
	suite.Suite
}

func TestBatchRunTestSuite(t *testing.T) {
	suite.Run(t, new(BatchRunTestSuite))
}

func (s *BatchRunTestSuite) TestRunDrainsBacklog() {
	b := newBacklog(25)

	report, err := Run(context.Background(), "test-job",
		Options{PageSize: 10, MaxItems: 100},
		b.fetch, strconv.Itoa, b.handle)

	s.NoError(err)
	s.Equal("test-job", report.Job)
	s.NotEmpty(report.RunID)
	s.Equal(25, report.Examined)
	s.Equal(25, report.Succeeded)
	s.Equal(0, report.Failed)
	s.False(report.CapHit)
}

func (s *BatchRunTestSuite) TestRunIsolatesItemFailures() {
	b := newBacklog(10)
	b.failing[3] = true
	b.failing[7] = true

	report, err := Run(context.Background(), "test-job",
		Options{PageSize: 20, MaxItems: 100},
		b.fetch, strconv.Itoa, b.handle)

	s.NoError(err)
	s.Equal(10, report.Examined)
	s.Equal(8, report.Succeeded)
	s.Equal(2, report.Failed)
	s.True(b.handled[4], "items after a failure must still be handled")
}

func (s *BatchRunTestSuite) TestRunStopsAtCap() {
	b := newBacklog(50)

	report, err := Run(context.Background(), "test-job",
		Options{PageSize: 10, MaxItems: 30},
		b.fetch, strconv.Itoa, b.handle)

	s.NoError(err)
	s.Equal(30, report.Examined)
	s.Equal(30, report.Succeeded)
	s.True(report.CapHit)
}

func (s *BatchRunTestSuite) TestRunStopsOnStuckPage() {
	b := newBacklog(10)
	for i := 1; i <= 10; i++ {
		b.failing[i] = true
	}

	report, err := Run(context.Background(), "test-job",
		Options{PageSize: 5, MaxItems: 100},
		b.fetch, strconv.Itoa, b.handle)

	s.NoError(err)
	s.Equal(5, report.Examined, "a full page with zero progress must not refetch forever")
	s.Equal(5, report.Failed)
}

func (s *BatchRunTestSuite) TestRunPropagatesFetchError() {
	fetchErr := fmt.Errorf("db down")

	_, err := Run(context.Background(), "test-job",
		Options{},
		func(context.Context, int32) ([]int, error) { return nil, fetchErr },
		strconv.Itoa,
		func(context.Context, int) error { return nil })

	s.ErrorIs(err, fetchErr)
}

func (s *BatchRunTestSuite) TestRunHonorsContextCancellation() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := newBacklog(10)
	report, err := Run(ctx, "test-job", Options{}, b.fetch, strconv.Itoa, b.handle)

	s.ErrorIs(err, context.Canceled)
	s.Equal(0, report.Examined)
}
