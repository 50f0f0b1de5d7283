package cron

import (
	"context"
	"sync"
	"testing"
	"ticket-rush/common/vars"
	"ticket-rush/model"
	"ticket-rush/service/queue"
	"ticket-rush/service/reservation"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/suite"
)

// fakeTickLock records holds and releases; held=false simulates another
// replica owning the tick.
type fakeTickLock struct {
	mu       sync.Mutex
	held     bool
	err      error
	holds    []string
	releases int
}

func (l *fakeTickLock) TryHold(_ context.Context, key string) (func(context.Context), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.err != nil {
		return nil, false, l.err
	}
	if !l.held {
		return nil, false, nil
	}

	l.holds = append(l.holds, key)
	return func(context.Context) {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.releases++
	}, true, nil
}

// tickQueueStore implements only the store calls the scheduler paths reach;
// the embedded nil interface makes any other call an immediate test failure.
type tickQueueStore struct {
	queue.Store

	mu            sync.Mutex
	pendingEvents []int64
	pendingCalls  int
	overdue       []model.QueueEntry
	expired       []int64
	shuffleCalls  int
}

func (s *tickQueueStore) EventIdsWithPendingEntries(context.Context) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingCalls++
	return s.pendingEvents, nil
}

func (s *tickQueueStore) ListOverdueEntered(_ context.Context, _ int64, _ time.Time, _ int32) ([]model.QueueEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.overdue
	s.overdue = nil
	return out, nil
}

func (s *tickQueueStore) MarkExpired(_ context.Context, entryID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expired = append(s.expired, entryID)
	return true, nil
}

func (s *tickQueueStore) CountEntered(context.Context, int64) (int64, error) { return 0, nil }

func (s *tickQueueStore) ListWaitingByRank(context.Context, int64, int32) ([]model.QueueEntry, error) {
	return nil, nil
}

func (s *tickQueueStore) EventIdsWithUnqueuedRegistrations(context.Context) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return []int64{1}, nil
}

func (s *tickQueueStore) ShuffleCandidates(context.Context, int64, int32) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shuffleCalls++
	return nil, nil
}

type tickReservationStore struct {
	reservation.Store

	mu      sync.Mutex
	overdue []model.Ticket
	failed  []int64
}

func (s *tickReservationStore) ListOverdueDrafts(context.Context, time.Time, int32) ([]model.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.overdue
	s.overdue = nil
	return out, nil
}

func (s *tickReservationStore) FailTicket(_ context.Context, ticketID, _ int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed = append(s.failed, ticketID)
	return true, nil
}

func (s *tickReservationStore) FindSeat(_ context.Context, seatID int64) (model.Seat, error) {
	return model.Seat{ID: seatID, EventID: 1, SeatCode: "A-1", Status: model.SeatStatusAvailable}, nil
}

type SchedulerCronTestSuite struct {
	suite.Suite

	Cfg              *viper.Viper
	Lock             *fakeTickLock
	QueueStore       *tickQueueStore
	ReservationStore *tickReservationStore
	Cron             SchedulerCron

	now time.Time
}

func (s *SchedulerCronTestSuite) SetupTest() {
	vars.Reset()

	s.Cfg = viper.New()
	s.Cfg.Set("cron.entry.timeout", time.Second)
	s.Cfg.Set("cron.shuffle.timeout", time.Second)
	s.Cfg.Set("cron.reclaim.timeout", time.Second)
	s.Cfg.Set("cron.shuffle.size", 100)

	s.Lock = &fakeTickLock{held: true}
	s.QueueStore = &tickQueueStore{}
	s.ReservationStore = &tickReservationStore{}
	s.now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	s.Cron = SchedulerCron{
		Cfg:  s.Cfg,
		Lock: s.Lock,
		Queue: &queue.Engine{
			Store:      s.QueueStore,
			Window:     10 * time.Minute,
			BatchSize:  10,
			MaxEntered: 10,
			PageSize:   10,
			MaxPerRun:  100,
			TimeNow:    func() time.Time { return s.now },
		},
		Reservation: &reservation.Engine{
			Store:     s.ReservationStore,
			DraftTTL:  5 * time.Minute,
			PageSize:  10,
			MaxPerRun: 100,
			TimeNow:   func() time.Time { return s.now },
		},
		TimeNow: func() time.Time { return s.now },
	}
}

func TestSchedulerCronTestSuite(t *testing.T) {
	suite.Run(t, new(SchedulerCronTestSuite))
}

func (s *SchedulerCronTestSuite) TestEntryTickExpiresAndReports() {
	enteredAt := s.now.Add(-20 * time.Minute)
	expiresAt := s.now.Add(-10 * time.Minute)
	s.QueueStore.pendingEvents = []int64{1}
	s.QueueStore.overdue = []model.QueueEntry{
		{ID: 3, EventID: 1, UserID: 10, Rank: 1, Status: model.QueueEntryStatusEntered, EnteredAt: &enteredAt, ExpiresAt: &expiresAt},
	}

	s.Cron.entryTick(context.Background())

	s.Equal([]int64{3}, s.QueueStore.expired)
	s.Equal(1, s.Lock.releases)

	report, ok := vars.GetReports()["queue-expire"]
	s.True(ok, "entry tick must publish the expire report")
	s.Equal(1, report.Succeeded)
}

func (s *SchedulerCronTestSuite) TestEntryTickSkipsWhenHeldElsewhere() {
	s.Lock.held = false
	s.QueueStore.pendingEvents = []int64{1}

	s.Cron.entryTick(context.Background())

	s.Zero(s.QueueStore.pendingCalls)
	s.Empty(vars.GetReports())
}

func (s *SchedulerCronTestSuite) TestEntryTickSkipsOnLockError() {
	s.Lock.err = context.DeadlineExceeded
	s.QueueStore.pendingEvents = []int64{1}

	s.Cron.entryTick(context.Background())

	s.Zero(s.QueueStore.pendingCalls)
}

func (s *SchedulerCronTestSuite) TestShuffleTickHonorsWindow() {
	s.Cfg.Set("cron.shuffle.from", "09:00")
	s.Cfg.Set("cron.shuffle.until", "21:00")

	s.now = time.Date(2025, 6, 1, 22, 0, 0, 0, time.UTC)
	s.Cron.shuffleTick(context.Background())
	s.Zero(s.QueueStore.shuffleCalls, "shuffle must not run outside the window")
	s.Empty(s.Lock.holds)

	s.now = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	s.Cron.shuffleTick(context.Background())
	s.Equal(1, s.QueueStore.shuffleCalls)
	s.Equal(1, s.Lock.releases)
}

func (s *SchedulerCronTestSuite) TestShuffleWindowBoundaries() {
	s.Cfg.Set("cron.shuffle.from", "09:00")
	s.Cfg.Set("cron.shuffle.until", "21:00")

	cases := []struct {
		clock  string
		within bool
	}{
		{"08:59", false},
		{"09:00", true},
		{"20:59", true},
		{"21:00", false},
	}

	for _, tc := range cases {
		clock, err := time.Parse("15:04", tc.clock)
		s.Require().NoError(err)

		s.now = time.Date(2025, 6, 1, clock.Hour(), clock.Minute(), 0, 0, time.UTC)
		s.Equal(tc.within, s.Cron.withinShuffleWindow(), tc.clock)
	}
}

func (s *SchedulerCronTestSuite) TestShuffleWindowDisabledWhenUnset() {
	s.now = time.Date(2025, 6, 1, 3, 0, 0, 0, time.UTC)
	s.True(s.Cron.withinShuffleWindow())
}

func (s *SchedulerCronTestSuite) TestReclaimTickReports() {
	s.ReservationStore.overdue = []model.Ticket{
		{ID: 77, ExternalID: "01J0000000000000000000TICK", EventID: 1, SeatID: 5, UserID: 10,
			Status: model.TicketStatusDraft, CreatedAt: s.now.Add(-time.Hour)},
	}

	s.Cron.reclaimTick(context.Background())

	s.Equal([]int64{77}, s.ReservationStore.failed)
	s.Equal(1, s.Lock.releases)

	report, ok := vars.GetReports()["draft-reclaim"]
	s.True(ok, "reclaim tick must publish its report")
	s.Equal(1, report.Succeeded)
}
