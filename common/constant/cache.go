package constant

import "time"

const (
	SeatLockKey          = "seat_lock:%d:%d"
	SchedulerEntryLock   = "sched_lock:entry_tick"
	SchedulerShuffleLock = "sched_lock:shuffle_tick"
	SchedulerReclaimLock = "sched_lock:draft_reclaim_tick"
)

const (
	SeatLockDefaultWait  = 100 * time.Millisecond
	SeatLockDefaultLease = 500 * time.Millisecond
)
