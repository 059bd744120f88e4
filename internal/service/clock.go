package service

import (
	"sync"
	"time"
)

// Clock supplies the server-side current moment. Callers never pass their
// own timestamps into the workflows.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// DayStart returns local midnight of t's day, the attendance bucket key
func DayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

type dayKey struct {
	userID uint
	date   string
}

// dayLocks serializes CheckIn/CheckOut per (user, day). Entries are reference
// counted and dropped when the last holder leaves.
type dayLocks struct {
	mu    sync.Mutex
	locks map[dayKey]*dayLock
}

type dayLock struct {
	sync.Mutex
	refs int
}

func newDayLocks() *dayLocks {
	return &dayLocks{locks: make(map[dayKey]*dayLock)}
}

func (d *dayLocks) lock(userID uint, day time.Time) func() {
	key := dayKey{userID: userID, date: day.Format("2006-01-02")}

	d.mu.Lock()
	l, ok := d.locks[key]
	if !ok {
		l = &dayLock{}
		d.locks[key] = l
	}
	l.refs++
	d.mu.Unlock()

	l.Lock()

	return func() {
		l.Unlock()

		d.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(d.locks, key)
		}
		d.mu.Unlock()
	}
}
