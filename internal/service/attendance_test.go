package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"hr-workflow/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckOut_WithoutCheckIn(t *testing.T) {
	f := newFixture(t)

	_, err := f.attendance.CheckOut(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNotCheckedIn)
	assert.Empty(t, f.notificationsFor(t, 1))
}

func TestCheckInCheckOut_SingleSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	session, err := f.attendance.CheckIn(ctx, 1)
	require.NoError(t, err)
	assert.True(t, session.IsActive())
	assert.True(t, session.CheckIn.Equal(at(9, 0)))

	f.clock.Set(at(12, 30))
	result, err := f.attendance.CheckOut(ctx, 1)
	require.NoError(t, err)
	assert.True(t, result.CheckIn.Equal(at(9, 0)))
	assert.True(t, result.CheckOut.Equal(at(12, 30)))
	assert.Equal(t, 3.5, result.SessionHours)
	assert.Equal(t, 3.5, result.TotalHours)

	assert.Equal(t, []string{models.TitleCheckedOut}, titles(f.notificationsFor(t, 1)))

	f.clock.Set(at(12, 45))
	_, err = f.attendance.CheckOut(ctx, 1)
	assert.ErrorIs(t, err, ErrNoActiveSession, "a second checkout has nothing to close")

	today, err := f.attendance.Today(ctx, 1)
	require.NoError(t, err)
	require.Len(t, today.Sessions, 1)
	assert.Equal(t, 3.5, today.Sessions[0].Hours(), "hours are written once")
	assert.False(t, today.CheckedIn)
}

func TestCheckIn_TwiceWithoutCheckOut(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.attendance.CheckIn(ctx, 1)
	require.NoError(t, err)

	f.clock.Set(at(9, 5))
	_, err = f.attendance.CheckIn(ctx, 1)
	assert.ErrorIs(t, err, ErrAlreadyCheckedIn)

	today, err := f.attendance.Today(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, today.Sessions, 1)
	assert.True(t, today.CheckedIn)
}

func TestCheckOut_TotalsAcrossSessions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	intervals := []struct {
		in, out time.Time
		hours   float64
	}{
		{at(9, 0), at(12, 0), 3},
		{at(13, 0), at(17, 20), 4.33},
		{at(18, 0), at(18, 40), 0.67},
	}

	var total float64
	for _, iv := range intervals {
		f.clock.Set(iv.in)
		_, err := f.attendance.CheckIn(ctx, 1)
		require.NoError(t, err)

		f.clock.Set(iv.out)
		result, err := f.attendance.CheckOut(ctx, 1)
		require.NoError(t, err)

		total = models.SumHours([]float64{total, iv.hours})
		assert.Equal(t, iv.hours, result.SessionHours)
		assert.Equal(t, total, result.TotalHours)
	}

	today, err := f.attendance.Today(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 8.0, today.TotalHours)
	assert.Equal(t, models.TotalFromSessions(today.Sessions), today.TotalHours)
	assert.Len(t, f.notificationsFor(t, 1), 3)
}

func TestCheckOut_ConcurrentCallsCloseOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.attendance.CheckIn(ctx, 1)
	require.NoError(t, err)
	f.clock.Set(at(17, 0))

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.attendance.CheckOut(ctx, 1)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrNoActiveSession)
	}
	assert.Equal(t, 1, succeeded)

	today, err := f.attendance.Today(ctx, 1)
	require.NoError(t, err)
	require.Len(t, today.Sessions, 1)
	assert.Equal(t, 8.0, today.TotalHours)
	assert.Len(t, f.notificationsFor(t, 1), 1)
}

func TestCheckOut_LatestOpenSessionWins(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	att, err := f.attendanceRepo.Upsert(ctx, 1, DayStart(at(0, 0)))
	require.NoError(t, err)
	early, err := f.attendanceRepo.CreateSession(ctx, att.ID, at(8, 0))
	require.NoError(t, err)
	late, err := f.attendanceRepo.CreateSession(ctx, att.ID, at(10, 0))
	require.NoError(t, err)

	f.clock.Set(at(11, 0))
	result, err := f.attendance.CheckOut(ctx, 1)
	require.NoError(t, err)
	assert.True(t, result.CheckIn.Equal(late.CheckIn))
	assert.Equal(t, 1.0, result.SessionHours)

	active, err := f.attendanceRepo.ActiveSessions(ctx, att.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, early.ID, active[0].ID)
}

func TestCheckOut_NotificationFailureKeepsSessionClosed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.attendance.CheckIn(ctx, 1)
	require.NoError(t, err)

	f.notificationRepo.fail = true
	f.clock.Set(at(11, 0))
	_, err = f.attendance.CheckOut(ctx, 1)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorIs(t, err, errStoreDown, "the cause stays wrapped")

	f.notificationRepo.fail = false
	today, err := f.attendance.Today(ctx, 1)
	require.NoError(t, err)
	assert.False(t, today.CheckedIn)
	assert.Equal(t, 2.0, today.TotalHours)

	_, err = f.attendance.CheckOut(ctx, 1)
	assert.ErrorIs(t, err, ErrNoActiveSession)
	assert.Empty(t, f.notificationsFor(t, 1))
}

func TestCheckOut_RetryRepairsStaleTotal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.attendance.CheckIn(ctx, 1)
	require.NoError(t, err)

	f.attendanceRepo.failTotals = 1
	f.clock.Set(at(10, 15))
	_, err = f.attendance.CheckOut(ctx, 1)
	require.ErrorIs(t, err, ErrStoreUnavailable)

	today, err := f.attendance.Today(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, today.TotalHours, "total was not written")
	require.Len(t, today.Sessions, 1)
	assert.False(t, today.Sessions[0].IsActive(), "session close is durable")

	_, err = f.attendance.CheckOut(ctx, 1)
	assert.ErrorIs(t, err, ErrNoActiveSession)

	today, err = f.attendance.Today(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1.25, today.TotalHours)
}

func TestCheckOut_NextDayDoesNotSeeYesterday(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.clock.Set(at(23, 0))
	_, err := f.attendance.CheckIn(ctx, 1)
	require.NoError(t, err)

	f.clock.Set(at(23, 0).Add(2 * time.Hour))
	_, err = f.attendance.CheckOut(ctx, 1)
	assert.ErrorIs(t, err, ErrNotCheckedIn)
}

func TestAttendance_UsersAreIndependent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.attendance.CheckIn(ctx, 1)
	require.NoError(t, err)
	_, err = f.attendance.CheckIn(ctx, 2)
	require.NoError(t, err)

	f.clock.Set(at(10, 0))
	_, err = f.attendance.CheckOut(ctx, 2)
	require.NoError(t, err)

	one, err := f.attendance.Today(ctx, 1)
	require.NoError(t, err)
	assert.True(t, one.CheckedIn)
	assert.Empty(t, f.notificationsFor(t, 1))
}

func TestAttendance_History(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for d := 0; d < 3; d++ {
		f.clock.Set(at(9, 0).AddDate(0, 0, d))
		_, err := f.attendance.CheckIn(ctx, 1)
		require.NoError(t, err)
		f.clock.Set(at(17, 0).AddDate(0, 0, d))
		_, err = f.attendance.CheckOut(ctx, 1)
		require.NoError(t, err)
	}

	days, err := f.attendance.History(ctx, 1, at(12, 0), at(12, 0).AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, 8.0, days[0].TotalHours)

	_, err = f.attendance.History(ctx, 1, at(0, 0).AddDate(0, 0, 1), at(0, 0))
	assert.ErrorIs(t, err, ErrInvalidInput)

	recent, err := f.attendance.Recent(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.True(t, recent[0].Date.Equal(DayStart(at(0, 0).AddDate(0, 0, 2))), "newest first")

	_, err = f.attendance.Recent(ctx, 1, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestToday_EmptyBeforeCheckIn(t *testing.T) {
	f := newFixture(t)

	today, err := f.attendance.Today(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, today.CheckedIn)
	assert.Empty(t, today.Sessions)
	assert.True(t, today.Date.Equal(DayStart(at(9, 0))))
}
