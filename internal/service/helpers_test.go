package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"hr-workflow/internal/models"
	"hr-workflow/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var errStoreDown = errors.New("database is down")

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock(t time.Time) *testClock {
	return &testClock{now: t}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// failingNotificationRepo fails every Create while fail is set
type failingNotificationRepo struct {
	repository.NotificationRepository
	fail bool
}

func (r *failingNotificationRepo) Create(ctx context.Context, userID uint, title, message string) (*models.Notification, error) {
	if r.fail {
		return nil, errStoreDown
	}
	return r.NotificationRepository.Create(ctx, userID, title, message)
}

// flakyAttendanceRepo fails the next failTotals UpdateTotalHours calls
type flakyAttendanceRepo struct {
	repository.AttendanceRepository
	failTotals int
}

func (r *flakyAttendanceRepo) UpdateTotalHours(ctx context.Context, attendanceID uint, totalHours float64) error {
	if r.failTotals > 0 {
		r.failTotals--
		return errStoreDown
	}
	return r.AttendanceRepository.UpdateTotalHours(ctx, attendanceID, totalHours)
}

type fixture struct {
	db               *gorm.DB
	clock            *testClock
	attendanceRepo   *flakyAttendanceRepo
	leaveRepo        *repository.GormLeaveRequestRepository
	notificationRepo *failingNotificationRepo
	notifications    *NotificationService
	attendance       *AttendanceService
	leaves           *LeaveService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := repository.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repository.Close(db) })

	attendanceRepo, err := repository.NewGormAttendanceRepository(db)
	require.NoError(t, err)
	leaveRepo, err := repository.NewGormLeaveRequestRepository(db)
	require.NoError(t, err)
	notificationRepo, err := repository.NewGormNotificationRepository(db)
	require.NoError(t, err)

	f := &fixture{
		db:               db,
		clock:            newTestClock(at(9, 0)),
		attendanceRepo:   &flakyAttendanceRepo{AttendanceRepository: attendanceRepo},
		leaveRepo:        leaveRepo,
		notificationRepo: &failingNotificationRepo{NotificationRepository: notificationRepo},
	}
	f.notifications = NewNotificationService(f.notificationRepo)
	f.attendance = NewAttendanceService(f.attendanceRepo, f.notifications, f.clock)
	f.leaves = NewLeaveService(f.leaveRepo, f.notifications, f.clock)
	return f
}

// at returns a moment on the fixed test day, 2026-10-15, in local time
func at(hour, minute int) time.Time {
	return time.Date(2026, 10, 15, hour, minute, 0, 0, time.Local)
}

func (f *fixture) notificationsFor(t *testing.T, userID uint) []models.Notification {
	t.Helper()
	list, err := f.notifications.List(context.Background(), userID, 0)
	require.NoError(t, err)
	return list
}

func titles(notifications []models.Notification) []string {
	out := make([]string, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, n.Title)
	}
	return out
}
