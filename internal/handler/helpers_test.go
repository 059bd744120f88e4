package handler

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"hr-workflow/internal/auth"
	"hr-workflow/internal/models"
	"hr-workflow/internal/repository"
	"hr-workflow/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
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

type env struct {
	clock         *testClock
	guard         *auth.Guard
	router        *gin.Engine
	users         *service.UserService
	attendance    *service.AttendanceService
	leaves        *service.LeaveService
	notifications *service.NotificationService
}

func newEnv(t *testing.T) *env {
	t.Helper()

	db, err := repository.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repository.Close(db) })

	userRepo, err := repository.NewGormUserRepository(db)
	require.NoError(t, err)
	attendanceRepo, err := repository.NewGormAttendanceRepository(db)
	require.NoError(t, err)
	leaveRepo, err := repository.NewGormLeaveRequestRepository(db)
	require.NoError(t, err)
	notificationRepo, err := repository.NewGormNotificationRepository(db)
	require.NoError(t, err)

	e := &env{
		clock: &testClock{now: time.Date(2026, 10, 15, 9, 0, 0, 0, time.Local)},
		guard: auth.NewGuard("test-secret"),
	}
	e.users = service.NewUserService(userRepo)
	e.notifications = service.NewNotificationService(notificationRepo)
	e.attendance = service.NewAttendanceService(attendanceRepo, e.notifications, e.clock)
	e.leaves = service.NewLeaveService(leaveRepo, e.notifications, e.clock)
	e.router = NewAPI(e.guard, e.attendance, e.leaves, e.notifications).Router()
	return e
}

func (e *env) token(t *testing.T, userID uint, role string) string {
	t.Helper()
	token, err := e.guard.Issue(auth.Identity{UserID: userID, Role: role}, time.Hour)
	require.NoError(t, err)
	return token
}

func (e *env) employee(t *testing.T, userID uint) string {
	return e.token(t, userID, models.RoleEmployee)
}

func (e *env) admin(t *testing.T) string {
	return e.token(t, 99, models.RoleAdmin)
}

// do performs a request and decodes the JSON body into a generic map
func (e *env) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var decoded map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded), w.Body.String())
	}
	return w, decoded
}

func at(hour, minute int) time.Time {
	return time.Date(2026, 10, 15, hour, minute, 0, 0, time.Local)
}
