package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"hr-workflow/internal/auth"
	"hr-workflow/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const identityKey = "identity"

// API is the HTTP transport over the attendance and leave workflows
type API struct {
	guard         *auth.Guard
	attendance    *service.AttendanceService
	leaves        *service.LeaveService
	notifications *service.NotificationService
	logger        *logrus.Logger
}

func NewAPI(
	guard *auth.Guard,
	attendance *service.AttendanceService,
	leaves *service.LeaveService,
	notifications *service.NotificationService,
) *API {
	return &API{
		guard:         guard,
		attendance:    attendance,
		leaves:        leaves,
		notifications: notifications,
		logger:        newLogger(),
	}
}

func (a *API) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), a.requestLogger())

	r.GET("/health", a.health)

	v1 := r.Group("/api/v1", a.AuthRequired())
	{
		v1.POST("/attendance/check-in", a.checkIn)
		v1.POST("/attendance/check-out", a.checkOut)
		v1.GET("/attendance/today", a.today)
		v1.GET("/attendance/history", a.history)

		v1.POST("/leaves", a.submitLeave)
		v1.GET("/leaves", a.myLeaves)
		v1.GET("/leaves/pending", a.pendingLeaves)
		v1.PATCH("/leaves/:id/decision", a.decideLeave)

		v1.GET("/notifications", a.listNotifications)
		v1.PATCH("/notifications/:id/read", a.markNotificationRead)
	}

	return r
}

// AuthRequired resolves the bearer token into an identity for the handlers
func (a *API) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			a.fail(c, service.ErrUnauthorized)
			c.Abort()
			return
		}

		identity, err := a.guard.Resolve(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			a.logger.WithError(err).Debug("Rejected bearer token")
			a.fail(c, service.ErrUnauthorized)
			c.Abort()
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

func (a *API) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-ID", requestID)

		start := time.Now()
		c.Next()

		a.logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"status":     c.Writer.Status(),
			"latency":    time.Since(start).String(),
		}).Info("HTTP request")
	}
}

func (a *API) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func identityFrom(c *gin.Context) auth.Identity {
	v, _ := c.Get(identityKey)
	identity, _ := v.(auth.Identity)
	return identity
}

var conflictKinds = []error{
	service.ErrNotCheckedIn,
	service.ErrNoActiveSession,
	service.ErrAlreadyCheckedIn,
	service.ErrLeaveAlreadyDecided,
}

// statusFor maps a workflow error kind to its HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	}
	for _, kind := range conflictKinds {
		if errors.Is(err, kind) {
			return http.StatusConflict
		}
	}
	return http.StatusInternalServerError
}

func (a *API) fail(c *gin.Context, err error) {
	status := statusFor(err)
	message := err.Error()

	if status == http.StatusInternalServerError {
		a.logger.WithError(err).WithField("path", c.FullPath()).Error("Request failed")
		message = "internal error"
		if errors.Is(err, service.ErrStoreUnavailable) {
			message = service.ErrStoreUnavailable.Error()
		}
	}

	c.JSON(status, gin.H{"error": message})
}

func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: bad id %q", service.ErrInvalidInput, c.Param("id"))
	}
	return uint(id), nil
}

func parseISODate(value string) (time.Time, error) {
	date, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(value), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad date %q, use YYYY-MM-DD", service.ErrInvalidInput, value)
	}
	return date, nil
}

func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(logrus.GetLevel())
	return logger
}
