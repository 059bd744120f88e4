package cli

import (
	"fmt"

	"hr-workflow/internal/config"
	"hr-workflow/internal/repository"
	"hr-workflow/internal/service"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// app holds the wired store and workflows shared by every subcommand
type app struct {
	cfg           *config.Config
	db            *gorm.DB
	clock         service.Clock
	users         *service.UserService
	attendance    *service.AttendanceService
	leaves        *service.LeaveService
	notifications *service.NotificationService
}

func newApp(cfg *config.Config, clock service.Clock) (*app, error) {
	logrus.SetLevel(cfg.Level())

	db, err := repository.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	userRepo, err := repository.NewGormUserRepository(db)
	if err != nil {
		repository.Close(db)
		return nil, fmt.Errorf("create user repository: %w", err)
	}

	attendanceRepo, err := repository.NewGormAttendanceRepository(db)
	if err != nil {
		repository.Close(db)
		return nil, fmt.Errorf("create attendance repository: %w", err)
	}

	leaveRepo, err := repository.NewGormLeaveRequestRepository(db)
	if err != nil {
		repository.Close(db)
		return nil, fmt.Errorf("create leave request repository: %w", err)
	}

	notificationRepo, err := repository.NewGormNotificationRepository(db)
	if err != nil {
		repository.Close(db)
		return nil, fmt.Errorf("create notification repository: %w", err)
	}

	notifications := service.NewNotificationService(notificationRepo)

	return &app{
		cfg:           cfg,
		db:            db,
		clock:         clock,
		users:         service.NewUserService(userRepo),
		attendance:    service.NewAttendanceService(attendanceRepo, notifications, clock),
		leaves:        service.NewLeaveService(leaveRepo, notifications, clock),
		notifications: notifications,
	}, nil
}

func (a *app) Close() {
	if err := repository.Close(a.db); err != nil {
		logrus.Infof("Error closing database: %v", err)
	}
}
