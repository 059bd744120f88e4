package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"hr-workflow/internal/auth"
	"hr-workflow/internal/config"
	"hr-workflow/internal/handler"
	"hr-workflow/internal/service"
	"hr-workflow/pkg/telegram"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and, when a bot token is set, the Telegram bot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), config.GetConfig())
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	logrus.Info("Initializing application...")
	a, err := newApp(cfg, service.SystemClock{})
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.users.InitializeAdmin(ctx, cfg.BaseAdminChatID); err != nil {
		logrus.Infof("Warning: Failed to initialize admin: %v", err)
	} else if cfg.BaseAdminChatID != 0 {
		logrus.Infof("Admin initialized with chat ID: %d", cfg.BaseAdminChatID)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Level() < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	api := handler.NewAPI(auth.NewGuard(cfg.JWTSecret), a.attendance, a.leaves, a.notifications)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logrus.Infof("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// the bot loop must finish before the deferred Close releases the store
	var botDone sync.WaitGroup
	defer func() {
		stop()
		botDone.Wait()
	}()

	if cfg.TelegramToken != "" {
		client, err := telegram.NewClient(cfg.TelegramToken, cfg.TelegramDebug)
		if err != nil {
			return err
		}
		defer client.Stop()

		logrus.Infof("Authorized on account %s", client.Bot.Self.UserName)

		bot := handler.NewHandler(client.Bot, a.users, a.attendance, a.leaves, a.notifications, a.clock)
		startBot(ctx, bot, client.Updates(), &botDone)
	}

	logrus.Info("Server started. Press Ctrl+C to stop.")

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("HTTP server shutdown failed")
	}

	logrus.Info("Server stopped gracefully")
	return nil
}

// startBot runs the update loop in the background, tracked by done
func startBot(ctx context.Context, bot *handler.Handler, updates tgbotapi.UpdatesChannel, done *sync.WaitGroup) {
	done.Add(1)
	go func() {
		defer done.Done()
		bot.HandleUpdates(ctx, updates)
		logrus.Info("Telegram bot stopped")
	}()
}
