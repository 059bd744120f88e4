package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"hr-workflow/internal/models"
	"hr-workflow/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// Sender is the part of the bot API the handler talks to
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Handler serves the Telegram chat commands. Chats are linked to users
// through User.ChatID.
type Handler struct {
	bot                 Sender
	userService         *service.UserService
	attendanceService   *service.AttendanceService
	leaveService        *service.LeaveService
	notificationService *service.NotificationService
	clock               service.Clock
	logger              *logrus.Logger
}

func NewHandler(
	bot Sender,
	userService *service.UserService,
	attendanceService *service.AttendanceService,
	leaveService *service.LeaveService,
	notificationService *service.NotificationService,
	clock service.Clock,
) *Handler {
	return &Handler{
		bot:                 bot,
		userService:         userService,
		attendanceService:   attendanceService,
		leaveService:        leaveService,
		notificationService: notificationService,
		clock:               clock,
		logger:              newLogger(),
	}
}

// HandleUpdates runs until the channel closes or ctx is done
func (h *Handler) HandleUpdates(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			h.HandleUpdate(ctx, update)
		}
	}
}

func (h *Handler) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		h.handleCallbackQuery(ctx, update.CallbackQuery)
		return
	}

	if update.Message == nil {
		return
	}

	h.handleMessage(ctx, update.Message)
}

// handleCallbackQuery serves the inline buttons attached to replies
func (h *Handler) handleCallbackQuery(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	if callback.Message == nil || callback.Message.Chat == nil {
		return
	}
	chatID := callback.Message.Chat.ID
	data := callback.Data

	edit := tgbotapi.NewEditMessageReplyMarkup(chatID, callback.Message.MessageID, tgbotapi.NewInlineKeyboardMarkup())
	h.request(edit)
	defer h.request(tgbotapi.NewCallback(callback.ID, ""))

	switch {
	case data == "command_clock_in":
		h.clockIn(ctx, chatID)
	case data == "command_clock_out":
		h.clockOut(ctx, chatID)
	case strings.HasPrefix(data, "approve_"):
		h.decide(ctx, chatID, strings.TrimPrefix(data, "approve_"), models.LeaveStatusApproved)
	case strings.HasPrefix(data, "reject_"):
		h.decide(ctx, chatID, strings.TrimPrefix(data, "reject_"), models.LeaveStatusRejected)
	default:
		h.logger.WithField("data", data).Warn("Unknown callback")
	}
}

func (h *Handler) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.Chat == nil {
		return
	}

	username := ""
	if message.From != nil {
		username = message.From.UserName
	}
	h.logger.Infof("[%s] %s", username, message.Text)

	if message.IsCommand() {
		h.handleCommand(ctx, message)
		return
	}

	h.reply(message.Chat.ID, "Use /help to see the available commands.")
}

// currentUser resolves the caller of a chat, replying when the chat is not linked
func (h *Handler) currentUser(ctx context.Context, chatID int64) (*models.User, bool) {
	user, err := h.userService.GetByChatID(ctx, chatID)
	if err != nil {
		h.logger.WithError(err).WithField("chat_id", chatID).Warn("Chat is not linked to a user")
		h.replyError(chatID, err)
		return nil, false
	}
	return user, true
}

func (h *Handler) reply(chatID int64, text string) {
	h.send(tgbotapi.NewMessage(chatID, text))
}

func (h *Handler) send(msg tgbotapi.MessageConfig) {
	if _, err := h.bot.Send(msg); err != nil {
		h.logger.WithError(err).WithField("chat_id", msg.ChatID).Error("Failed to send message")
	}
}

func (h *Handler) request(c tgbotapi.Chattable) {
	if _, err := h.bot.Request(c); err != nil {
		h.logger.WithError(err).Debug("Bot request failed")
	}
}

// replyError turns a workflow error into a chat reply
func (h *Handler) replyError(chatID int64, err error) {
	h.reply(chatID, "❌ "+describeError(err))
}

func describeError(err error) string {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		return "This chat is not linked to an employee. Ask an administrator to register you."
	case errors.Is(err, service.ErrForbidden):
		return "Only administrators can do that."
	case errors.Is(err, service.ErrNotFound):
		return "Not found."
	case errors.Is(err, service.ErrNotCheckedIn):
		return "You have not checked in today. Use /in first."
	case errors.Is(err, service.ErrNoActiveSession):
		return "You have no open session to close. Use /in to start one."
	case errors.Is(err, service.ErrAlreadyCheckedIn):
		return "You are already checked in. Use /out to finish the session."
	case errors.Is(err, service.ErrLeaveAlreadyDecided):
		return "That request has already been decided."
	case errors.Is(err, service.ErrInvalidInput):
		return err.Error()
	default:
		return "Something went wrong, please try again later."
	}
}

func parseLeaveID(arg string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(arg), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: request id must be a positive number", service.ErrInvalidInput)
	}
	return uint(id), nil
}
