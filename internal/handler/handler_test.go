package handler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"hr-workflow/internal/models"
	"hr-workflow/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu       sync.Mutex
	messages []tgbotapi.MessageConfig
	requests int
}

func (s *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		s.messages = append(s.messages, msg)
	}
	return tgbotapi.Message{}, nil
}

func (s *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests++
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (s *fakeSender) last(t *testing.T) tgbotapi.MessageConfig {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.messages)
	return s.messages[len(s.messages)-1]
}

func command(chatID int64, text string) tgbotapi.Update {
	name := strings.Fields(text)[0]
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Chat:     &tgbotapi.Chat{ID: chatID},
		From:     &tgbotapi.User{ID: chatID, UserName: "tester"},
		Text:     text,
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(name)}},
	}}
}

func callback(chatID int64, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: chatID},
		Message: &tgbotapi.Message{MessageID: 1, Chat: &tgbotapi.Chat{ID: chatID}},
		Data:    data,
	}}
}

type botEnv struct {
	*env
	sender  *fakeSender
	handler *Handler
}

func newBotEnv(t *testing.T) *botEnv {
	e := newEnv(t)
	sender := &fakeSender{}
	return &botEnv{
		env:     e,
		sender:  sender,
		handler: NewHandler(sender, e.users, e.attendance, e.leaves, e.notifications, e.clock),
	}
}

func (b *botEnv) register(t *testing.T, chatID int64, role string) *models.User {
	t.Helper()
	user, err := b.users.Register(context.Background(), service.RegisterUserInput{
		ChatID:    chatID,
		FirstName: fmt.Sprintf("user%d", chatID),
		Role:      role,
	})
	require.NoError(t, err)
	return user
}

func TestBot_UnlinkedChat(t *testing.T) {
	b := newBotEnv(t)

	b.handler.HandleUpdate(context.Background(), command(500, "/in"))
	assert.Contains(t, b.sender.last(t).Text, "not linked")
}

func TestBot_CheckInAndOut(t *testing.T) {
	ctx := context.Background()
	b := newBotEnv(t)
	b.register(t, 100, models.RoleEmployee)

	b.handler.HandleUpdate(ctx, command(100, "/in"))
	msg := b.sender.last(t)
	assert.Contains(t, msg.Text, "Checked in")
	assert.NotNil(t, msg.ReplyMarkup)

	b.handler.HandleUpdate(ctx, command(100, "/in"))
	assert.Contains(t, b.sender.last(t).Text, "already checked in")

	b.clock.Set(at(11, 45))
	b.handler.HandleUpdate(ctx, callback(100, "command_clock_out"))
	assert.Contains(t, b.sender.last(t).Text, "Total today: 2.75")
	assert.Equal(t, 2, b.sender.requests, "markup removed and callback answered")

	b.handler.HandleUpdate(ctx, command(100, "/out"))
	assert.Contains(t, b.sender.last(t).Text, "no open session")

	b.handler.HandleUpdate(ctx, command(100, "/today"))
	assert.Contains(t, b.sender.last(t).Text, "Total: 2.75")

	b.handler.HandleUpdate(ctx, command(100, "/notifications"))
	assert.Contains(t, b.sender.last(t).Text, models.TitleCheckedOut)

	user, err := b.users.GetByChatID(ctx, 100)
	require.NoError(t, err)
	unread, err := b.notifications.UnreadCount(ctx, user.ID)
	require.NoError(t, err)
	assert.Zero(t, unread)
}

func TestBot_LeaveApproval(t *testing.T) {
	ctx := context.Background()
	b := newBotEnv(t)
	employee := b.register(t, 100, models.RoleEmployee)
	b.register(t, 200, models.RoleAdmin)

	b.handler.HandleUpdate(ctx, command(100, "/leave"))
	assert.Contains(t, b.sender.last(t).Text, "Format")

	b.handler.HandleUpdate(ctx, command(100, "/leave annual 20.10.2026 22.10.2026 family"))
	assert.Contains(t, b.sender.last(t).Text, "Days: 3")

	requests, err := b.leaves.ListMine(ctx, employee.ID)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	id := requests[0].ID

	b.handler.HandleUpdate(ctx, command(100, fmt.Sprintf("/approve %d", id)))
	assert.Contains(t, b.sender.last(t).Text, "Only administrators")

	b.handler.HandleUpdate(ctx, command(200, "/pending"))
	pending := b.sender.last(t)
	assert.Contains(t, pending.Text, fmt.Sprintf("#%d", id))
	assert.NotNil(t, pending.ReplyMarkup)

	b.handler.HandleUpdate(ctx, callback(200, fmt.Sprintf("approve_%d", id)))
	assert.Contains(t, b.sender.last(t).Text, "APPROVED")

	b.handler.HandleUpdate(ctx, command(200, fmt.Sprintf("/reject %d", id)))
	assert.Contains(t, b.sender.last(t).Text, "already been decided")

	b.handler.HandleUpdate(ctx, command(200, "/reject x"))
	assert.Contains(t, b.sender.last(t).Text, "positive number")

	notifications, err := b.notifications.List(ctx, employee.ID, 0)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, models.TitleLeaveApproved, notifications[0].Title)
}

func TestBot_UnknownInput(t *testing.T) {
	b := newBotEnv(t)

	b.handler.HandleUpdate(context.Background(), command(1, "/dance"))
	assert.Contains(t, b.sender.last(t).Text, "Unknown command")

	b.handler.HandleUpdate(context.Background(), tgbotapi.Update{Message: &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: 1},
		Text: "hello",
	}})
	assert.Contains(t, b.sender.last(t).Text, "/help")
}

func TestParseChatDate(t *testing.T) {
	now := time.Date(2031, 12, 31, 23, 0, 0, 0, time.Local)

	d, err := parseChatDate("01.07.2026", now)
	require.NoError(t, err)
	assert.Equal(t, 2026, d.Year())
	assert.Equal(t, 7, int(d.Month()))

	d, err = parseChatDate("05-03", now)
	require.NoError(t, err)
	assert.Equal(t, 2031, d.Year(), "short dates take the year of now")
	assert.Equal(t, 5, d.Day())

	_, err = parseChatDate("2026-07-01", now)
	assert.Error(t, err)
}

func TestBot_ShortLeaveDatesUseClockYear(t *testing.T) {
	ctx := context.Background()
	b := newBotEnv(t)
	employee := b.register(t, 100, models.RoleEmployee)

	b.clock.Set(time.Date(2027, 1, 2, 10, 0, 0, 0, time.Local))
	b.handler.HandleUpdate(ctx, command(100, "/leave sick 02.01 03.01"))
	assert.Contains(t, b.sender.last(t).Text, "02.01.2027")

	requests, err := b.leaves.ListMine(ctx, employee.ID)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, 2027, requests[0].StartDate.Year())
	assert.Equal(t, 2, requests[0].Days())
}
