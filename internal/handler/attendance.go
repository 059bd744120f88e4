package handler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const defaultHistoryDays = 7

// clockIn opens a work session for the chat's user
func (h *Handler) clockIn(ctx context.Context, chatID int64) {
	user, ok := h.currentUser(ctx, chatID)
	if !ok {
		return
	}

	session, err := h.attendanceService.CheckIn(ctx, user.ID)
	if err != nil {
		h.replyError(chatID, err)
		return
	}

	response := fmt.Sprintf(
		`✅ Checked in!

⏰ Started at: %s
📅 Date: %s

💡 Finish the session with /out`,
		session.CheckIn.Format("15:04"),
		session.CheckIn.Format("02.01.2006"),
	)

	msg := tgbotapi.NewMessage(chatID, response)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏰ Check out", "command_clock_out"),
		),
	)
	h.send(msg)
}

// clockOut closes the open session and reports the day's total
func (h *Handler) clockOut(ctx context.Context, chatID int64) {
	user, ok := h.currentUser(ctx, chatID)
	if !ok {
		return
	}

	result, err := h.attendanceService.CheckOut(ctx, user.ID)
	if err != nil {
		h.replyError(chatID, err)
		return
	}

	response := fmt.Sprintf(
		`✅ Checked out!

⏰ Session: %s - %s
⏳ Session hours: %.2f
📊 Total today: %.2f`,
		result.CheckIn.Format("15:04"),
		result.CheckOut.Format("15:04"),
		result.SessionHours,
		result.TotalHours,
	)

	msg := tgbotapi.NewMessage(chatID, response)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("▶️ Start another session", "command_clock_in"),
		),
	)
	h.send(msg)
}

func (h *Handler) showToday(ctx context.Context, chatID int64) {
	user, ok := h.currentUser(ctx, chatID)
	if !ok {
		return
	}

	summary, err := h.attendanceService.Today(ctx, user.ID)
	if err != nil {
		h.replyError(chatID, err)
		return
	}

	if len(summary.Sessions) == 0 {
		h.reply(chatID, "📭 No sessions today. Use /in to check in.")
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📅 %s\n\n", summary.Date.Format("02.01.2006"))
	for i := len(summary.Sessions) - 1; i >= 0; i-- {
		fmt.Fprintf(&b, "• %s\n", summary.Sessions[i].FormatTime())
	}
	fmt.Fprintf(&b, "\n📊 Total: %.2f h", summary.TotalHours)

	h.reply(chatID, b.String())
}

// showHistory lists the last N days, args is an optional day count
func (h *Handler) showHistory(ctx context.Context, chatID int64, args string) {
	user, ok := h.currentUser(ctx, chatID)
	if !ok {
		return
	}

	days := defaultHistoryDays
	if args = strings.TrimSpace(args); args != "" {
		n, err := strconv.Atoi(args)
		if err != nil || n <= 0 || n > 90 {
			h.reply(chatID, "❌ Usage: /history [N], N from 1 to 90")
			return
		}
		days = n
	}

	records, err := h.attendanceService.Recent(ctx, user.ID, days)
	if err != nil {
		h.replyError(chatID, err)
		return
	}

	if len(records) == 0 {
		h.reply(chatID, "📭 No attendance in that period.")
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📈 Last %d day(s):\n\n", days)
	for _, r := range records {
		fmt.Fprintf(&b, "• %s: %.2f h, %d session(s)\n", r.Date.Format("02.01.2006"), r.TotalHours, len(r.Sessions))
	}

	h.reply(chatID, b.String())
}
