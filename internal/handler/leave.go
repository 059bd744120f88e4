package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hr-workflow/internal/models"
	"hr-workflow/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const leaveUsage = `🏖️ Leave request

Format:
/leave TYPE start end [reason]

Examples:
/leave annual 01.07.2026 14.07.2026 summer trip
/leave sick 15.08.2026 15.08.2026

Types: annual, sick, casual, wfh`

// submitLeave files a leave request from "/leave TYPE start end [reason]"
func (h *Handler) submitLeave(ctx context.Context, chatID int64, args string) {
	user, ok := h.currentUser(ctx, chatID)
	if !ok {
		return
	}

	parts := strings.Fields(args)
	if len(parts) < 3 {
		h.reply(chatID, leaveUsage)
		return
	}

	now := h.clock.Now()
	start, err := parseChatDate(parts[1], now)
	if err != nil {
		h.reply(chatID, "❌ Bad start date: "+err.Error())
		return
	}
	end, err := parseChatDate(parts[2], now)
	if err != nil {
		h.reply(chatID, "❌ Bad end date: "+err.Error())
		return
	}

	request, err := h.leaveService.Submit(ctx, user.ID, service.SubmitLeaveInput{
		Type:      parts[0],
		StartDate: start,
		EndDate:   end,
		Reason:    strings.Join(parts[3:], " "),
	})
	if err != nil {
		h.replyError(chatID, err)
		return
	}

	h.reply(chatID, fmt.Sprintf(
		`✅ Leave request #%d submitted!

🏖️ %s: %s - %s
📅 Days: %d
⏳ Waiting for an administrator's decision.`,
		request.ID,
		request.Type,
		request.StartDate.Format("02.01.2006"),
		request.EndDate.Format("02.01.2006"),
		request.Days(),
	))
}

func (h *Handler) showMyLeaves(ctx context.Context, chatID int64) {
	user, ok := h.currentUser(ctx, chatID)
	if !ok {
		return
	}

	requests, err := h.leaveService.ListMine(ctx, user.ID)
	if err != nil {
		h.replyError(chatID, err)
		return
	}

	if len(requests) == 0 {
		h.reply(chatID, "📭 You have no leave requests. Use /leave to file one.")
		return
	}

	var b strings.Builder
	b.WriteString("🏖️ Your leave requests:\n\n")
	for _, r := range requests {
		b.WriteString(formatLeave(r))
	}
	h.reply(chatID, b.String())
}

// showPending lists requests awaiting a decision with approve/reject buttons
func (h *Handler) showPending(ctx context.Context, chatID int64) {
	user, ok := h.currentUser(ctx, chatID)
	if !ok {
		return
	}

	requests, err := h.leaveService.ListPending(ctx, user.Role)
	if err != nil {
		h.replyError(chatID, err)
		return
	}

	if len(requests) == 0 {
		h.reply(chatID, "✅ Nothing is waiting for a decision.")
		return
	}

	for _, r := range requests {
		msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("%s👤 user #%d\n%s", formatLeave(r), r.UserID, r.Reason))
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("✅ Approve", fmt.Sprintf("approve_%d", r.ID)),
				tgbotapi.NewInlineKeyboardButtonData("❌ Reject", fmt.Sprintf("reject_%d", r.ID)),
			),
		)
		h.send(msg)
	}
}

// decide applies an administrator's decision on request idArg
func (h *Handler) decide(ctx context.Context, chatID int64, idArg, decision string) {
	user, ok := h.currentUser(ctx, chatID)
	if !ok {
		return
	}

	id, err := parseLeaveID(idArg)
	if err != nil {
		h.replyError(chatID, err)
		return
	}

	request, err := h.leaveService.Decide(ctx, id, decision, user.Role)
	if err != nil {
		h.replyError(chatID, err)
		return
	}

	h.reply(chatID, fmt.Sprintf("✅ Request #%d is now %s.", request.ID, request.Status))
}

func formatLeave(r models.LeaveRequest) string {
	icon := "⏳"
	switch r.Status {
	case models.LeaveStatusApproved:
		icon = "✅"
	case models.LeaveStatusRejected:
		icon = "❌"
	}
	return fmt.Sprintf("%s #%d %s %s - %s (%d day(s))\n",
		icon, r.ID, r.Type,
		r.StartDate.Format("02.01.2006"),
		r.EndDate.Format("02.01.2006"),
		r.Days())
}

// parseChatDate accepts DD.MM.YYYY, DD-MM-YYYY or DD.MM in the year of now
func parseChatDate(value string, now time.Time) (time.Time, error) {
	formats := []string{
		"02.01.2006",
		"02-01-2006",
		"02.01",
		"02-01",
	}

	for _, format := range formats {
		t, err := time.ParseInLocation(format, value, time.Local)
		if err != nil {
			continue
		}
		if !strings.Contains(format, "2006") {
			t = time.Date(now.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
		}
		return t, nil
	}

	return time.Time{}, fmt.Errorf("use DD.MM.YYYY or DD.MM")
}
