package handler

import (
	"context"

	"hr-workflow/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (h *Handler) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID
	args := message.CommandArguments()

	switch message.Command() {
	case "start", "help":
		h.sendHelpMessage(chatID)
	case "helpadmin":
		h.sendAdminHelpMessage(chatID)

	case "in":
		h.clockIn(ctx, chatID)
	case "out":
		h.clockOut(ctx, chatID)
	case "today":
		h.showToday(ctx, chatID)
	case "history":
		h.showHistory(ctx, chatID, args)

	case "leave":
		h.submitLeave(ctx, chatID, args)
	case "leaves":
		h.showMyLeaves(ctx, chatID)
	case "notifications":
		h.showNotifications(ctx, chatID)

	case "pending":
		h.showPending(ctx, chatID)
	case "approve":
		h.decide(ctx, chatID, args, models.LeaveStatusApproved)
	case "reject":
		h.decide(ctx, chatID, args, models.LeaveStatusRejected)

	default:
		h.reply(chatID, "❌ Unknown command. Use /help to see the available commands.")
	}
}

func (h *Handler) sendHelpMessage(chatID int64) {
	text := `📋 Available commands:

⏰ Attendance:
/in - Start a work session
/out - Finish the current work session
/today - Today's sessions and hours
/history [N] - Last N days (7 by default)

🏖️ Leave:
/leave TYPE start end [reason] - Request leave
    Example: /leave annual 01.07.2026 14.07.2026 summer trip
    Types: annual, sick, casual, wfh
/leaves - My leave requests

🔔 /notifications - My latest notifications

💡 You can check in and out several times a day, the daily total adds up every session.`

	h.reply(chatID, text)
}

func (h *Handler) sendAdminHelpMessage(chatID int64) {
	text := `🛠 Administrator commands:

/pending - Leave requests awaiting a decision
/approve ID - Approve a leave request
/reject ID - Reject a leave request

A second approved leave for the same employee is flagged as Loss of Pay.`

	h.reply(chatID, text)
}
