package handler

import (
	"context"
	"fmt"
	"strings"
)

const chatNotificationLimit = 10

// showNotifications prints the latest notifications and marks them read
func (h *Handler) showNotifications(ctx context.Context, chatID int64) {
	user, ok := h.currentUser(ctx, chatID)
	if !ok {
		return
	}

	notifications, err := h.notificationService.List(ctx, user.ID, chatNotificationLimit)
	if err != nil {
		h.replyError(chatID, err)
		return
	}

	if len(notifications) == 0 {
		h.reply(chatID, "🔕 No notifications yet.")
		return
	}

	var b strings.Builder
	b.WriteString("🔔 Notifications:\n\n")
	for _, n := range notifications {
		marker := "•"
		if !n.Read {
			marker = "🆕"
		}
		fmt.Fprintf(&b, "%s %s (%s)\n%s\n\n", marker, n.Title, n.CreatedAt.Format("02.01 15:04"), n.Message)
	}
	h.reply(chatID, strings.TrimSpace(b.String()))

	for _, n := range notifications {
		if n.Read {
			continue
		}
		if err := h.notificationService.MarkRead(ctx, user.ID, n.ID); err != nil {
			h.logger.WithError(err).WithField("notification_id", n.ID).Warn("Failed to mark notification read")
		}
	}
}
