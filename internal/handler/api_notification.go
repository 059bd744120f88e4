package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const defaultNotificationLimit = 50

func (a *API) listNotifications(c *gin.Context) {
	identity := identityFrom(c)

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultNotificationLimit)))
	if err != nil || limit <= 0 {
		limit = defaultNotificationLimit
	}

	notifications, err := a.notifications.List(c.Request.Context(), identity.UserID, limit)
	if err != nil {
		a.fail(c, err)
		return
	}

	unread, err := a.notifications.UnreadCount(c.Request.Context(), identity.UserID)
	if err != nil {
		a.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "data": notifications, "unread": unread})
}

func (a *API) markNotificationRead(c *gin.Context) {
	identity := identityFrom(c)

	id, err := parseID(c)
	if err != nil {
		a.fail(c, err)
		return
	}

	if err := a.notifications.MarkRead(c.Request.Context(), identity.UserID, id); err != nil {
		a.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
