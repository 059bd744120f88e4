package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (a *API) checkIn(c *gin.Context) {
	identity := identityFrom(c)

	session, err := a.attendance.CheckIn(c.Request.Context(), identity.UserID)
	if err != nil {
		a.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "ok", "data": session})
}

func (a *API) checkOut(c *gin.Context) {
	identity := identityFrom(c)

	result, err := a.attendance.CheckOut(c.Request.Context(), identity.UserID)
	if err != nil {
		a.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "data": result})
}

func (a *API) today(c *gin.Context) {
	identity := identityFrom(c)

	summary, err := a.attendance.Today(c.Request.Context(), identity.UserID)
	if err != nil {
		a.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "data": summary})
}

// history expects ?from=YYYY-MM-DD&to=YYYY-MM-DD, both inclusive
func (a *API) history(c *gin.Context) {
	identity := identityFrom(c)

	from, err := parseISODate(c.Query("from"))
	if err != nil {
		a.fail(c, err)
		return
	}
	to, err := parseISODate(c.Query("to"))
	if err != nil {
		a.fail(c, err)
		return
	}

	days, err := a.attendance.History(c.Request.Context(), identity.UserID, from, to)
	if err != nil {
		a.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "data": days})
}
