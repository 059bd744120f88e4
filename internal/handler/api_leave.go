package handler

import (
	"fmt"
	"net/http"

	"hr-workflow/internal/service"

	"github.com/gin-gonic/gin"
)

type submitLeaveRequest struct {
	Type      string `json:"type"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
	Reason    string `json:"reason"`
}

type decisionRequest struct {
	Decision string `json:"decision" binding:"required"`
}

func (a *API) submitLeave(c *gin.Context) {
	identity := identityFrom(c)

	var req submitLeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.fail(c, fmt.Errorf("%w: %v", service.ErrInvalidInput, err))
		return
	}

	start, err := parseISODate(req.StartDate)
	if err != nil {
		a.fail(c, err)
		return
	}
	end, err := parseISODate(req.EndDate)
	if err != nil {
		a.fail(c, err)
		return
	}

	request, err := a.leaves.Submit(c.Request.Context(), identity.UserID, service.SubmitLeaveInput{
		Type:      req.Type,
		StartDate: start,
		EndDate:   end,
		Reason:    req.Reason,
	})
	if err != nil {
		a.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "ok", "data": request})
}

func (a *API) myLeaves(c *gin.Context) {
	identity := identityFrom(c)

	requests, err := a.leaves.ListMine(c.Request.Context(), identity.UserID)
	if err != nil {
		a.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "data": requests})
}

func (a *API) pendingLeaves(c *gin.Context) {
	identity := identityFrom(c)

	requests, err := a.leaves.ListPending(c.Request.Context(), identity.Role)
	if err != nil {
		a.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "data": requests})
}

// decideLeave leaves the role check to the workflow so that a forbidden
// caller never reaches the store
func (a *API) decideLeave(c *gin.Context) {
	identity := identityFrom(c)

	id, err := parseID(c)
	if err != nil {
		a.fail(c, err)
		return
	}

	var req decisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.fail(c, fmt.Errorf("%w: %v", service.ErrInvalidInput, err))
		return
	}

	request, err := a.leaves.Decide(c.Request.Context(), id, req.Decision, identity.Role)
	if err != nil {
		a.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "data": request})
}
