package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ThakurAbhay9457/HostelSwap-Mutual/internal/mw"
	"github.com/ThakurAbhay9457/HostelSwap-Mutual/internal/notification"
)

type requestSwapRequest struct {
	TargetStudentID string `json:"targetStudentId" binding:"required"`
	Message         string `json:"message" binding:"max=512"`
}

// RequestSwap handles POST /api/swap/request.
func (h *Handler) RequestSwap(c *gin.Context) {
	var req requestSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	requesterID := c.GetString(mw.CtxPrincipalID)
	swap, err := h.store.RequestSwap(c.Request.Context(), requesterID, req.TargetStudentID, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}

	h.notifier.Dispatch(notification.Event{
		ResidentID: swap.TargetID,
		Title:      "New swap request",
		Body:       "A resident wants to swap rooms with you.",
	})

	c.JSON(http.StatusCreated, gin.H{
		"message": "Swap request sent",
		"swap":    toSwapResponse(swap),
	})
}

type resolveSwapRequest struct {
	RequesterID string `json:"requesterId" binding:"required"`
}

// AcceptSwap handles POST /api/swap/accept. The accepter is the
// authenticated principal; on success both residents' assignments have
// been exchanged.
func (h *Handler) AcceptSwap(c *gin.Context) {
	var req resolveSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	accepterID := c.GetString(mw.CtxPrincipalID)
	result, err := h.store.AcceptSwap(c.Request.Context(), accepterID, req.RequesterID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.notifier.Dispatch(notification.Event{
		ResidentID: result.Requester.ID,
		Title:      "Swap accepted",
		Body:       fmt.Sprintf("Your swap request is accepted; you are now in %s.", describeAssignment(&result.Requester)),
	})

	c.JSON(http.StatusOK, gin.H{
		"message":   "Swap accepted",
		"swap":      toSwapResponse(&result.Request),
		"requester": toStudentResponse(&result.Requester),
		"accepter":  toStudentResponse(&result.Accepter),
	})
}

// RejectSwap handles POST /api/swap/reject.
func (h *Handler) RejectSwap(c *gin.Context) {
	var req resolveSwapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	accepterID := c.GetString(mw.CtxPrincipalID)
	swap, err := h.store.RejectSwap(c.Request.Context(), accepterID, req.RequesterID)
	if err != nil {
		respondError(c, err)
		return
	}

	h.notifier.Dispatch(notification.Event{
		ResidentID: swap.RequesterID,
		Title:      "Swap rejected",
		Body:       "Your swap request was rejected.",
	})

	c.JSON(http.StatusOK, gin.H{
		"message": "Swap rejected",
		"swap":    toSwapResponse(swap),
	})
}

// ListSwaps handles GET /api/swap/list.
func (h *Handler) ListSwaps(c *gin.Context) {
	residentID := c.GetString(mw.CtxPrincipalID)
	swaps, err := h.store.ListSwaps(c.Request.Context(), residentID)
	if err != nil {
		respondError(c, err)
		return
	}

	responses := make([]swapResponse, 0, len(swaps))
	for i := range swaps {
		responses = append(responses, toSwapResponse(&swaps[i]))
	}
	c.JSON(http.StatusOK, gin.H{"swaps": responses})
}
