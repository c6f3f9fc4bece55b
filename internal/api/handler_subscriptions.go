package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm/clause"

	"github.com/ThakurAbhay9457/HostelSwap-Mutual/internal/model"
	"github.com/ThakurAbhay9457/HostelSwap-Mutual/internal/mw"
)

type putSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
	P256DH   string `json:"p256dh" binding:"required"`
	Auth     string `json:"auth" binding:"required"`
}

// PutSubscription registers or refreshes the caller's browser push
// subscription for swap status notifications.
func (h *Handler) PutSubscription(c *gin.Context) {
	var req putSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	subscription := model.PushSubscription{
		Endpoint:   req.Endpoint,
		P256DH:     req.P256DH,
		Auth:       req.Auth,
		ResidentID: c.GetString(mw.CtxPrincipalID),
	}

	err := h.store.DB().Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"p256dh", "auth", "resident_id"}),
	}).Create(&subscription).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	c.Status(http.StatusCreated)
}

// GetSubscriptions lists the caller's registered push endpoints.
func (h *Handler) GetSubscriptions(c *gin.Context) {
	var subscriptions []model.PushSubscription
	err := h.store.DB().
		Where("resident_id = ?", c.GetString(mw.CtxPrincipalID)).
		Find(&subscriptions).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	endpoints := make([]string, len(subscriptions))
	for i, s := range subscriptions {
		endpoints[i] = s.Endpoint
	}
	c.JSON(http.StatusOK, gin.H{"endpoints": endpoints})
}

type deleteSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// DeleteSubscription removes one of the caller's push subscriptions.
func (h *Handler) DeleteSubscription(c *gin.Context) {
	var req deleteSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	err := h.store.DB().
		Where("endpoint = ? AND resident_id = ?", req.Endpoint, c.GetString(mw.CtxPrincipalID)).
		Delete(&model.PushSubscription{}).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}
