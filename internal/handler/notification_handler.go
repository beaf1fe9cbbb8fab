package handler

import (
	"net/http"
	"sort"

	"lifeline/internal/models"
	"lifeline/internal/store"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	store *store.Store
}

func NewNotificationHandler(st *store.Store) *NotificationHandler {
	return &NotificationHandler{store: st}
}

// List returns notifications for exactly one target, newest first.
func (h *NotificationHandler) List(c *gin.Context) {
	donorID := c.Query("donorId")
	hospitalID := c.Query("hospitalId")
	if (donorID == "") == (hospitalID == "") {
		fail(c, http.StatusBadRequest, "exactly one of donorId or hospitalId is required")
		return
	}
	var list []models.Notification
	if donorID != "" {
		list = h.store.NotificationsForDonor(donorID)
	} else {
		list = h.store.NotificationsForHospital(hospitalID)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	respond(c, http.StatusOK, list)
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	h.store.MarkNotificationRead(c.Param("id"))
	respond(c, http.StatusOK, gin.H{"read": true})
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	var req struct {
		DonorID string `json:"donorId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.DonorID == "" {
		fail(c, http.StatusBadRequest, "donorId is required")
		return
	}
	h.store.MarkAllNotificationsRead(req.DonorID)
	respond(c, http.StatusOK, gin.H{"read": true})
}
