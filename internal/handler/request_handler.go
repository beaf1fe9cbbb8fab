package handler

import (
	"errors"
	"net/http"
	"sort"

	"lifeline/internal/domain"
	"lifeline/internal/models"
	"lifeline/internal/service"
	"lifeline/internal/store"

	"github.com/gin-gonic/gin"
)

type RequestHandler struct {
	store    *store.Store
	requests *service.RequestService
}

func NewRequestHandler(st *store.Store, requests *service.RequestService) *RequestHandler {
	return &RequestHandler{store: st, requests: requests}
}

func (h *RequestHandler) Create(c *gin.Context) {
	var req struct {
		HospitalID string `json:"hospitalId" binding:"required"`
		BloodGroup string `json:"bloodGroup" binding:"required"`
		Units      int    `json:"units" binding:"required"`
		Urgency    string `json:"urgency" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	created, err := h.requests.Create(req.HospitalID, req.BloodGroup, req.Units, req.Urgency)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			fail(c, http.StatusBadRequest, "hospital not found")
			return
		}
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	respond(c, http.StatusCreated, created)
}

func (h *RequestHandler) Accept(c *gin.Context) {
	var req struct {
		RequestID string `json:"requestId"`
		DonorID   string `json:"donorId"`
		DonorName string `json:"donorName"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.RequestID == "" || req.DonorID == "" {
		fail(c, http.StatusBadRequest, "requestId and donorId are required")
		return
	}
	accepted, err := h.requests.Accept(req.RequestID, req.DonorID, req.DonorName)
	if err != nil {
		// Losing the accept race is an expected conflict, not a server error.
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	respond(c, http.StatusOK, accepted)
}

func (h *RequestHandler) Reject(c *gin.Context) {
	var req struct {
		RequestID string `json:"requestId"`
		DonorID   string `json:"donorId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.RequestID == "" || req.DonorID == "" {
		fail(c, http.StatusBadRequest, "requestId and donorId are required")
		return
	}
	if err := h.requests.Reject(req.RequestID, req.DonorID); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	respond(c, http.StatusOK, gin.H{"rejected": true})
}

func (h *RequestHandler) Complete(c *gin.Context) {
	var req struct {
		RequestID      string `json:"requestId"`
		DonationNumber string `json:"donationNumber"`
		DonorID        string `json:"donorId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.RequestID == "" {
		fail(c, http.StatusBadRequest, "requestId is required")
		return
	}
	completed, err := h.requests.Approve(req.RequestID, req.DonationNumber)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			fail(c, http.StatusBadRequest, "request not found")
			return
		}
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	respond(c, http.StatusOK, completed)
}

func (h *RequestHandler) Delete(c *gin.Context) {
	id := c.Query("requestId")
	if id == "" {
		fail(c, http.StatusBadRequest, "requestId is required")
		return
	}
	if err := h.requests.Delete(id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			fail(c, http.StatusNotFound, "request not found")
			return
		}
		fail(c, http.StatusInternalServerError, "delete failed")
		return
	}
	respond(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *RequestHandler) ByHospital(c *gin.Context) {
	hospitalID := c.Query("hospitalId")
	if hospitalID == "" {
		fail(c, http.StatusBadRequest, "hospitalId is required")
		return
	}
	list := h.store.RequestsByHospital(hospitalID)
	sortNewestFirst(list)
	respond(c, http.StatusOK, list)
}

// ForDonor lists open requests for a blood group. The richer per-donor view
// (rejection set, radius, own accepted requests) lives on
// /donors/:id/requests.
func (h *RequestHandler) ForDonor(c *gin.Context) {
	bloodGroup := c.Query("bloodGroup")
	if bloodGroup == "" {
		fail(c, http.StatusBadRequest, "bloodGroup is required")
		return
	}
	var list []models.BloodRequest
	for _, req := range h.store.Requests() {
		if req.BloodGroup == bloodGroup && req.Status == domain.RequestStatusPending {
			list = append(list, req)
		}
	}
	sortNewestFirst(list)
	respond(c, http.StatusOK, list)
}

func sortNewestFirst(list []models.BloodRequest) {
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
}
