package handler

import (
	"net/http"
	"time"

	"lifeline/internal/domain"
	"lifeline/internal/models"
	"lifeline/internal/service"
	"lifeline/internal/store"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type HospitalHandler struct {
	store    *store.Store
	matching *service.MatchingService
}

func NewHospitalHandler(st *store.Store, matching *service.MatchingService) *HospitalHandler {
	return &HospitalHandler{store: st, matching: matching}
}

func (h *HospitalHandler) Register(c *gin.Context) {
	var req struct {
		Name             string              `json:"name" binding:"required"`
		License          string              `json:"license" binding:"required"`
		Establishment    string              `json:"establishment"`
		Email            string              `json:"email" binding:"required,email"`
		Contact          string              `json:"contact"`
		EmergencyHotline string              `json:"emergencyHotline"`
		Location         *models.Coordinates `json:"location"`
		Password         string              `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if _, exists := h.store.FindHospital(req.Email); exists {
		fail(c, http.StatusBadRequest, domain.ErrDuplicateEmail.Error())
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		fail(c, http.StatusInternalServerError, "registration failed")
		return
	}
	hospital := h.store.AddHospital(models.Hospital{
		Name:             req.Name,
		License:          req.License,
		Establishment:    req.Establishment,
		Email:            req.Email,
		Contact:          req.Contact,
		EmergencyHotline: req.EmergencyHotline,
		Location:         req.Location,
		PasswordHash:     string(hash),
		Status:           domain.DonorActive,
		RegisteredAt:     time.Now(),
	})
	respond(c, http.StatusCreated, hospital)
}

func (h *HospitalHandler) Get(c *gin.Context) {
	hospital, ok := h.store.HospitalByID(c.Param("id"))
	if !ok {
		fail(c, http.StatusNotFound, "hospital not found")
		return
	}
	respond(c, http.StatusOK, hospital)
}

// EligibleDonors backs the hospital's donor map: matching donors with
// distance and a coarse proximity label, nearest first. Exact donor
// coordinates never leave the server.
func (h *HospitalHandler) EligibleDonors(c *gin.Context) {
	hospital, ok := h.store.HospitalByID(c.Param("id"))
	if !ok {
		fail(c, http.StatusNotFound, "hospital not found")
		return
	}
	if hospital.Location == nil {
		fail(c, http.StatusBadRequest, "hospital has no location on record")
		return
	}
	bloodGroup := c.Query("bloodGroup")
	if bloodGroup == "" {
		bloodGroup = domain.BloodGroupAny
	}
	matches := h.matching.EligibleDonorsWithDistance(bloodGroup, *hospital.Location, time.Now())
	respond(c, http.StatusOK, matches)
}
