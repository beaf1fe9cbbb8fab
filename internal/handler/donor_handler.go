package handler

import (
	"net/http"
	"sort"
	"time"

	"lifeline/internal/domain"
	"lifeline/internal/models"
	"lifeline/internal/service"
	"lifeline/internal/store"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type DonorHandler struct {
	store    *store.Store
	matching *service.MatchingService
}

func NewDonorHandler(st *store.Store, matching *service.MatchingService) *DonorHandler {
	return &DonorHandler{store: st, matching: matching}
}

func (h *DonorHandler) Register(c *gin.Context) {
	var req struct {
		Name         string              `json:"name" binding:"required"`
		BloodGroup   string              `json:"bloodGroup" binding:"required"`
		Age          int                 `json:"age"`
		Weight       float64             `json:"weight"`
		Phone        string              `json:"phone"`
		Email        string              `json:"email" binding:"required,email"`
		Password     string              `json:"password" binding:"required"`
		Location     *models.Coordinates `json:"location"`
		Medical      []string            `json:"medical"`
		Lifestyle    models.Lifestyle    `json:"lifestyle"`
		LastDonation *time.Time          `json:"lastDonation"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if !domain.ValidBloodGroup(req.BloodGroup) {
		fail(c, http.StatusBadRequest, "invalid blood group")
		return
	}
	if _, exists := h.store.DonorByEmail(req.Email); exists {
		fail(c, http.StatusBadRequest, domain.ErrDuplicateEmail.Error())
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		fail(c, http.StatusInternalServerError, "registration failed")
		return
	}
	donor := h.store.AddDonor(models.Donor{
		Name:         req.Name,
		BloodGroup:   req.BloodGroup,
		Age:          req.Age,
		Weight:       req.Weight,
		Phone:        req.Phone,
		Email:        req.Email,
		PasswordHash: string(hash),
		Location:     req.Location,
		Medical:      req.Medical,
		Lifestyle:    req.Lifestyle,
		LastDonation: req.LastDonation,
		Status:       domain.DonorActive,
		RegisteredAt: time.Now(),
	})
	respond(c, http.StatusCreated, donor)
}

func (h *DonorHandler) Update(c *gin.Context) {
	var req struct {
		ID           string              `json:"id"`
		Name         *string             `json:"name"`
		BloodGroup   *string             `json:"bloodGroup"`
		Age          *int                `json:"age"`
		Weight       *float64            `json:"weight"`
		Phone        *string             `json:"phone"`
		Email        *string             `json:"email"`
		Location     *models.Coordinates `json:"location"`
		Medical      *models.StringList  `json:"medical"`
		Lifestyle    *models.Lifestyle   `json:"lifestyle"`
		LastDonation *time.Time          `json:"lastDonation"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.ID == "" {
		fail(c, http.StatusBadRequest, "donor id is required")
		return
	}
	if req.BloodGroup != nil && !domain.ValidBloodGroup(*req.BloodGroup) {
		fail(c, http.StatusBadRequest, "invalid blood group")
		return
	}
	h.store.UpdateDonor(req.ID, store.DonorPatch{
		Name:         req.Name,
		BloodGroup:   req.BloodGroup,
		Age:          req.Age,
		Weight:       req.Weight,
		Phone:        req.Phone,
		Email:        req.Email,
		Location:     req.Location,
		Medical:      req.Medical,
		Lifestyle:    req.Lifestyle,
		LastDonation: req.LastDonation,
	})
	respond(c, http.StatusOK, gin.H{"id": req.ID})
}

// Availability is the manual active/inactive toggle. Cooldown always wins:
// while the rest period runs the flag cannot be changed in either
// direction.
func (h *DonorHandler) Availability(c *gin.Context) {
	var req struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.ID == "" || req.Status == "" {
		fail(c, http.StatusBadRequest, "donor id and status are required")
		return
	}
	if req.Status != domain.DonorActive && req.Status != domain.DonorInactive {
		fail(c, http.StatusBadRequest, "status must be active or inactive")
		return
	}
	donor, ok := h.store.DonorByID(req.ID)
	if !ok {
		fail(c, http.StatusBadRequest, "donor not found")
		return
	}
	if donor.OnCooldown(time.Now()) {
		fail(c, http.StatusBadRequest, domain.ErrOnCooldown.Error())
		return
	}
	h.store.UpdateDonor(req.ID, store.DonorPatch{Status: &req.Status})
	respond(c, http.StatusOK, gin.H{"id": req.ID, "status": req.Status})
}

func (h *DonorHandler) Get(c *gin.Context) {
	donor, ok := h.store.DonorByID(c.Param("id"))
	if !ok {
		fail(c, http.StatusNotFound, "donor not found")
		return
	}
	now := time.Now()
	respond(c, http.StatusOK, gin.H{
		"donor":                 donor,
		"onCooldown":            donor.OnCooldown(now),
		"cooldownRemainingDays": donor.CooldownRemainingDays(now),
	})
}

func (h *DonorHandler) Donations(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.store.DonorByID(id); !ok {
		fail(c, http.StatusNotFound, "donor not found")
		return
	}
	list := h.store.DonationsByDonor(id)
	sort.Slice(list, func(i, j int) bool { return list[i].DonatedAt.After(list[j].DonatedAt) })
	respond(c, http.StatusOK, list)
}

// VisibleRequests is the donor's feed: own accepted requests always, plus
// open ones that pass the eligibility filter and were not declined before.
func (h *DonorHandler) VisibleRequests(c *gin.Context) {
	donor, ok := h.store.DonorByID(c.Param("id"))
	if !ok {
		fail(c, http.StatusNotFound, "donor not found")
		return
	}
	respond(c, http.StatusOK, h.matching.VisibleRequests(donor, time.Now()))
}
