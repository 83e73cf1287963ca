package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Marcella2706/task2-GeekHaven/internal/domain"
)

// Profile godoc
// @Summary Current user's profile
// @Tags users
// @Security BearerAuth
// @Produce json
// @Success 200 {object} domain.User
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/users/profile [get]
func (h *Handler) Profile(c *gin.Context) {
	u, err := h.Auth.Profile(c.Request.Context(), c.GetString(userIDKey))
	if err != nil {
		fail(c, err, "Error fetching profile")
		return
	}
	c.JSON(http.StatusOK, u)
}

// UpdateProfile godoc
// @Summary Update the caller's profile
// @Description Only fullName, phone, location, avatar, preferences, addresses and (for sellers) sellerInfo are writable.
// @Tags users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param payload body domain.ProfileUpdate true "fields to change"
// @Success 200 {object} domain.User
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/users/profile [put]
func (h *Handler) UpdateProfile(c *gin.Context) {
	var in domain.ProfileUpdate
	if !bind(c, &in) {
		return
	}
	ctx, sp := startSpan(c, "users.update_profile")
	u, err := h.Auth.UpdateProfile(ctx, c.GetString(userIDKey), in)
	finishSpan(sp, err)
	if err != nil {
		fail(c, err, "Error updating profile")
		return
	}
	c.JSON(http.StatusOK, u)
}

// SellerProfile godoc
// @Summary Seller block of the caller's profile
// @Tags users
// @Security BearerAuth
// @Produce json
// @Success 200 {object} domain.SellerInfo
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/users/seller/profile [get]
func (h *Handler) SellerProfile(c *gin.Context) {
	si, err := h.Auth.SellerProfile(c.Request.Context(), c.GetString(userIDKey))
	if err != nil {
		fail(c, err, "Error fetching profile")
		return
	}
	c.JSON(http.StatusOK, si)
}
