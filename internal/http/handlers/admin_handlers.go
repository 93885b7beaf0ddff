package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/you/accountsvc/domain"
)

// AdminHandlers handles administrator account-review HTTP requests
type AdminHandlers struct {
	lifecycleSvc domain.AccountLifecycle
}

// NewAdminHandlers creates new admin handlers
func NewAdminHandlers(lifecycleSvc domain.AccountLifecycle) *AdminHandlers {
	return &AdminHandlers{lifecycleSvc: lifecycleSvc}
}

// RejectRequest carries the mandatory rejection reason
type RejectRequest struct {
	Reason string `json:"reason" binding:"required"`
}

func accountIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account id"})
		return 0, false
	}
	return uint(id), true
}

// ListPending lists accounts awaiting approval
func (h *AdminHandlers) ListPending(c *gin.Context) {
	accounts, err := h.lifecycleSvc.ListPending(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]gin.H, 0, len(accounts))
	for _, a := range accounts {
		views = append(views, accountView(a))
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"accounts": views}})
}

// Approve activates a pending partner or shipper account
func (h *AdminHandlers) Approve(c *gin.Context) {
	id, ok := accountIDParam(c)
	if !ok {
		return
	}

	if err := h.lifecycleSvc.Approve(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "Account approved"}})
}

// Reject declines a pending account with a reason
func (h *AdminHandlers) Reject(c *gin.Context) {
	id, ok := accountIDParam(c)
	if !ok {
		return
	}

	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.lifecycleSvc.Reject(c.Request.Context(), id, req.Reason); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "Account rejected"}})
}

// Deactivate disables an active account and ends its sessions
func (h *AdminHandlers) Deactivate(c *gin.Context) {
	id, ok := accountIDParam(c)
	if !ok {
		return
	}

	if err := h.lifecycleSvc.Deactivate(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "Account deactivated"}})
}

// Reactivate restores an inactive account
func (h *AdminHandlers) Reactivate(c *gin.Context) {
	id, ok := accountIDParam(c)
	if !ok {
		return
	}

	if err := h.lifecycleSvc.Reactivate(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "Account reactivated"}})
}
