package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/you/accountsvc/domain"
)

// AuthHandlers handles authentication HTTP requests
type AuthHandlers struct {
	authSvc      domain.AuthService
	lifecycleSvc domain.AccountLifecycle
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authSvc domain.AuthService, lifecycleSvc domain.AccountLifecycle) *AuthHandlers {
	return &AuthHandlers{
		authSvc:      authSvc,
		lifecycleSvc: lifecycleSvc,
	}
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Role     string `json:"role" binding:"required"`
	Email    string `json:"email" binding:"omitempty,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name"`

	// Role-specific attributes
	BusinessName string `json:"business_name"`
	TaxID        string `json:"tax_id"`
	VehicleType  string `json:"vehicle_type"`
	PlateNumber  string `json:"plate_number"`
}

// VerifyRegistrationRequest represents a registration code submission
type VerifyRegistrationRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Code       string `json:"code" binding:"required"`
}

// LoginRequest represents a password login request
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// OTPLoginRequest represents an OTP login request
type OTPLoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Code       string `json:"code" binding:"required"`
}

// ProviderLoginRequest represents an identity-provider login request
type ProviderLoginRequest struct {
	Provider    string `json:"provider" binding:"required"`
	ProviderID  string `json:"provider_id" binding:"required"`
	Email       string `json:"email" binding:"omitempty,email"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
}

// RefreshRequest represents a token refresh request
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// IdentifierRequest carries a bare email or phone
type IdentifierRequest struct {
	Identifier string `json:"identifier" binding:"required"`
}

// ResetPasswordRequest represents a password reset submission
type ResetPasswordRequest struct {
	Identifier  string `json:"identifier" binding:"required"`
	Code        string `json:"code" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ChangePasswordRequest represents a password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

func deviceMeta(c *gin.Context) domain.DeviceMeta {
	return domain.DeviceMeta{
		Type: c.GetHeader("X-Device-Type"),
		Name: c.GetHeader("X-Device-Name"),
		IP:   c.ClientIP(),
	}
}

func (r *RegisterRequest) profile() domain.RoleProfile {
	switch domain.Role(r.Role) {
	case domain.RolePartner:
		return domain.PartnerProfile{BusinessName: r.BusinessName, TaxID: r.TaxID}
	case domain.RoleShipper:
		return domain.ShipperProfile{VehicleType: r.VehicleType, PlateNumber: r.PlateNumber}
	default:
		return nil
	}
}

// Register handles account registration
func (h *AuthHandlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account, err := h.lifecycleSvc.Register(c.Request.Context(), domain.RegisterInput{
		Role:     domain.Role(req.Role),
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		Name:     req.Name,
		Profile:  req.profile(),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	message := "Account registered. Please verify your contact to activate."
	if account.Role.RequiresApproval() {
		message = "Account registered. An administrator will review your application."
	}

	c.JSON(http.StatusCreated, gin.H{
		"data": gin.H{
			"message":    message,
			"account_id": account.ID,
			"status":     account.Status,
		},
	})
}

// VerifyRegistration handles registration code verification
func (h *AuthHandlers) VerifyRegistration(c *gin.Context) {
	var req VerifyRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	account, err := h.lifecycleSvc.VerifyRegistration(c.Request.Context(), req.Identifier, req.Code)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"message":    "Verification successful",
			"account_id": account.ID,
			"status":     account.Status,
		},
	})
}

// ResendRegistrationCode re-issues the activation code for a pending customer
func (h *AuthHandlers) ResendRegistrationCode(c *gin.Context) {
	var req IdentifierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.lifecycleSvc.ResendRegistrationCode(c.Request.Context(), req.Identifier); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "If the identifier is registered, a code was sent"}})
}

// Login handles password login
func (h *AuthHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.authSvc.LoginWithPassword(c.Request.Context(), req.Identifier, req.Password, deviceMeta(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, loginResponse(result))
}

// RequestLoginOTP handles login code requests
func (h *AuthHandlers) RequestLoginOTP(c *gin.Context) {
	var req IdentifierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.authSvc.RequestLoginOTP(c.Request.Context(), req.Identifier); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "If the identifier is registered, a code was sent"}})
}

// LoginOTP handles OTP login
func (h *AuthHandlers) LoginOTP(c *gin.Context) {
	var req OTPLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.authSvc.LoginWithOTP(c.Request.Context(), req.Identifier, req.Code, deviceMeta(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, loginResponse(result))
}

// LoginProvider handles identity-provider login
func (h *AuthHandlers) LoginProvider(c *gin.Context) {
	var req ProviderLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.authSvc.LoginWithProvider(c.Request.Context(), domain.ProviderLogin{
		Provider:    req.Provider,
		ProviderID:  req.ProviderID,
		Email:       req.Email,
		DisplayName: req.DisplayName,
		AvatarURL:   req.AvatarURL,
	}, deviceMeta(c))
	if err != nil {
		respondError(c, err)
		return
	}

	body := loginResponse(result)
	body["data"].(gin.H)["is_new_account"] = result.IsNewAccount
	c.JSON(http.StatusOK, body)
}

// Refresh handles token refresh
func (h *AuthHandlers) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.authSvc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"access_token": result.AccessToken,
			"token_type":   "Bearer",
			"expires_in":   result.ExpiresIn,
		},
	})
}

// RequestPasswordReset handles reset code requests. Always reports success
// so identifiers cannot be enumerated.
func (h *AuthHandlers) RequestPasswordReset(c *gin.Context) {
	var req IdentifierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.authSvc.RequestPasswordReset(c.Request.Context(), req.Identifier); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "If the identifier is registered, a code was sent"}})
}

// ResetPassword handles password reset via code
func (h *AuthHandlers) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.authSvc.ResetPassword(c.Request.Context(), req.Identifier, req.Code, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "Password reset, all sessions signed out"}})
}

// ChangePassword handles password change (requires authentication)
func (h *AuthHandlers) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	accountID := c.GetUint("account_id")
	if err := h.authSvc.ChangePassword(c.Request.Context(), accountID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "Password changed, all sessions signed out"}})
}

// Me handles getting the account profile (requires authentication)
func (h *AuthHandlers) Me(c *gin.Context) {
	accountID := c.GetUint("account_id")

	account, err := h.authSvc.Profile(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": accountView(account)})
}

// Sessions lists the account's active sessions (requires authentication)
func (h *AuthHandlers) Sessions(c *gin.Context) {
	accountID := c.GetUint("account_id")

	sessions, err := h.authSvc.ActiveSessions(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, err)
		return
	}

	views := make([]gin.H, 0, len(sessions))
	for _, s := range sessions {
		views = append(views, gin.H{
			"id":             s.ID,
			"device_type":    s.DeviceType,
			"device_name":    s.DeviceName,
			"ip":             s.IP,
			"created_at":     s.CreatedAt,
			"last_active_at": s.LastActiveAt,
			"expires_at":     s.ExpiresAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"sessions": views}})
}

// DeleteSession terminates one session (requires authentication)
func (h *AuthHandlers) DeleteSession(c *gin.Context) {
	accountID := c.GetUint("account_id")
	sessionID := c.Param("id")

	if err := h.authSvc.Logout(c.Request.Context(), accountID, sessionID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "Session terminated"}})
}

// Logout ends the current session (requires authentication)
func (h *AuthHandlers) Logout(c *gin.Context) {
	accountID := c.GetUint("account_id")
	sessionID, exists := c.Get("session_id")
	if !exists {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Session ID not found"})
		return
	}

	if err := h.authSvc.Logout(c.Request.Context(), accountID, sessionID.(string)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "Logged out successfully"}})
}

// LogoutAll ends every session of the account (requires authentication)
func (h *AuthHandlers) LogoutAll(c *gin.Context) {
	accountID := c.GetUint("account_id")

	if err := h.authSvc.LogoutAll(c.Request.Context(), accountID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"message": "All sessions signed out"}})
}

func loginResponse(result *domain.AuthResult) gin.H {
	return gin.H{
		"data": gin.H{
			"access_token":  result.AccessToken,
			"refresh_token": result.RefreshToken,
			"token_type":    "Bearer",
			"expires_in":    result.ExpiresIn,
			"account": gin.H{
				"id":     result.Account.ID,
				"email":  result.Account.Email,
				"phone":  result.Account.Phone,
				"role":   result.Account.Role,
				"status": result.Account.Status,
			},
		},
	}
}

func accountView(account *domain.Account) gin.H {
	view := gin.H{
		"id":         account.ID,
		"email":      account.Email,
		"phone":      account.Phone,
		"name":       account.Name,
		"avatar_url": account.AvatarURL,
		"role":       account.Role,
		"status":     account.Status,
		"created_at": account.CreatedAt,
		"updated_at": account.UpdatedAt,
	}
	switch p := account.Profile.(type) {
	case domain.PartnerProfile:
		view["business_name"] = p.BusinessName
		view["tax_id"] = p.TaxID
	case domain.ShipperProfile:
		view["vehicle_type"] = p.VehicleType
		view["plate_number"] = p.PlateNumber
	}
	return view
}
