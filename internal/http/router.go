package httpx

import (
	"github.com/gin-gonic/gin"

	"github.com/you/accountsvc/internal/http/handlers"
	"github.com/you/accountsvc/internal/http/middleware"
)

func BuildRouter(ah *handlers.AuthHandlers, adh *handlers.AdminHandlers, ph *handlers.PolicyHandlers, jwtmw *middleware.AuthMW, cb *middleware.CasbinMW) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	auth := r.Group("/auth")
	auth.POST("/register", ah.Register)
	auth.POST("/register/verify", ah.VerifyRegistration)
	auth.POST("/register/otp/resend", ah.ResendRegistrationCode)
	auth.POST("/login", ah.Login)
	auth.POST("/login/otp/request", ah.RequestLoginOTP)
	auth.POST("/login/otp", ah.LoginOTP)
	auth.POST("/login/provider", ah.LoginProvider)
	auth.POST("/refresh", ah.Refresh)
	auth.POST("/password/reset/request", ah.RequestPasswordReset)
	auth.POST("/password/reset", ah.ResetPassword)

	v := r.Group("/").Use(jwtmw.WithJWT())
	v.GET("/auth/me", ah.Me)
	v.POST("/auth/logout", ah.Logout)
	v.POST("/auth/logout/all", ah.LogoutAll)
	v.GET("/auth/sessions", ah.Sessions)
	v.DELETE("/auth/sessions/:id", ah.DeleteSession)
	v.POST("/auth/password/change", ah.ChangePassword)

	adm := r.Group("/admin").Use(jwtmw.WithJWT(), cb.Enforce())
	adm.GET("/accounts/pending", adh.ListPending)
	adm.POST("/accounts/:id/approve", adh.Approve)
	adm.POST("/accounts/:id/reject", adh.Reject)
	adm.POST("/accounts/:id/deactivate", adh.Deactivate)
	adm.POST("/accounts/:id/reactivate", adh.Reactivate)
	adm.GET("/policies", ph.List)
	adm.POST("/policies", ph.Add)
	adm.DELETE("/policies", ph.Remove)

	return r
}
