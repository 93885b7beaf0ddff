package app

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/you/accountsvc/internal/clock"
	"github.com/you/accountsvc/internal/config"
	httpx "github.com/you/accountsvc/internal/http"
	"github.com/you/accountsvc/internal/http/handlers"
	"github.com/you/accountsvc/internal/http/middleware"
	"github.com/you/accountsvc/internal/infrastructure/auth"
	"github.com/you/accountsvc/internal/infrastructure/database"
	"github.com/you/accountsvc/internal/infrastructure/notifications"
	"github.com/you/accountsvc/internal/infrastructure/repositories"
	"github.com/you/accountsvc/internal/services"
	"github.com/you/accountsvc/pkg/log"
)

func Run(cfg *config.Config) error {
	logger := log.New(cfg.Env)
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	gdb, err := database.Open(cfg.DSN)
	if err != nil {
		return err
	}
	if err := database.AutoMigrate(gdb); err != nil {
		return err
	}
	cas, err := auth.NewCasbinService(gdb, cfg.CasbinModelPath)
	if err != nil {
		return err
	}
	rdb := database.NewRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB).Client
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return err
	}

	clk := clock.System{}

	// Infrastructure services
	passwordSvc := auth.NewPasswordService()
	tokenSvc := auth.NewJWTService(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.JWTIssuer, cfg.AccessTTL, cfg.RefreshTTL, clk)
	notificationSvc := notifications.NewTwilioService(cfg.TwilioSID, cfg.TwilioToken, cfg.TwilioFrom, logger)

	// Repositories
	accountRepo := repositories.NewAccountRepository(gdb)
	otpRepo := repositories.NewOTPRepository(gdb)
	sessionRepo := repositories.NewSessionRepository(rdb, clk)

	// Services
	otpSvc := services.NewOTPService(otpRepo, notificationSvc, clk, logger, services.OTPConfig{
		TTL:            cfg.OTPTTL,
		MaxAttempts:    cfg.OTPMaxAttempts,
		RequestCeiling: cfg.OTPRequestCeiling,
		RequestWindow:  cfg.OTPRequestWindow,
	})
	lifecycleSvc := services.NewLifecycleService(accountRepo, sessionRepo, passwordSvc, otpSvc, clk, logger, services.LockoutConfig{
		MaxAttempts: cfg.LockoutAttempts,
		Duration:    cfg.LockoutDuration,
	})
	authSvc := services.NewAuthService(accountRepo, sessionRepo, passwordSvc, tokenSvc, otpSvc, lifecycleSvc, clk, logger)
	policySvc := services.NewPolicyService(cas.E)

	// Handlers
	authH := handlers.NewAuthHandlers(authSvc, lifecycleSvc)
	adminH := handlers.NewAdminHandlers(lifecycleSvc)
	polH := handlers.NewPolicyHandlers(policySvc)

	// Middleware
	jwtMW := middleware.NewAuthMW(tokenSvc, sessionRepo)
	casbinMW := middleware.NewCasbinMW(cas.E)

	r := httpx.BuildRouter(authH, adminH, polH, jwtMW, casbinMW)

	policies, _ := cas.E.GetPolicy()
	if len(policies) == 0 {
		cas.E.AddPolicy("role_admin", "/admin/*", "(GET|POST|PUT|DELETE)")
		_ = cas.E.SavePolicy()
		logger.Info().Msg("casbin: seeded default policies")
	}

	addr := ":" + cfg.Port
	logger.Info().Str("addr", addr).Msg("listening")
	return http.ListenAndServe(addr, r)
}
