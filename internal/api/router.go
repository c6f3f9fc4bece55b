package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/ThakurAbhay9457/HostelSwap-Mutual/config"
	"github.com/ThakurAbhay9457/HostelSwap-Mutual/internal/auth"
	"github.com/ThakurAbhay9457/HostelSwap-Mutual/internal/mw"
	"github.com/ThakurAbhay9457/HostelSwap-Mutual/internal/notification"
	"github.com/ThakurAbhay9457/HostelSwap-Mutual/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(s store.Store, cfg *config.Config, notifier *notification.WorkerPool) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(s, cfg, notifier)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)

	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	studentOnly := mw.RequireRole(handler.Tokens(), auth.RoleStudent)
	adminOnly := mw.RequireRole(handler.Tokens(), auth.RoleAdmin)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/student/signup", handler.StudentSignup)
			authGroup.POST("/student/signin", handler.StudentSignin)
			authGroup.POST("/admin/signup", handler.AdminSignup)
			authGroup.POST("/admin/signin", handler.AdminSignin)
			authGroup.POST("/phone/signup", handler.PhoneSignup)
			authGroup.POST("/phone/verify", handler.PhoneVerify)
			authGroup.POST("/password/forgot", handler.PasswordForgot)
			authGroup.POST("/password/reset", handler.PasswordReset)
			authGroup.POST("/password/otp/forgot", handler.PasswordOTPForgot)
			authGroup.POST("/password/otp/reset", handler.PasswordOTPReset)
		}

		api.GET("/blocks", caching, handler.GetBlocks)
		api.GET("/students", studentOnly, handler.GetStudents)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)

		adminGroup := api.Group("/admin", adminOnly)
		{
			adminGroup.POST("/rooms/increase", handler.IncreaseRooms)
			adminGroup.POST("/rooms/decrease", handler.DecreaseRooms)
		}

		swapGroup := api.Group("/swap", studentOnly)
		{
			swapGroup.POST("/request", handler.RequestSwap)
			swapGroup.POST("/accept", handler.AcceptSwap)
			swapGroup.POST("/reject", handler.RejectSwap)
			swapGroup.GET("/list", handler.ListSwaps)
		}

		subs := api.Group("/subscriptions", studentOnly)
		{
			subs.GET("", handler.GetSubscriptions)
			subs.PUT("", handler.PutSubscription)
			subs.DELETE("", handler.DeleteSubscription)
		}
	}

	return r
}
