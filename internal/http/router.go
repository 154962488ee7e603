package httpx

import (
	"github.com/gin-gonic/gin"

	"github.com/ibrahimkeyboad/agrilink/internal/http/handlers"
	"github.com/ibrahimkeyboad/agrilink/internal/http/middleware"
)

func BuildRouter(ah *handlers.AuthHandlers, ph *handlers.ProfileHandlers, jwtmw *middleware.AuthMW, cb *middleware.CasbinMW) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	auth := r.Group("/auth")
	auth.POST("/otp/request", ah.RequestOTP)
	auth.POST("/otp/verify", ah.VerifyOTP)
	auth.POST("/refresh", ah.Refresh)

	v := r.Group("/").Use(jwtmw.WithJWT(), cb.Enforce())
	v.GET("/auth/session", ah.Session)
	v.POST("/auth/signout", ah.SignOut)
	v.GET("/profile", ph.Get)
	v.PUT("/profile", ph.Update)
	v.GET("/profile/completion", ph.Completion)
	v.POST("/profile/complete-onboarding", ph.CompleteOnboarding)

	return r
}
