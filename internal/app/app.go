package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ibrahimkeyboad/agrilink/internal/config"
	httpx "github.com/ibrahimkeyboad/agrilink/internal/http"
	"github.com/ibrahimkeyboad/agrilink/internal/http/handlers"
	"github.com/ibrahimkeyboad/agrilink/internal/http/middleware"
)

func Run(cfg *config.Config, log *zap.Logger) error {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	c, err := NewContainer(cfg, log)
	if err != nil {
		return err
	}
	defer c.Close()

	authH := handlers.NewAuthHandlers(c.AuthSvc, c.UserRepo)
	profileH := handlers.NewProfileHandlers(c.ProfileSvc)

	jwtMW := middleware.NewAuthMW(c.TokenSvc, c.SessionRepo)
	casbinMW := middleware.NewCasbinMW(c.Casbin.E)

	r := httpx.BuildRouter(authH, profileH, jwtMW, casbinMW)

	if err := seedPolicies(c); err != nil {
		return err
	}

	addr := ":" + cfg.Port
	log.Info("listening", zap.String("addr", addr))
	return http.ListenAndServe(addr, r)
}

// seedPolicies installs the default role policy on an empty policy table
func seedPolicies(c *Container) error {
	policies, err := c.Casbin.E.GetPolicy()
	if err != nil {
		return err
	}
	if len(policies) > 0 {
		return nil
	}

	c.Casbin.E.AddPolicy("role_retailer", "/auth/session", "GET")
	c.Casbin.E.AddPolicy("role_retailer", "/auth/signout", "POST")
	c.Casbin.E.AddPolicy("role_retailer", "/profile", "(GET|PUT)")
	c.Casbin.E.AddPolicy("role_retailer", "/profile/*", "(GET|POST)")
	c.Casbin.E.AddPolicy("role_supplier", "/auth/session", "GET")
	c.Casbin.E.AddPolicy("role_supplier", "/auth/signout", "POST")
	c.Casbin.E.AddPolicy("role_supplier", "/profile", "(GET|PUT)")
	c.Casbin.E.AddPolicy("role_supplier", "/profile/*", "(GET|POST)")
	if err := c.Casbin.E.SavePolicy(); err != nil {
		return err
	}
	c.Log.Info("casbin: seeded default policies")
	return nil
}
