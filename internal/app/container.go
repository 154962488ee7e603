package app

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ibrahimkeyboad/agrilink/domain"
	"github.com/ibrahimkeyboad/agrilink/internal/config"
	"github.com/ibrahimkeyboad/agrilink/internal/infrastructure/auth"
	"github.com/ibrahimkeyboad/agrilink/internal/infrastructure/database"
	"github.com/ibrahimkeyboad/agrilink/internal/infrastructure/notifications"
	"github.com/ibrahimkeyboad/agrilink/internal/infrastructure/repositories"
	"github.com/ibrahimkeyboad/agrilink/internal/profile"
	"github.com/ibrahimkeyboad/agrilink/internal/services"
)

// Container holds all dependencies
type Container struct {
	Config *config.Config
	Log    *zap.Logger

	DB          *gorm.DB
	RedisClient *redis.Client
	Casbin      *auth.CasbinService

	UserRepo    domain.UserRepository
	SessionRepo domain.SessionRepository
	ProfileRepo domain.ProfileStore

	TokenSvc        domain.TokenService
	NotificationSvc domain.NotificationService
	OTPSvc          domain.OTPService
	AuthSvc         domain.AuthService
	ProfileSvc      *profile.Service
}

// NewContainer creates and initializes all dependencies
func NewContainer(cfg *config.Config, log *zap.Logger) (*Container, error) {
	container := &Container{Config: cfg, Log: log}

	if err := container.initDatabase(); err != nil {
		return nil, err
	}
	if err := container.initRedis(); err != nil {
		return nil, err
	}

	container.initRepositories()
	container.initServices()

	return container, nil
}

func (c *Container) initDatabase() error {
	db, err := database.Open(c.Config.DSN)
	if err != nil {
		return err
	}
	if err := database.AutoMigrate(db); err != nil {
		return err
	}

	cas, err := auth.NewCasbinService(db, c.Config.CasbinModelPath)
	if err != nil {
		return err
	}

	c.DB = db
	c.Casbin = cas
	return nil
}

func (c *Container) initRedis() error {
	rdb := database.NewRedis(c.Config.RedisAddr, c.Config.RedisPassword, c.Config.RedisDB)
	if err := rdb.Client.Ping(context.Background()).Err(); err != nil {
		return err
	}
	c.RedisClient = rdb.Client
	return nil
}

func (c *Container) initRepositories() {
	c.UserRepo = repositories.NewUserRepository(c.DB)
	c.SessionRepo = repositories.NewSessionRepository(c.RedisClient, c.Config.RefreshTTL)
	c.ProfileRepo = repositories.NewProfileRepository(c.DB)
}

func (c *Container) initServices() {
	c.TokenSvc = auth.NewJWTService(
		c.Config.JWTSecret,
		c.Config.JWTIssuer,
		c.Config.AccessTTL,
		c.Config.RefreshTTL,
	)
	c.NotificationSvc = notifications.NewTwilioService(
		c.Config.TwilioSID,
		c.Config.TwilioToken,
		c.Config.TwilioFrom,
		c.Log,
	)

	otpConfig := services.OTPConfig{
		Length:       c.Config.OTP_Length,
		TTL:          c.Config.OTP_TTL,
		MaxAttempts:  c.Config.OTP_MaxAttempts,
		ResendWindow: c.Config.OTP_ResendWindow,
	}
	c.OTPSvc = services.NewOTPService(c.NotificationSvc, c.RedisClient, otpConfig)

	c.AuthSvc = services.NewAuthService(
		c.UserRepo,
		c.SessionRepo,
		c.TokenSvc,
		c.OTPSvc,
		c.Config.AccessTTL,
	)

	c.ProfileSvc = profile.NewService(c.ProfileRepo, c.Log)
}

// Close closes all connections
func (c *Container) Close() error {
	if c.RedisClient != nil {
		c.RedisClient.Close()
	}

	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}

	return nil
}
