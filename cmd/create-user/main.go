package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/activity-tracker-api/internal/models"
	"github.com/noah-isme/activity-tracker-api/internal/repository"
	"github.com/noah-isme/activity-tracker-api/internal/service"
	"github.com/noah-isme/activity-tracker-api/pkg/cache"
	"github.com/noah-isme/activity-tracker-api/pkg/config"
	"github.com/noah-isme/activity-tracker-api/pkg/database"
	appErrors "github.com/noah-isme/activity-tracker-api/pkg/errors"
	"github.com/noah-isme/activity-tracker-api/pkg/logger"
)

// Seeds a team member, typically the first ADMIN, so someone can sign in.
func main() {
	email := flag.String("email", "", "login email")
	name := flag.String("name", "", "display name")
	role := flag.String("role", string(models.RoleAdmin), "ADMIN or MEMBER")
	position := flag.String("position", "", "job position")
	department := flag.String("department", "", "department")
	flag.Parse()

	password := os.Getenv("CREATE_USER_PASSWORD")
	if *email == "" || *name == "" || password == "" {
		fmt.Fprintln(os.Stderr, "usage: CREATE_USER_PASSWORD=... create-user -email=ops@example.com -name=Ops [-role=ADMIN]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, reports will not be invalidated", zap.Error(err))
		redisClient = nil
	}
	cacheSvc := service.NewCacheService(repository.NewCacheRepository(redisClient), nil, cfg.Reports.CacheTTL, logr, redisClient != nil)

	users := service.NewUserService(repository.NewUserRepository(db), cacheSvc, service.NewValidator(), logr)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	user, err := users.Create(ctx, service.CreateUserRequest{
		Email:      *email,
		Name:       *name,
		Role:       models.UserRole(*role),
		Position:   optional(*position),
		Department: optional(*department),
		Password:   password,
	})
	if err != nil {
		if errors.Is(err, appErrors.ErrConflict) {
			logr.Info("user already exists", zap.String("email", *email))
			return
		}
		logr.Fatal("create user failed", zap.Error(err))
	}
	logr.Info("user created", zap.String("id", user.ID), zap.String("email", user.Email), zap.String("role", string(user.Role)))
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
