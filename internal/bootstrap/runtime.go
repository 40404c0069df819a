// Package bootstrap wires up process-level runtime dependencies shared by the
// server and the auxiliary commands.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"snapfeed/internal/cache"
	"snapfeed/internal/config"
	"snapfeed/internal/database"
	"snapfeed/internal/models"
	"snapfeed/internal/observability"
	"snapfeed/internal/seed"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemoData populates an empty development database with sample
	// users and posts so the feed is not blank on first run.
	SeedDemoData bool
}

// Runtime holds the initialized process dependencies.
type Runtime struct {
	DB             *gorm.DB
	Redis          *redis.Client
	tracerShutdown func(context.Context) error
}

// InitRuntime connects to DB and Redis, starts tracing when enabled and
// optionally seeds demo data in development.
func InitRuntime(cfg *config.Config, opts Options) (*Runtime, error) {
	rt := &Runtime{}

	if cfg.TracingEnabled {
		shutdown, err := observability.InitTracing(observability.TracingConfig{
			ServiceName:  "snapfeed-api",
			Environment:  cfg.Env,
			Enabled:      true,
			Exporter:     cfg.TracingExport,
			OTLPEndpoint: cfg.OTLPEndpoint,
			SamplerRatio: cfg.SamplerRatio,
		})
		if err != nil {
			return nil, fmt.Errorf("tracing initialization failed: %w", err)
		}
		rt.tracerShutdown = shutdown
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	rt.DB = db

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)
	rt.Redis = cache.GetClient()

	if err := ensureDevUser(cfg, db); err != nil {
		return nil, fmt.Errorf("failed to bootstrap development user: %w", err)
	}

	if opts.SeedDemoData {
		if err := seedDemoData(cfg, db); err != nil {
			return nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	return rt, nil
}

// Close releases runtime resources not owned by the server.
func (rt *Runtime) Close(ctx context.Context) {
	if rt.tracerShutdown != nil {
		if err := rt.tracerShutdown(ctx); err != nil {
			log.Printf("tracer shutdown error: %v", err)
		}
	}
}

// ensureDevUser guarantees a stable login for local development. It never
// runs outside the development environment.
func ensureDevUser(cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	if !strings.EqualFold(cfg.Env, "development") {
		return nil
	}

	const email = "dev@snapfeed.local"

	var existing models.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash dev password: %w", err)
	}

	user := models.User{
		Name:     "Dev User",
		Email:    email,
		Password: string(hashed),
	}
	if err := db.Create(&user).Error; err != nil {
		return err
	}

	log.Printf("development user bootstrap ensured (%s)", email)
	return nil
}

// seedDemoData fills an empty development database with a small data set.
// A database that already has posts is left untouched.
func seedDemoData(cfg *config.Config, db *gorm.DB) error {
	if !strings.EqualFold(cfg.Env, "development") {
		return nil
	}

	var count int64
	if err := db.Model(&models.Post{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	return seed.Seed(db, seed.Options{
		NumUsers: 10,
		NumPosts: 40,
		MaxDays:  30,
	})
}
