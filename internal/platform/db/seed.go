package db

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"calcfolha/internal/domain/auth"
	"calcfolha/internal/platform/config"
)

// Seed creates the admin account from SEED_ADMIN_EMAIL / SEED_ADMIN_PASSWORD when both are set.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(cfg.SeedAdminEmail) == "" || strings.TrimSpace(cfg.SeedAdminPassword) == "" {
		logger.Info("seed skipped: admin credentials not configured")
		return nil
	}

	hash, err := auth.HashPassword(cfg.SeedAdminPassword)
	if err != nil {
		return err
	}
	id, err := auth.NewStore(pool).EnsureUser(ctx, cfg.SeedAdminEmail, hash, true)
	if err != nil {
		return err
	}
	logger.Info("admin user ready", zap.String("userId", id))
	return nil
}
