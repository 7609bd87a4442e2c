package main

import (
	"context"
	"flag"
	"os"

	"go-remedyflow/internal/config"
	"go-remedyflow/internal/migrate"
	"go-remedyflow/internal/repository"
	"go-remedyflow/internal/service"
	"go-remedyflow/pkg/database"
	"go-remedyflow/pkg/jwt"
	"go-remedyflow/pkg/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// create-admin creates the admin account or resets its password, and
// grants it every privilege.
func main() {
	_ = godotenv.Load()

	if err := logger.Init(true); err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.L()

	cfg := config.Load(log)

	email := flag.String("email", cfg.Admin.Email, "admin email")
	password := flag.String("password", cfg.Admin.Password, "admin password (at least 8 characters)")
	name := flag.String("name", cfg.Admin.FullName, "admin display name")
	flag.Parse()

	if *password == "" {
		log.Error("password is required: pass -password or set ADMIN_PASSWORD")
		os.Exit(2)
	}

	db := database.ConnectDB(cfg.DB, log)
	defer database.CloseDB(db, log)

	ctx := context.Background()
	if err := migrate.Run(ctx, db, log, migrate.DefaultOptions()); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}

	auth := service.NewAuthService(repository.New(db), jwt.NewManager(cfg.JWTSecret, cfg.JWTTTL), log)
	user, err := auth.EnsureAdmin(ctx, *email, *password, *name)
	if err != nil {
		log.Fatal("failed to create admin", zap.Error(err))
	}
	log.Info("admin ready", zap.String("email", user.Email), zap.Int("privileges", len(user.Privileges)))
}
