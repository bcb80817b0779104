// Package bootstrap wires configuration, storage and the HTTP layer together.
package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/oguzk/acadcore/internal/app/controllers"
	appMigrations "github.com/oguzk/acadcore/internal/app/migrations"
	appRepos "github.com/oguzk/acadcore/internal/app/repositories"
	appRoutes "github.com/oguzk/acadcore/internal/app/routes"
	appServices "github.com/oguzk/acadcore/internal/app/services"
	"github.com/oguzk/acadcore/internal/config"
	"github.com/oguzk/acadcore/internal/db"
	pkgAuth "github.com/oguzk/acadcore/internal/pkg/auth"
	"github.com/oguzk/acadcore/internal/pkg/logger"
	"github.com/oguzk/acadcore/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos                *appRepos.Repositories
	Services             *appServices.Services
	JWTService           *pkgAuth.JWTService
	AuthController       *appControllers.AuthController
	AssignmentController *appControllers.AssignmentController
	StudentController    *appControllers.StudentController
	Logger               zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := dbPool.Ping(ctx); err != nil {
		lgr.Error().Err(err).Msg("Failed to ping database")
		dbPool.Close()
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	migrator := appMigrations.NewMigrator(dbPool)

	migrationsDir := "migrations"
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	if err := migrator.MigrateFromDirectory(migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	if err := seed.CreateDefaultData(context.Background(), dbPool, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return dbPool, nil
}

// BuildDependencies initializes repositories, services and controllers.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(dbPool)

	accessTokenExp, err := time.ParseDuration(cfg.JWT.AccessTokenExpiration)
	if err != nil {
		return nil, fmt.Errorf("invalid access token expiration: %w", err)
	}
	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: accessTokenExp,
		TokenIssuer:    cfg.JWT.Issuer,
	})

	deps.Services = appServices.NewServices(deps.Repos, deps.JWTService, nil)

	deps.AuthController = appControllers.NewAuthController(deps.Services.Auth, lgr)
	deps.AssignmentController = appControllers.NewAssignmentController(deps.Services.Ledger, deps.Services.Repair, lgr)
	deps.StudentController = appControllers.NewStudentController(deps.Services.Reconcile, lgr)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.Default()

	appRoutes.SetupSwagger(router)
	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.AssignmentController,
		deps.StudentController,
		deps.JWTService,
	)

	return router
}
