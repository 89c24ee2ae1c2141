package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"restaurant_ops_backend/internal/config"
	"restaurant_ops_backend/internal/database"
	"restaurant_ops_backend/internal/models"
	"restaurant_ops_backend/internal/repositories"
	"restaurant_ops_backend/internal/repositories/memory"
	"restaurant_ops_backend/internal/router"
	"restaurant_ops_backend/internal/services"
	"restaurant_ops_backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

func main() {
	app := &cli.App{
		Name:  "restaurant-ops",
		Usage: "restaurant order, kitchen and inventory backend",
		Before: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			utils.InitLogger(cfg.Level, cfg.Pretty)
			c.App.Metadata = map[string]interface{}{"config": cfg}
			return nil
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API",
				Action: serve,
			},
			{
				Name:  "migrate",
				Usage: "apply or roll back database migrations",
				Subcommands: []*cli.Command{
					{
						Name:  "up",
						Usage: "apply all pending migrations",
						Action: func(c *cli.Context) error {
							return database.MigrateUp(configFrom(c).MigrateURL())
						},
					},
					{
						Name:  "down",
						Usage: "roll back migrations",
						Flags: []cli.Flag{
							&cli.IntFlag{Name: "steps", Value: 1, Usage: "number of migrations to roll back"},
						},
						Action: func(c *cli.Context) error {
							return database.MigrateDown(configFrom(c).MigrateURL(), c.Int("steps"))
						},
					},
				},
			},
			{
				Name:  "create-user",
				Usage: "create a staff account in the database",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Required: true},
					&cli.StringFlag{Name: "password", Required: true},
					&cli.StringFlag{Name: "full-name"},
					&cli.StringFlag{Name: "role", Value: "Admin", Usage: "Admin, Server or Cook"},
				},
				Action: createUser,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		utils.LogError(err, "Command failed")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func configFrom(c *cli.Context) *config.Config {
	return c.App.Metadata["config"].(*config.Config)
}

// openStore builds the transactional store and repositories for the configured driver.
func openStore(ctx context.Context, cfg *config.Config) (repositories.TxRunner, repositories.Set, func(), error) {
	if cfg.StoreDriver == config.DriverMemory {
		store := memory.NewStore()
		utils.LogInfo("Using in-memory store")
		return store, memory.NewSet(store), func() {}, nil
	}

	db, err := database.Open(ctx, cfg.DSN(), database.Options{
		MaxOpenConns:    cfg.MaxOpenConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	})
	if err != nil {
		return nil, repositories.Set{}, nil, err
	}
	closeFn := func() {
		if err := db.Close(); err != nil {
			utils.LogError(err, "Failed to close database")
		}
	}
	return repositories.NewTxRunner(db), repositories.NewPostgresSet(), closeFn, nil
}

func serve(c *cli.Context) error {
	cfg := configFrom(c)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, repos, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)

	if cfg.BootstrapAdminUsername != "" {
		if err := bootstrapAdmin(ctx, store, repos, tokens, cfg); err != nil {
			return err
		}
	}

	if !cfg.Pretty {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	router.Setup(engine, router.Dependencies{
		Store:          store,
		Repos:          repos,
		Tokens:         tokens,
		Clock:          services.SystemClock{},
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: engine}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		utils.LogInfo("Server starting", map[string]interface{}{"port": cfg.Port, "store_driver": cfg.StoreDriver})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		utils.LogInfo("Server shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// bootstrapAdmin creates the configured admin account unless it already exists.
func bootstrapAdmin(ctx context.Context, store repositories.TxRunner, repos repositories.Set, tokens services.TokenIssuer, cfg *config.Config) error {
	authService := services.NewAuthService(store, repos.Auth, tokens, services.SystemClock{})
	_, err := authService.CreateUser(ctx, services.CreateUserRequest{
		Username: cfg.BootstrapAdminUsername,
		Password: cfg.BootstrapAdminPassword,
		Role:     models.RoleAdmin,
	})
	if errors.Is(err, services.ErrUsernameExists) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create bootstrap admin: %w", err)
	}
	utils.LogInfo("Bootstrap admin created", map[string]interface{}{"username": cfg.BootstrapAdminUsername})
	return nil
}

func createUser(c *cli.Context) error {
	cfg := configFrom(c)
	db, err := database.Open(c.Context, cfg.DSN(), database.Options{MaxOpenConns: 1})
	if err != nil {
		return err
	}
	defer db.Close()

	authService := services.NewAuthService(repositories.NewTxRunner(db), repositories.NewAuthRepository(), utils.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL), services.SystemClock{})
	user, err := authService.CreateUser(c.Context, services.CreateUserRequest{
		Username: c.String("username"),
		Password: c.String("password"),
		FullName: c.String("full-name"),
		Role:     c.String("role"),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "created user %d (%s, %s)\n", user.ID, user.Username, user.Role)
	return nil
}
