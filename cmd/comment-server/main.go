// Command comment-server runs the comment backend the composer posts to.
package main

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/debemdeboas/archive-comments/internal/auth"
	"github.com/debemdeboas/archive-comments/internal/config"
	"github.com/debemdeboas/archive-comments/internal/db"
	"github.com/debemdeboas/archive-comments/internal/logger"
	"github.com/debemdeboas/archive-comments/internal/model"
	"github.com/debemdeboas/archive-comments/internal/render"
	"github.com/debemdeboas/archive-comments/internal/repository"
	"github.com/debemdeboas/archive-comments/internal/server"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "No .env file loaded")
	}

	app := &cli.App{
		Name:  "comment-server",
		Usage: "Serve comments, identity lookups and live updates for The Archive",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Load configuration from `FILE`",
				Value:   "config.yaml",
				EnvVars: []string{"ARCHIVE_CONFIG"},
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if err := config.LoadConfig(c.String("config")); err != nil {
		return err
	}
	cfg := config.AppConfig

	l := logger.New(cfg.Logging.Level, cfg.Logging.Format, "comment-server")
	setLoggers(l)
	render.Renderer = cfg.Plugins.Renderer

	sqlite := db.NewSQLite(cfg.Server.DatabasePath)
	if err := sqlite.InitDB(); err != nil {
		return fmt.Errorf(config.ErrInitializeDatabaseFmt, err)
	}
	defer sqlite.Close()

	admin := auth.Admin{
		UserID: model.UserID("admin"),
		Nick:   cfg.Auth.AdminNick,
		Email:  cfg.Auth.AdminEmail,
	}
	directory := auth.Directories{auth.StaticDirectory{admin}}
	if cfg.Auth.Clerk {
		directory = append(directory, auth.NewClerkDirectory(os.Getenv("CLERK_API")))
	}

	tokens := auth.NewTokenStore(cfg.Auth.TokenTTL())
	var provider *auth.Ed25519Provider
	if pubKey := os.Getenv("ED25519_PUBKEY"); pubKey != "" {
		var err error
		provider, err = auth.NewEd25519Provider(pubKey, cfg.Auth.HeaderName, admin, tokens)
		if err != nil {
			return fmt.Errorf(config.ErrCreateProviderFmt, err)
		}
	} else {
		l.Warn().Msg("ED25519_PUBKEY not set, administrator login disabled")
	}

	srv := server.New(server.Options{
		Comments:          repository.NewDBCommentRepository(sqlite),
		Directory:         directory,
		Provider:          provider,
		Tokens:            tokens,
		HeaderName:        cfg.Auth.HeaderName,
		CommentsPerMinute: cfg.Limits.CommentsPerMinute,
		Burst:             cfg.Limits.Burst,
		DefaultPageKey:    cfg.Site.PageKey,
	})

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := srv.Run(ctx, net.JoinHostPort(cfg.Server.Host, cfg.Server.Port))
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func setLoggers(l zerolog.Logger) {
	config.SetLogger(l)
	db.SetLogger(l)
	repository.SetLogger(l)
	auth.SetLogger(l)
	render.SetLogger(l)
	server.SetLogger(l)
}
