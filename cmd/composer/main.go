// Command composer is a terminal comment composer for The Archive: it keeps
// a draft between runs, looks the commenter up as they type their name and
// posts to the comment server.
package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/debemdeboas/archive-comments/internal/api"
	"github.com/debemdeboas/archive-comments/internal/bus"
	"github.com/debemdeboas/archive-comments/internal/composer"
	"github.com/debemdeboas/archive-comments/internal/composer/plugins"
	"github.com/debemdeboas/archive-comments/internal/config"
	"github.com/debemdeboas/archive-comments/internal/db"
	"github.com/debemdeboas/archive-comments/internal/logger"
	"github.com/debemdeboas/archive-comments/internal/render"
	"github.com/debemdeboas/archive-comments/internal/repository/draft"
	"github.com/debemdeboas/archive-comments/internal/theme"
	"github.com/debemdeboas/archive-comments/internal/tui"
	"github.com/debemdeboas/archive-comments/internal/user"
)

func main() {
	// Secrets such as S3 credentials may live in .env.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "archive-composer",
		Usage: "Write comments for The Archive from the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Load configuration from `FILE`",
				Value:   "config.yaml",
				EnvVars: []string{"ARCHIVE_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "page",
				Aliases: []string{"p"},
				Usage:   "Page key to comment on (default: site.page_key)",
			},
			&cli.StringFlag{
				Name:  "api",
				Usage: "Comment server base URL (default: api.base_url)",
			},
			&cli.StringFlag{
				Name:    "key",
				Usage:   "Ed25519 private key used for administrator login",
				EnvVars: []string{"ARCHIVE_ADMIN_KEY"},
			},
			&cli.IntFlag{
				Name:  "width",
				Usage: "Render width in columns",
				Value: 72,
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

	logOut, closeLog, err := logOutput(cfg.Logging)
	if err != nil {
		return err
	}
	defer closeLog()
	setLoggers(logger.NewWithWriter(logOut, cfg.Logging.Level, cfg.Logging.Format, "composer"))

	render.Renderer = cfg.Plugins.Renderer

	repo, err := draft.Open(cfg.Composer.Storage, nil)
	if err != nil {
		return fmt.Errorf("failed to open draft storage: %w", err)
	}
	store := draft.NewStore(repo)
	session := user.NewSession(store, cfg.Composer.ProfileKey)

	baseURL := cfg.API.BaseURL
	if c.IsSet("api") {
		baseURL = c.String("api")
	}
	client := api.New(baseURL,
		api.WithTimeout(cfg.API.Timeout()),
		api.WithHeaderName(cfg.Auth.HeaderName),
		api.WithTokenSource(func() string { return session.Profile().Token }),
	)

	factories, err := plugins.Factories(cfg.Plugins, theme.Resolve(cfg.Theme.SyntaxTheme))
	if err != nil {
		return err
	}

	pageKey := cfg.Site.PageKey
	if c.IsSet("page") {
		pageKey = c.String("page")
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
	defer stop()

	view := tui.New(c.Int("width"))
	b := bus.New()
	r := newREPL(ctx, os.Stdout, view, b, session, client, pageKey, c.String("key"))

	editor := composer.NewEditor(view, b, client, session, store, composer.Options{
		Placeholder: cfg.Composer.Placeholder,
		SendButton:  cfg.Composer.SendButton,
		DraftKey:    cfg.Composer.DraftKey,
		PageKey:     pageKey,
		Debounce:    cfg.Composer.Debounce(),
		Plugins:     r.track(factories),
	})
	defer editor.Dispose()

	r.attach(editor)
	defer r.dispose()

	return r.run(os.Stdin)
}

// logOutput keeps logs off the terminal the composer draws on unless no log
// file is configured.
func logOutput(cfg config.LoggingConfig) (io.Writer, func(), error) {
	if cfg.File == "" {
		return os.Stderr, func() {}, nil
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, func() { f.Close() }, nil
}

func setLoggers(l zerolog.Logger) {
	config.SetLogger(l)
	db.SetLogger(l)
	draft.SetLogger(l)
	user.SetLogger(l)
	api.SetLogger(l)
	render.SetLogger(l)
	composer.SetLogger(l)
}
