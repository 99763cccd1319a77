package main

import (
	"context"
	"crypto/rand"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/dmitrymomot/qrstudio/core/config"
	"github.com/dmitrymomot/qrstudio/core/cookie"
	"github.com/dmitrymomot/qrstudio/core/logger"
	"github.com/dmitrymomot/qrstudio/core/server"
	"github.com/dmitrymomot/qrstudio/internal/export"
	"github.com/dmitrymomot/qrstudio/internal/studio"
	"github.com/dmitrymomot/qrstudio/internal/web"
	"github.com/dmitrymomot/qrstudio/middleware"
	"github.com/dmitrymomot/qrstudio/pkg/qrcode"
	"github.com/dmitrymomot/qrstudio/pkg/raster"
	"github.com/dmitrymomot/qrstudio/pkg/ratelimiter"
)

// pipeName selects stdout as the export destination.
const pipeName = "-"

var (
	errNothingExported = errors.New("no file was produced")
	errTerminalOutput  = errors.New("refusing to write PNG data to a terminal")
)

const usage = `Usage:
  qrstudio [serve]
  qrstudio export [-text T] [-color #rrggbb] [-size 200|300|400|500] [-out DIR|-]
`

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "qrstudio:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	cmd := "serve"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return err
	}
	log := newLogger(cfg, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case "serve":
		return serve(ctx, cfg, log)
	case "export":
		return runExport(ctx, cfg, log, args, stdout)
	case "help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
}

func newLogger(cfg Config, w io.Writer) *slog.Logger {
	opts := []logger.Option{logger.WithContextExtractors(middleware.RequestIDExtractor())}
	if cfg.IsDevelopment() {
		opts = append(opts, logger.WithDevelopment(cfg.AppName))
	} else {
		opts = append(opts, logger.WithProduction(cfg.AppName))
	}
	if cfg.LogLevel != "" {
		opts = append(opts, logger.WithLevel(logger.ParseLevel(cfg.LogLevel)))
	}
	opts = append(opts, logger.WithOutput(w))
	return logger.New(opts...)
}

func newPipeline(cfg Config, log *slog.Logger, factory raster.Factory) *export.Pipeline {
	return export.New(
		export.WithLogger(log),
		export.WithSurfaceFactory(factory),
		export.WithDecodeTimeout(cfg.ExportDecodeTimeout),
	)
}

func serve(ctx context.Context, cfg Config, log *slog.Logger) error {
	if len(cfg.Cookie.SecretList()) == 0 {
		// Sessions do not survive a restart without a configured secret.
		cfg.Cookie.Secrets = rand.Text() + rand.Text()
		log.Warn("COOKIE_SECRETS is not set, using an ephemeral secret")
	}
	cookies, err := cookie.NewFromConfig(cfg.Cookie)
	if err != nil {
		return fmt.Errorf("cookie manager: %w", err)
	}

	factory := raster.NewFactory(cfg.ExportMaxDimension)
	sessions := web.NewSessions(cookies,
		web.WithSessionTTL(cfg.SessionTTL),
		web.WithCookieName(cfg.SessionCookie),
		web.WithMaxSessions(cfg.SessionMax),
		web.WithSessionLogger(log),
	)
	opts := []web.Option{
		web.WithLogger(log),
		web.WithPipeline(newPipeline(cfg, log, factory)),
		web.WithDevelopment(cfg.IsDevelopment()),
		web.WithReadinessChecks(func(context.Context) error {
			_, err := factory.Acquire(int(studio.Size500), int(studio.Size500))
			return err
		}),
	}

	var limits *ratelimiter.MemoryStore
	if cfg.ExportRateLimit > 0 {
		limits = ratelimiter.NewMemoryStore(
			ratelimiter.WithMemoryStoreLogger(log.With(logger.Component("ratelimit"))),
			ratelimiter.WithStaleAfter(cfg.SessionTTL),
		)
		limiter, err := ratelimiter.New(limits, ratelimiter.Config{
			Capacity:       cfg.ExportRateLimit,
			RefillRate:     1,
			RefillInterval: cfg.ExportRateInterval,
		})
		if err != nil {
			return fmt.Errorf("export rate limit: %w", err)
		}
		opts = append(opts,
			web.WithExportLimiter(limiter),
			web.WithReadinessChecks(limits.Healthcheck),
		)
	}
	app := web.New(sessions, opts...)

	srv, err := server.NewFromConfig(cfg.Server,
		server.WithLogger(log),
		server.WithBaseContext(ctx),
	)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(srv.Run(ctx, app.Handler()))
	g.Go(sessions.Run(ctx, 0))
	if limits != nil {
		g.Go(limits.Run(ctx))
	}
	return g.Wait()
}

func runExport(ctx context.Context, cfg Config, log *slog.Logger, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	text := fs.String("text", studio.DefaultText, "Text to encode")
	color := fs.String("color", studio.DefaultColor, "Foreground color as #rrggbb")
	size := fs.Int("size", int(studio.DefaultSize), "Export size: 200, 300, 400 or 500")
	out := fs.String("out", ".", "Destination directory, or - for stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if !qrcode.IsHexColor(*color) {
		return fmt.Errorf("invalid color %q: want #rrggbb", *color)
	}
	s := studio.New(studio.WithLazyRender())
	if err := s.SetSize(studio.Size(*size)); err != nil {
		return fmt.Errorf("%w: %d", err, *size)
	}
	s.SetText(*text)
	s.SetColor(*color)

	var saver export.Saver
	if *out == pipeName {
		if f, ok := stdout.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return errTerminalOutput
		}
		saver = export.SaverFunc(func(_ context.Context, a export.Artifact) error {
			_, err := stdout.Write(a.Data)
			return err
		})
	} else {
		saver = export.DirSaver(*out)
	}

	pipeline := newPipeline(cfg, log, raster.NewFactory(cfg.ExportMaxDimension))
	if !pipeline.Export(ctx, s, saver) {
		return errNothingExported
	}
	if *out != pipeName {
		fmt.Fprintln(stdout, filepath.Join(*out, export.DefaultFilename))
	}
	return nil
}
