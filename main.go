package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/CrestNiraj12/boardhud/infra/config"
	"github.com/CrestNiraj12/boardhud/infra/dvach"
	"github.com/CrestNiraj12/boardhud/infra/logging"
	"github.com/CrestNiraj12/boardhud/infra/thumbs"
	"github.com/CrestNiraj12/boardhud/input"
	"github.com/CrestNiraj12/boardhud/render"
	"github.com/CrestNiraj12/boardhud/tui"
	"github.com/CrestNiraj12/boardhud/tui/common"
	"github.com/CrestNiraj12/boardhud/tui/cooldown"
	"github.com/CrestNiraj12/boardhud/tui/menu"
	"github.com/CrestNiraj12/boardhud/tui/thread"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type flags struct {
	ConfigPath string
	LogLevel   string
	LogFile    string
}

func resolveVersionInfo(v, c, d, moduleVersion string, settings map[string]string) (string, string, string) {
	if v == "dev" {
		mv := strings.TrimSpace(moduleVersion)
		if mv != "" && mv != "(devel)" {
			v = mv
		}
	}
	if c == "none" {
		rev := strings.TrimSpace(settings["vcs.revision"])
		if rev != "" {
			if len(rev) > 12 {
				rev = rev[:12]
			}
			c = rev
		}
	}
	if d == "unknown" {
		t := strings.TrimSpace(settings["vcs.time"])
		if t != "" {
			d = t
		}
	}
	return v, c, d
}

func buildSettingsMap(in []debug.BuildSetting) map[string]string {
	out := make(map[string]string, len(in))
	for _, s := range in {
		out[s.Key] = s.Value
	}
	return out
}

func resolvedRuntimeVersionInfo(v, c, d string) (string, string, string) {
	info, ok := debug.ReadBuildInfo()
	if !ok || info == nil {
		return v, c, d
	}
	return resolveVersionInfo(v, c, d, info.Main.Version, buildSettingsMap(info.Settings))
}

func versionString() string {
	v, c, d := resolvedRuntimeVersionInfo(version, commit, date)
	return fmt.Sprintf("%s (commit %s, built %s)", v, c, d)
}

func newCommand() *cli.Command {
	f := &flags{}
	var logCloser func()

	defaultConfig, _ := config.DefaultPath()

	return &cli.Command{
		Name:    "boardhud",
		Usage:   "Skill cooldown timers and a live imageboard thread in your terminal",
		Version: versionString(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("BOARDHUD_CONFIG"),
				Value:       defaultConfig,
				Destination: &f.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (trace, debug, info, warn, error)",
				Sources:     cli.EnvVars("BOARDHUD_LOG_LEVEL"),
				Value:       "info",
				Destination: &f.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (empty disables logging)",
				Sources:     cli.EnvVars("BOARDHUD_LOG_FILE"),
				Value:       logging.DefaultFile(),
				Destination: &f.LogFile,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logger, closer, err := logging.New(f.LogLevel, f.LogFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() > 0 {
				return fmt.Errorf("unexpected argument: %s", strings.Join(c.Args().Slice(), " "))
			}
			return run(ctx, f)
		},
	}
}

func run(ctx context.Context, f *flags) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("stdout is not a terminal")
	}

	// 1. Load config.
	cfg, err := config.Load(f.ConfigPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log.Info().Str("version", version).Str("board", cfg.Board.Board).Str("tag", cfg.Board.Tag).Msg("starting")

	// 2. Build infrastructure.
	router := input.NewRouter(log.Logger)
	res := render.NewResources()
	switches := common.NewSwitches()
	systems := buildSystems(cfg, router, res, switches, log.Logger)
	if len(systems) == 0 {
		return errors.New("no systems enabled")
	}

	// 3. Wire root TUI model.
	root := tui.NewApp(tui.Deps{
		Systems:   systems,
		Switches:  switches,
		Router:    router,
		Resources: res,
		Overlay:   cfg.Overlay,
		Logger:    log.Logger,
	})

	// 4. Run.
	p := tea.NewProgram(root, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

// buildSystems creates the enabled systems in the configured order.
func buildSystems(cfg *config.Config, router *input.Router, res *render.Resources, switches *common.Switches, logger zerolog.Logger) []tui.System {
	var systems []tui.System
	for _, name := range cfg.Systems {
		switch name {
		case config.SystemCooldown:
			if !cfg.Cooldown.Enabled {
				continue
			}
			systems = append(systems, cooldown.New(cooldown.Deps{
				Resources: res,
				Config:    cfg.Cooldown,
				Logger:    logger,
			}))
		case config.SystemBoard:
			client := dvach.NewClient(dvach.Options{
				UserAgent:       cfg.Board.UserAgent,
				RequestInterval: cfg.Board.RequestInterval,
				Timeout:         cfg.Board.RequestTimeout,
				Logger:          logger,
			})
			systems = append(systems, thread.New(thread.Deps{
				Fetcher:   dvach.NewThreadService(client, cfg.Board.BaseURL, cfg.Board.Board, cfg.Board.Tag, logger),
				Thumbs:    thumbs.New(client, thumbs.Options{Logger: logger}),
				Router:    router,
				Resources: res,
				Config:    cfg.Board,
				Logger:    logger,
			}))
		case config.SystemMenu:
			systems = append(systems, menu.New(menu.Deps{
				Router:    router,
				Switches:  switches,
				Resources: res,
				Logger:    logger,
			}))
		}
	}
	return systems
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "boardhud: %v\n", err)
		os.Exit(1)
	}
}
