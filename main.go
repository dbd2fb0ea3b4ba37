package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sadopc/breathr/internal/config"
	"github.com/sadopc/breathr/internal/export"
	"github.com/sadopc/breathr/internal/sound"
	"github.com/sadopc/breathr/internal/store"
	"github.com/sadopc/breathr/internal/tui"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// env holds what every command needs: configuration, logger and store.
type env struct {
	cfg    config.Config
	logger *slog.Logger
	store  *store.Store
	closer io.Closer
}

func openEnv(configPath string, stderr io.Writer) (*env, error) {
	if configPath == "" {
		path, err := config.DefaultPath()
		if err != nil {
			return nil, err
		}
		configPath = path
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		// Load still returns usable defaults.
		_, _ = fmt.Fprintf(stderr, "warning: %v (using defaults)\n", err)
	}

	logger, closer, err := config.OpenLogger(cfg)
	if err != nil {
		return nil, err
	}

	dbPath := cfg.DBPath
	if dbPath == "" {
		if dbPath, err = store.DefaultDBPath(); err != nil {
			closer.Close()
			return nil, err
		}
	}
	s, err := store.New(dbPath, store.WithLogger(logger))
	if err != nil {
		closer.Close()
		return nil, fmt.Errorf("open database: %w", err)
	}
	logger.Debug("environment ready", "config", configPath, "db", dbPath)
	return &env{cfg: cfg, logger: logger, store: s, closer: closer}, nil
}

func (e *env) Close() {
	e.store.Close()
	e.closer.Close()
}

// player picks the sound backend: an external command when configured,
// otherwise the terminal bell, otherwise silence.
func (e *env) player(out io.Writer) (sound.Player, error) {
	switch {
	case e.cfg.Sound.Command != "":
		p, err := sound.NewCommandPlayer(e.cfg.Sound.Command, e.cfg.Sound.Dir)
		if err != nil {
			return nil, err
		}
		return p, nil
	case e.cfg.Sound.Bell:
		return sound.NewBellPlayer(out), nil
	}
	return nil, nil
}

func newRootCmd() *cobra.Command {
	var configPath string

	runTUI := func(cmd *cobra.Command, _ []string) error {
		e, err := openEnv(configPath, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer e.Close()
		return runInteractive(e)
	}

	root := &cobra.Command{
		Use:           "breathr",
		Short:         "Guided breathing timer for the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runTUI,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default <user config dir>/breathr/config.yaml)")

	root.AddCommand(&cobra.Command{
		Use:   "tui",
		Short: "Run the terminal UI",
		RunE:  runTUI,
	})
	root.AddCommand(newRunCmd(&configPath))
	root.AddCommand(newPresetsCmd(&configPath))
	root.AddCommand(newHistoryCmd(&configPath))
	return root
}

func runInteractive(e *env) error {
	player, err := e.player(os.Stdout)
	if err != nil {
		return err
	}
	app, err := tui.NewApp(e.store, tui.Config{
		Logger:    e.logger,
		Player:    player,
		FrameRate: e.cfg.FrameRate,
	})
	if err != nil {
		return err
	}
	defer app.Close()

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func newRunCmd(configPath *string) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a session without the UI, printing each stage",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.Rounds < 0 {
				return fmt.Errorf("--rounds must be positive")
			}
			e, err := openEnv(*configPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.Close()

			player, err := e.player(cmd.OutOrStdout())
			if err != nil {
				return err
			}
			opts.Player = player
			opts.FrameRate = e.cfg.FrameRate

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return runHeadless(ctx, cmd.OutOrStdout(), e.store, e.logger, opts)
		},
	}
	cmd.Flags().StringVar(&opts.PresetID, "preset", "", "preset id to run instead of the saved stages")
	cmd.Flags().IntVar(&opts.Rounds, "rounds", 0, "override the number of rounds")
	return cmd
}

func newPresetsCmd(configPath *string) *cobra.Command {
	presets := &cobra.Command{Use: "presets", Short: "Manage saved presets"}

	presets.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved presets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := openEnv(*configPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.Close()

			list, err := e.store.LoadPresets()
			if err != nil {
				return err
			}
			if len(list) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no presets")
				return nil
			}
			for _, p := range list {
				names := make([]string, 0, len(p.Stages))
				for _, s := range p.Stages {
					names = append(names, fmt.Sprintf("%s %ds", s.Name, s.Duration))
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\trounds=%d\t%s\n", p.ID, p.Name, p.Rounds, strings.Join(names, ", "))
			}
			return nil
		},
	})

	presets.AddCommand(&cobra.Command{
		Use:   "export <file>",
		Short: "Write presets to a JSON or YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(*configPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.Close()

			list, err := e.store.LoadPresets()
			if err != nil {
				return err
			}
			if err := export.WritePresets(list, args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "exported %d presets to %s\n", len(list), args[0])
			return nil
		},
	})

	presets.AddCommand(&cobra.Command{
		Use:   "import <file>",
		Short: "Append presets from a JSON or YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(*configPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.Close()

			imported, err := export.ReadPresets(args[0])
			if err != nil {
				return err
			}
			existing, err := e.store.LoadPresets()
			if err != nil {
				return err
			}
			if err := e.store.SavePresets(export.MergePresets(existing, imported)); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "imported %d presets\n", len(imported))
			return nil
		},
	})

	return presets
}

func newHistoryCmd(configPath *string) *cobra.Command {
	history := &cobra.Command{Use: "history", Short: "Recorded sessions"}

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List recent sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := openEnv(*configPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.Close()

			sessions, err := e.store.ListSessions(store.SessionFilter{Limit: limit})
			if err != nil {
				return err
			}
			today, err := e.store.GetTodayTotal()
			if err != nil {
				return err
			}
			for _, s := range sessions {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%s\tstages=%d/%d\t%ds\n",
					s.ID, s.StartedAt.Local().Format("2006-01-02 15:04"), s.Label, s.Status,
					s.CompletedCount, s.StageCount*s.Rounds, s.TotalSeconds)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "today: %ds\n", today)
			return nil
		},
	}
	list.Flags().IntVar(&limit, "limit", 20, "number of sessions to show (0 for all)")
	history.AddCommand(list)

	history.AddCommand(&cobra.Command{
		Use:   "export <file>",
		Short: "Write all sessions to a CSV or JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(*configPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.Close()

			sessions, err := e.store.ListSessions(store.SessionFilter{})
			if err != nil {
				return err
			}
			if err := export.Sessions(sessions, args[0]); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "exported %d sessions to %s\n", len(sessions), args[0])
			return nil
		},
	})

	return history
}
