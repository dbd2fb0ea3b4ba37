package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/sadopc/breathr/internal/breath"
	"github.com/sadopc/breathr/internal/engine"
	"github.com/sadopc/breathr/internal/session"
	"github.com/sadopc/breathr/internal/sound"
	"github.com/sadopc/breathr/internal/store"
)

var errNoStages = errors.New("no stages configured")

type runOptions struct {
	PresetID  string
	Rounds    int
	FrameRate int
	Player    sound.Player
	Clock     engine.Clock
}

// runHeadless runs one session on a runtime timer and prints every stage
// transition. Cancelling ctx stops the run and records it as cancelled.
func runHeadless(ctx context.Context, out io.Writer, s *store.Store, logger *slog.Logger, opts runOptions) error {
	cfg, err := s.LoadConfig()
	if err != nil {
		return err
	}
	label := "Custom"
	if opts.PresetID != "" {
		presets, err := s.LoadPresets()
		if err != nil {
			return err
		}
		p, err := presets.Find(opts.PresetID)
		if err != nil {
			return err
		}
		cfg = cfg.ApplyPreset(p)
		label = p.Name
	}
	if opts.Rounds > 0 {
		cfg = cfg.SetRounds(opts.Rounds)
	}
	if len(cfg.Stages) == 0 {
		return errNoStages
	}

	notifier := sound.NewNotifier(ctx, opts.Player, logger)
	defer notifier.Wait()
	recorder := session.NewRecorder(s, notifier, logger)

	scheduler := engine.NewTimerScheduler(engine.FrameInterval(opts.FrameRate), opts.Clock)
	eng := engine.New(cfg, scheduler, engine.WithClock(opts.Clock), engine.WithLogger(logger))
	eng.OnStageComplete(recorder.StageComplete)
	events := eng.Subscribe(16)

	if err := recorder.Begin(label, cfg); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "%s: %d stages x %d rounds, %s\n",
		label, len(cfg.Stages), cfg.Rounds, breath.FormatDuration(cfg.TotalSeconds()))
	first := cfg.Stages[0]
	_, _ = fmt.Fprintf(out, "round 1/%d  %s %ds\n", cfg.Rounds, first.Name, first.Duration)
	eng.Start()

	for {
		select {
		case <-ctx.Done():
			eng.Stop()
			recorder.Cancel()
			_, _ = fmt.Fprintln(out, "cancelled")
			return nil

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev.Type {
			case engine.EventStageComplete:
				c := ev.Completion
				if c.Next != nil {
					_, _ = fmt.Fprintf(out, "round %d/%d  %s %ds\n", ev.State.Round, cfg.Rounds, c.Next.Name, c.Next.Duration)
				}
			case engine.EventFinished:
				eng.Stop()
				_, _ = fmt.Fprintln(out, "session complete")
				return nil
			}
		}
	}
}
