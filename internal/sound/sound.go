package sound

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sadopc/breathr/internal/breath"
)

// ErrNoFile is returned when a sound has no associated audio file.
var ErrNoFile = errors.New("no audio file for sound")

var files = map[breath.Sound]string{
	breath.SoundMarimba:   "marimba-loop.mp3",
	breath.SoundRingtone:  "ringtone.mp3",
	breath.SoundTimerTick: "timer-terminer.mp3",
}

// File returns the audio file name of a sound, or "" for none.
func File(s breath.Sound) string {
	return files[s]
}

// Player plays a stage-completion sound.
type Player interface {
	Play(ctx context.Context, s breath.Sound) error
}

// BellPlayer rings the terminal bell for every sound.
type BellPlayer struct {
	mu  sync.Mutex
	out io.Writer
}

func NewBellPlayer(out io.Writer) *BellPlayer {
	return &BellPlayer{out: out}
}

func (p *BellPlayer) Play(_ context.Context, s breath.Sound) error {
	if s == breath.SoundNone {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := io.WriteString(p.out, "\a")
	return err
}

// CommandPlayer runs an external audio player with the sound file path.
type CommandPlayer struct {
	name string
	args []string
	dir  string
}

// NewCommandPlayer parses a command line such as "paplay" or
// "mpv --no-video {file}". Files are resolved relative to dir.
func NewCommandPlayer(command, dir string) (*CommandPlayer, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, errors.New("empty sound command")
	}
	return &CommandPlayer{name: fields[0], args: fields[1:], dir: dir}, nil
}

// Args returns the argument list used to play file.
func (p *CommandPlayer) Args(file string) []string {
	args := make([]string, 0, len(p.args)+1)
	replaced := false
	for _, a := range p.args {
		if strings.Contains(a, "{file}") {
			a = strings.ReplaceAll(a, "{file}", file)
			replaced = true
		}
		args = append(args, a)
	}
	if !replaced {
		args = append(args, file)
	}
	return args
}

func (p *CommandPlayer) Play(ctx context.Context, s breath.Sound) error {
	name := File(s)
	if name == "" {
		if s == breath.SoundNone {
			return nil
		}
		return fmt.Errorf("%w: %q", ErrNoFile, s)
	}
	path := filepath.Join(p.dir, name)
	cmd := exec.CommandContext(ctx, p.name, p.Args(path)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("play %s: %w: %s", name, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Notifier plays stage sounds in the background and only logs failures,
// so a broken audio setup never interrupts a session.
type Notifier struct {
	player Player
	logger *slog.Logger
	ctx    context.Context
	wg     sync.WaitGroup
}

func NewNotifier(ctx context.Context, player Player, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Notifier{player: player, logger: logger, ctx: ctx}
}

// StageComplete plays the finished stage's sound. Returns immediately.
func (n *Notifier) StageComplete(stage breath.Stage) {
	if n == nil || n.player == nil || stage.Sound == breath.SoundNone || stage.Sound == "" {
		return
	}
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		if err := n.player.Play(n.ctx, stage.Sound); err != nil {
			n.logger.Debug("sound playback failed", "sound", stage.Sound, "stage", stage.Name, "error", err)
		}
	}()
}

// Wait blocks until every started playback has returned.
func (n *Notifier) Wait() {
	n.wg.Wait()
}
