package sound

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/breathr/internal/breath"
)

type recordingPlayer struct {
	mu     sync.Mutex
	played []breath.Sound
	err    error
}

func (p *recordingPlayer) Play(_ context.Context, s breath.Sound) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.played = append(p.played, s)
	return p.err
}

func TestFile(t *testing.T) {
	assert.Equal(t, "marimba-loop.mp3", File(breath.SoundMarimba))
	assert.Equal(t, "ringtone.mp3", File(breath.SoundRingtone))
	assert.Equal(t, "timer-terminer.mp3", File(breath.SoundTimerTick))
	assert.Empty(t, File(breath.SoundNone))
}

func TestBellPlayer(t *testing.T) {
	var buf bytes.Buffer
	p := NewBellPlayer(&buf)

	require.NoError(t, p.Play(context.Background(), breath.SoundNone))
	assert.Zero(t, buf.Len())

	require.NoError(t, p.Play(context.Background(), breath.SoundRingtone))
	assert.Equal(t, "\a", buf.String())
}

func TestNewCommandPlayerEmpty(t *testing.T) {
	_, err := NewCommandPlayer("   ", "")
	assert.Error(t, err)
}

func TestCommandPlayerArgs(t *testing.T) {
	p, err := NewCommandPlayer("paplay", "/snd")
	require.NoError(t, err)
	assert.Equal(t, []string{"/snd/ringtone.mp3"}, p.Args("/snd/ringtone.mp3"))

	p, err = NewCommandPlayer("mpv --no-video --really-quiet={file}", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"--no-video", "--really-quiet=a.mp3"}, p.Args("a.mp3"))
}

func TestCommandPlayerNone(t *testing.T) {
	p, err := NewCommandPlayer("definitely-not-a-real-player-binary", "")
	require.NoError(t, err)
	assert.NoError(t, p.Play(context.Background(), breath.SoundNone))

	err = p.Play(context.Background(), breath.Sound("sound9"))
	assert.ErrorIs(t, err, ErrNoFile)
}

func TestCommandPlayerMissingBinary(t *testing.T) {
	p, err := NewCommandPlayer("definitely-not-a-real-player-binary", t.TempDir())
	require.NoError(t, err)
	assert.Error(t, p.Play(context.Background(), breath.SoundMarimba))
}

func TestNotifierPlaysStageSound(t *testing.T) {
	player := &recordingPlayer{}
	n := NewNotifier(context.Background(), player, nil)

	n.StageComplete(breath.Stage{Name: "Inhale", Sound: breath.SoundMarimba})
	n.StageComplete(breath.Stage{Name: "Exhale", Sound: breath.SoundNone})
	n.Wait()

	assert.Equal(t, []breath.Sound{breath.SoundMarimba}, player.played)
}

func TestNotifierSwallowsErrors(t *testing.T) {
	player := &recordingPlayer{err: errors.New("no audio device")}
	n := NewNotifier(context.Background(), player, nil)

	assert.NotPanics(t, func() {
		n.StageComplete(breath.Stage{Sound: breath.SoundRingtone})
		n.Wait()
	})
	assert.Len(t, player.played, 1)
}

func TestNilNotifier(t *testing.T) {
	var n *Notifier
	assert.NotPanics(t, func() {
		n.StageComplete(breath.Stage{Sound: breath.SoundRingtone})
	})
}
