package terminal

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/hearts/internal/domain/game"
	"github.com/okian/hearts/internal/domain/model"
	"github.com/okian/hearts/internal/domain/sched"
	"github.com/okian/hearts/pkg/logger"
)

func init() {
	if err := logger.Init(logger.WithOutput(io.Discard)); err != nil {
		panic(err)
	}
}

// localSession runs controller calls inline on a manual clock.
type localSession struct {
	mu    sync.Mutex
	clock *sched.Manual
	ctrl  *game.Controller
	done  chan struct{}
}

func newLocalSession(port game.Port) *localSession {
	s := &localSession{clock: sched.NewManual(time.Unix(0, 0)), done: make(chan struct{})}
	s.ctrl = game.NewController(s.clock, port, game.WithGoal(1), game.WithPadding(1))
	return s
}

func (s *localSession) Do(fn func(c *game.Controller)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.ctrl)
	return nil
}

func (s *localSession) Done() <-chan struct{} { return s.done }

func (s *localSession) advance(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock.Advance(d)
}

func (s *localSession) state() model.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctrl.Snapshot()
}

func screenText(screen tcell.SimulationScreen) string {
	cells, w, _ := screen.GetContents()
	var b strings.Builder
	for i, c := range cells {
		if i > 0 && i%w == 0 {
			b.WriteByte('\n')
		}
		if len(c.Runes) > 0 {
			b.WriteRune(c.Runes[0])
		}
	}
	return b.String()
}

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestShell(t *testing.T) {
	Convey("Given a shell on a simulated screen", t, func() {
		screen := tcell.NewSimulationScreen("UTF-8")
		So(screen.Init(), ShouldBeNil)
		screen.SetSize(80, 24)
		defer screen.Fini()

		player := &recordingPlayer{}
		view := ViewFor(screen, player)
		sess := newLocalSession(view)
		shell := NewShell(screen, view, sess, WithFrameInterval(5*time.Millisecond))

		result := make(chan error, 1)
		go func() { result <- shell.Run(context.Background()) }()

		Convey("Then the start overlay and HUD should be drawn", func() {
			So(view.Bounds(), ShouldResemble, model.Area{W: 79, H: 21})
			So(eventually(func() bool { return strings.Contains(screenText(screen), "SFX: ON") }), ShouldBeTrue)
			So(screenText(screen), ShouldContainSubstring, "Score 0/1")

			screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
			So(<-result, ShouldBeNil)
		})

		Convey("When the player starts, clicks a heart and forgives", func() {
			screen.InjectKey(tcell.KeyEnter, '\r', tcell.ModNone)
			So(eventually(func() bool { return sess.state().Running }), ShouldBeTrue)

			sess.advance(game.DefaultSpawnInterval)
			st := sess.state()
			So(st.Targets, ShouldHaveLength, 1)
			heart := st.Targets[0]

			screen.InjectMouse(int(heart.X), int(heart.Y)+hudRows, tcell.Button1, tcell.ModNone)
			So(eventually(func() bool { return sess.state().Phase == model.PhaseWon }), ShouldBeTrue)
			screen.InjectMouse(int(heart.X), int(heart.Y)+hudRows, tcell.ButtonNone, tcell.ModNone)

			screen.InjectKey(tcell.KeyRune, 'f', tcell.ModNone)
			So(eventually(func() bool { return sess.state().Reply != nil }), ShouldBeTrue)

			screen.InjectKey(tcell.KeyEscape, 0, tcell.ModNone)

			Convey("Then the round should be won with the grateful reply", func() {
				So(<-result, ShouldBeNil)
				st := sess.state()
				So(st.Score, ShouldEqual, 1)
				So(st.LetterEnabled, ShouldBeTrue)
				So(st.Reply.Choice, ShouldEqual, "forgive")
				So(player.cues, ShouldContain, model.CuePop)
			})
		})

		Convey("When the player toggles sound and opens the locked letter", func() {
			screen.InjectKey(tcell.KeyRune, 's', tcell.ModNone)
			So(eventually(func() bool { return !sess.state().SoundEnabled }), ShouldBeTrue)
			screen.InjectKey(tcell.KeyRune, 'l', tcell.ModNone)

			Convey("Then the HUD and footer should say so", func() {
				So(eventually(func() bool {
					text := screenText(screen)
					return strings.Contains(text, "SFX: OFF") && strings.Contains(text, game.ErrLetterLocked.Error())
				}), ShouldBeTrue)

				screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
				So(<-result, ShouldBeNil)
			})
		})

		Convey("When the session ends", func() {
			close(sess.done)

			Convey("Then the shell should return", func() {
				So(<-result, ShouldBeNil)
			})
		})
	})
}
