package terminal

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/okian/hearts/internal/domain/game"
	"github.com/okian/hearts/internal/domain/letter"
	"github.com/okian/hearts/pkg/logger"
)

const defaultFrameInterval = 33 * time.Millisecond

// Session is the part of a live session the shell drives.
type Session interface {
	Do(fn func(c *game.Controller)) error
	Done() <-chan struct{}
}

// Shell runs the terminal UI for one session.
type Shell struct {
	screen  tcell.Screen
	view    *View
	session Session

	frame   time.Duration
	logger  logger.Logger
	buttons tcell.ButtonMask
}

// ShellOption configures a Shell.
type ShellOption func(*Shell)

// WithFrameInterval sets how often the screen is redrawn when the view
// changed.
func WithFrameInterval(d time.Duration) ShellOption {
	return func(s *Shell) {
		if d > 0 {
			s.frame = d
		}
	}
}

// WithLogger sets the shell logger.
func WithLogger(l logger.Logger) ShellOption {
	return func(s *Shell) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewScreen creates and initializes a tcell screen with mouse input enabled.
func NewScreen() (tcell.Screen, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScreen, err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScreen, err)
	}
	screen.EnableMouse()
	screen.HideCursor()
	return screen, nil
}

// ViewFor returns a view sized for screen.
func ViewFor(screen tcell.Screen, player CuePlayer) *View {
	w, h := playArea(screen.Size())
	return NewView(w, h, player)
}

// NewShell creates a shell. The view must be the port session draws onto.
func NewShell(screen tcell.Screen, view *View, session Session, opts ...ShellOption) *Shell {
	s := &Shell{
		screen:  screen,
		view:    view,
		session: session,
		frame:   defaultFrameInterval,
		logger:  logger.Get(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run handles input and redraws until the player quits, ctx is cancelled or
// the session ends. It does not finalize the screen.
func (s *Shell) Run(ctx context.Context) error {
	events := make(chan tcell.Event, 64)
	stop := make(chan struct{})
	defer close(stop)

	go func() {
		for {
			ev := s.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-stop:
				return
			}
		}
	}()

	ticker := time.NewTicker(s.frame)
	defer ticker.Stop()

	s.redraw(true)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.session.Done():
			return nil
		case ev := <-events:
			if !s.handle(ev) {
				return nil
			}
			s.redraw(false)
		case <-ticker.C:
			s.redraw(false)
		}
	}
}

func (s *Shell) redraw(force bool) {
	f, changed := s.view.Frame()
	if changed || force {
		draw(s.screen, f)
	}
}

// handle applies one input event. It returns false when the player quits.
func (s *Shell) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return s.handleKey(ev)
	case *tcell.EventMouse:
		s.handleMouse(ev)
	case *tcell.EventResize:
		s.screen.Sync()
		s.view.SetArea(playArea(s.screen.Size()))
	}
	return true
}

func (s *Shell) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyEnter:
		s.do(func(c *game.Controller) { c.Start() })
		return true
	case tcell.KeyRune:
	default:
		return true
	}

	switch ev.Rune() {
	case 'q', 'Q':
		return false
	case 'i':
		s.do(func(c *game.Controller) { c.Intro() })
	case 'r':
		s.do(func(c *game.Controller) { c.Reset() })
	case 's':
		s.do(func(c *game.Controller) {
			on := !c.Sound()
			c.SetSound(on)
			s.view.SetSound(on)
		})
	case 'l':
		s.do(func(c *game.Controller) {
			if err := c.OpenLetter(); err != nil {
				s.view.SetNotice(err.Error())
			}
		})
	case 'f':
		s.respond(letter.Forgive)
	case 'n':
		s.respond(letter.NotYet)
	}
	return true
}

func (s *Shell) respond(choice letter.Choice) {
	s.do(func(c *game.Controller) {
		if err := c.Respond(string(choice)); err != nil {
			s.view.SetNotice(err.Error())
		}
	})
}

// handleMouse collects the heart under a fresh left click. Held buttons
// report motion as repeated events, so only the press counts.
func (s *Shell) handleMouse(ev *tcell.EventMouse) {
	buttons := ev.Buttons()
	pressed := buttons&tcell.Button1 != 0 && s.buttons&tcell.Button1 == 0
	s.buttons = buttons
	if !pressed {
		return
	}

	x, y := ev.Position()
	id, ok := s.view.TargetAt(x, y-hudRows)
	if !ok {
		return
	}
	s.do(func(c *game.Controller) { c.Collect(id) })
}

func (s *Shell) do(fn func(c *game.Controller)) {
	s.view.SetNotice("")
	if err := s.session.Do(fn); err != nil {
		s.logger.Warn(context.Background(), "session rejected input", logger.Error(err))
		s.view.SetNotice(err.Error())
	}
}
