package service_test

import (
	"context"
	"testing"
	"time"

	service "github.com/okian/hearts/internal/app"
	"github.com/okian/hearts/internal/domain/game"
	"github.com/okian/hearts/internal/domain/model"
	"github.com/okian/hearts/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

// fastSettings runs a round of 40 ticks of 5ms with a heart every 5ms.
func fastSettings(goal int) game.Settings {
	s := game.DefaultSettings()
	s.Goal = goal
	s.Duration = 40
	s.Tick = 5 * time.Millisecond
	s.SpawnInterval = 5 * time.Millisecond
	s.TargetLife = time.Second
	s.CleanupAfter = 2 * time.Second
	s.EndCleanup = 10 * time.Millisecond
	return s
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should use the default round", func() {
			So(svc, ShouldNotBeNil)
			stats := svc.GetStats()
			So(stats.Started, ShouldBeFalse)
			So(stats.MaxSessions, ShouldEqual, 1000)
			So(stats.InboxSize, ShouldEqual, 256)
			So(stats.Goal, ShouldEqual, game.DefaultGoal)
			So(stats.DurationSecs, ShouldEqual, game.DefaultDuration)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithMaxSessions(3),
			service.WithInboxSize(32),
			service.WithGameSettings(fastSettings(2)),
			service.WithMaxSessions(-1),
		)

		Convey("Then valid values should be kept and invalid ones ignored", func() {
			stats := svc.GetStats()
			So(stats.MaxSessions, ShouldEqual, 3)
			So(stats.InboxSize, ShouldEqual, 32)
			So(stats.Goal, ShouldEqual, 2)
			So(svc.Settings().Tick, ShouldEqual, 5*time.Millisecond)
		})
	})
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New()
		ctx := context.Background()

		Convey("When used before starting", func() {
			_, openErr := svc.Open(ctx, nil)
			_, getErr := svc.Get(ctx, "nope")

			Convey("Then every call should report the service as stopped", func() {
				So(openErr, ShouldEqual, service.ErrServiceStopped)
				So(getErr, ShouldEqual, service.ErrServiceStopped)
				So(svc.Close(ctx, "nope"), ShouldEqual, service.ErrServiceStopped)
				So(svc.List(ctx), ShouldBeNil)
			})
		})

		Convey("When starting and stopping multiple times", func() {
			for i := 0; i < 3; i++ {
				So(svc.Start(ctx), ShouldBeNil)
				So(svc.Start(ctx), ShouldBeNil)
				So(svc.GetStats().Started, ShouldBeTrue)
				svc.Stop()
				svc.Stop()
				So(svc.GetStats().Started, ShouldBeFalse)
			}
		})
	})
}

func TestService_Sessions(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := service.New(
			service.WithMaxSessions(2),
			service.WithGameSettings(fastSettings(3)),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When opening a session", func() {
			sess, err := svc.Open(ctx, nil)
			So(err, ShouldBeNil)

			Convey("Then it should be idle and listed", func() {
				st, err := sess.Snapshot(ctx)
				So(err, ShouldBeNil)
				So(st.Phase, ShouldEqual, model.PhaseIdle)
				So(st.Goal, ShouldEqual, 3)
				So(st.Overlay, ShouldNotBeNil)
				So(st.Overlay.Kind, ShouldEqual, model.OverlayStart)

				got, err := svc.Get(ctx, sess.ID())
				So(err, ShouldBeNil)
				So(got, ShouldEqual, sess)

				list := svc.List(ctx)
				So(len(list), ShouldEqual, 1)
				So(list[0].ID, ShouldEqual, sess.ID())
				So(list[0].Phase, ShouldEqual, "idle")
				So(svc.GetStats().ActiveSessions, ShouldEqual, 1)
			})

			Convey("And starting a round through Do", func() {
				So(sess.Do(func(c *game.Controller) { c.Start() }), ShouldBeNil)

				Convey("Then the round should be running", func() {
					st, err := sess.Snapshot(ctx)
					So(err, ShouldBeNil)
					So(st.Phase, ShouldEqual, model.PhaseRunning)
					So(svc.GetStats().RoundsStarted, ShouldEqual, 1)
				})
			})

			Convey("And closing it", func() {
				So(svc.Close(ctx, sess.ID()), ShouldBeNil)

				Convey("Then it should be gone and refuse work", func() {
					_, err := svc.Get(ctx, sess.ID())
					So(err, ShouldEqual, service.ErrSessionNotFound)
					So(svc.Close(ctx, sess.ID()), ShouldEqual, service.ErrSessionNotFound)
					So(sess.Closed(), ShouldBeTrue)
					So(sess.Do(func(*game.Controller) {}), ShouldEqual, service.ErrSessionClosed)
					_, err = sess.Snapshot(ctx)
					So(err, ShouldEqual, service.ErrSessionClosed)

					select {
					case <-sess.Done():
					case <-time.After(time.Second):
						So("session loop did not exit", ShouldBeEmpty)
					}
					So(svc.List(ctx), ShouldBeEmpty)
				})
			})
		})

		Convey("When opening more sessions than allowed", func() {
			_, err1 := svc.Open(ctx, nil)
			_, err2 := svc.Open(ctx, nil)
			_, err3 := svc.Open(ctx, nil)

			Convey("Then the extra session should be rejected", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(err3, ShouldEqual, service.ErrTooManySessions)
				So(svc.GetStats().ActiveSessions, ShouldEqual, 2)
			})
		})

		Convey("When the service stops with sessions open", func() {
			sess, err := svc.Open(ctx, nil)
			So(err, ShouldBeNil)
			svc.Stop()

			Convey("Then the sessions should be closed", func() {
				So(sess.Closed(), ShouldBeTrue)
				So(svc.GetStats().ActiveSessions, ShouldEqual, 0)
			})
		})
	})
}

func TestService_Rounds(t *testing.T) {
	Convey("Given a started service with a one-heart goal", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithGameSettings(fastSettings(1)))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		sess, err := svc.Open(ctx, nil)
		So(err, ShouldBeNil)
		So(sess.Call(ctx, func(c *game.Controller) { c.Start() }), ShouldBeNil)

		Convey("When a heart is collected", func() {
			So(waitFor(func() bool {
				st, err := sess.Snapshot(ctx)
				return err == nil && len(st.Targets) > 0
			}), ShouldBeTrue)

			var collected bool
			So(sess.Call(ctx, func(c *game.Controller) {
				st := c.Snapshot()
				collected = c.Collect(st.Targets[0].ID)
			}), ShouldBeNil)

			Convey("Then the round should be won and counted", func() {
				So(collected, ShouldBeTrue)
				st, err := sess.Snapshot(ctx)
				So(err, ShouldBeNil)
				So(st.Phase, ShouldEqual, model.PhaseWon)
				So(st.LetterEnabled, ShouldBeTrue)

				stats := svc.GetStats()
				So(stats.RoundsStarted, ShouldEqual, 1)
				So(stats.RoundsWon, ShouldEqual, 1)
				So(stats.RoundsTimedOut, ShouldEqual, 0)
			})
		})

		Convey("When nobody plays", func() {
			ok := waitFor(func() bool { return svc.GetStats().RoundsTimedOut == 1 })

			Convey("Then the round should time out", func() {
				So(ok, ShouldBeTrue)
				st, err := sess.Snapshot(ctx)
				So(err, ShouldBeNil)
				So(st.Phase, ShouldEqual, model.PhaseTimedOut)
				So(st.TimeRemaining, ShouldEqual, 0)
				So(svc.GetStats().RoundsWon, ShouldEqual, 0)
			})
		})
	})
}
