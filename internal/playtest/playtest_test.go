package playtest_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/hearts/internal/adapters/http/api"
	"github.com/okian/hearts/internal/adapters/http/ws"
	service "github.com/okian/hearts/internal/app"
	"github.com/okian/hearts/internal/domain/game"
	"github.com/okian/hearts/internal/playtest"
	"github.com/okian/hearts/pkg/logger"
)

func init() {
	if err := logger.Init(logger.WithOutput(io.Discard)); err != nil {
		panic(err)
	}
}

func settings(goal, ticks int) game.Settings {
	s := game.DefaultSettings()
	s.Goal = goal
	s.Duration = ticks
	s.Tick = 10 * time.Millisecond
	s.SpawnInterval = 10 * time.Millisecond
	s.TargetLife = time.Second
	s.CleanupAfter = 2 * time.Second
	return s
}

func startServer(s game.Settings) (*service.Service, string, func()) {
	svc := service.New(service.WithGameSettings(s))
	if err := svc.Start(context.Background()); err != nil {
		panic(err)
	}
	mux := http.NewServeMux()
	api.NewServer(svc, api.WithSocket(ws.NewHandler(svc))).Register(context.Background(), mux)
	srv := httptest.NewServer(mux)
	return svc, srv.URL, func() {
		srv.Close()
		svc.Stop()
	}
}

func TestRun(t *testing.T) {
	for _, msgpack := range []bool{false, true} {
		Convey("Given a server and perfect players", t, func() {
			svc, url, stop := startServer(settings(2, 200))
			defer stop()

			cfg := &playtest.Config{
				BaseURL: url,
				Games:   3,
				Workers: 2,
				HitRate: 1,
				Choice:  "forgive",
				Msgpack: msgpack,
				Timeout: 3 * time.Second,
				Seed:    7,
			}

			Convey("When they play", func() {
				stats, err := playtest.Run(context.Background(), cfg)

				Convey("Then every game should be won and answered", func() {
					So(err, ShouldBeNil)
					So(stats.GamesPlayed, ShouldEqual, 3)
					So(stats.GamesWon, ShouldEqual, 3)
					So(stats.Failed, ShouldEqual, 0)
					So(stats.Replies, ShouldEqual, 3)
					So(stats.Collects, ShouldBeGreaterThanOrEqualTo, 6)
					So(svc.GetStats().RoundsWon, ShouldEqual, 3)
				})
			})
		})
	}

	Convey("Given a server and players who never click", t, func() {
		_, url, stop := startServer(settings(2, 10))
		defer stop()

		cfg := &playtest.Config{
			BaseURL:   url,
			Games:     1,
			Workers:   1,
			HitRate:   0,
			MaxRounds: 2,
			Timeout:   3 * time.Second,
			Seed:      1,
		}

		Convey("When they play", func() {
			stats, err := playtest.Run(context.Background(), cfg)

			Convey("Then the game should time out after both rounds", func() {
				So(err, ShouldBeNil)
				So(stats.TimedOut, ShouldEqual, 1)
				So(stats.Rounds, ShouldEqual, 2)
				So(stats.Collects, ShouldEqual, 0)
			})
		})
	})

	Convey("Given a server with no room", t, func() {
		svc := service.New(service.WithMaxSessions(1), service.WithGameSettings(settings(2, 200)))
		So(svc.Start(context.Background()), ShouldBeNil)
		defer svc.Stop()
		mux := http.NewServeMux()
		api.NewServer(svc, api.WithSocket(ws.NewHandler(svc))).Register(context.Background(), mux)
		srv := httptest.NewServer(mux)
		defer srv.Close()

		_, err := svc.Open(context.Background(), game.NopPort{})
		So(err, ShouldBeNil)

		Convey("When a player connects", func() {
			stats, err := playtest.Run(context.Background(), &playtest.Config{
				BaseURL: srv.URL, Games: 1, Workers: 1, HitRate: 1, Timeout: time.Second,
			})

			Convey("Then the run should fail", func() {
				So(errors.Is(err, playtest.ErrAllGamesFailed), ShouldBeTrue)
				So(stats.Failed, ShouldEqual, 1)
			})
		})
	})

	Convey("Given no server", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		Convey("Then the health check should fail", func() {
			_, err := playtest.Run(context.Background(), &playtest.Config{BaseURL: url, Timeout: time.Second})
			So(err, ShouldNotBeNil)
		})
	})
}

func TestStats(t *testing.T) {
	Convey("Given some results", t, func() {
		var s playtest.Stats
		s.Add(playtest.Result{Outcome: playtest.OutcomeWon, Rounds: 1, Collects: 6, Spawned: 8, Replied: true, Duration: 4 * time.Second})
		s.Add(playtest.Result{Outcome: playtest.OutcomeTimedOut, Rounds: 2, Collects: 3, Spawned: 50, Misses: 47, Duration: 8 * time.Second})
		s.Add(playtest.Result{Outcome: playtest.OutcomeFailed, Err: errors.New("dial")})

		Convey("Then they should be tallied", func() {
			So(s.GamesPlayed, ShouldEqual, 3)
			So(s.GamesWon, ShouldEqual, 1)
			So(s.TimedOut, ShouldEqual, 1)
			So(s.Failed, ShouldEqual, 1)
			So(s.Rounds, ShouldEqual, 3)
			So(s.Collects, ShouldEqual, 9)
			So(s.Misses, ShouldEqual, 47)
			So(s.Replies, ShouldEqual, 1)
			So(s.MinGame, ShouldEqual, 4*time.Second)
			So(s.MaxGame, ShouldEqual, 8*time.Second)
			So(s.AvgGame(), ShouldEqual, 6*time.Second)
		})
	})
}
