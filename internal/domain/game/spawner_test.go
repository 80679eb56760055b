package game_test

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/okian/hearts/internal/domain/game"
	"github.com/okian/hearts/internal/domain/model"
	"github.com/okian/hearts/internal/domain/sched"
	. "github.com/smartystreets/goconvey/convey"
)

type spawnLog struct {
	spawned []*game.Target
	missed  []string
	swept   []string
}

func newSpawner(m *sched.Manual, area model.Area, cfg game.SpawnerConfig) (*game.Spawner, *spawnLog) {
	log := &spawnLog{}
	cfg.Rand = rand.New(rand.NewSource(3)) //nolint:gosec // deterministic test data
	cfg.NewID = sequentialIDs()
	s := game.NewSpawner(m, cfg, func() model.Area { return area }, game.SpawnerEvents{
		Spawned: func(t *game.Target) { log.spawned = append(log.spawned, t) },
		Missed:  func(t *game.Target) { log.missed = append(log.missed, t.ID) },
		Swept:   func(t *game.Target) { log.swept = append(log.swept, t.ID) },
	})
	return s, log
}

func TestSpawnerPosition(t *testing.T) {
	Convey("Given a spawner with 34 units of padding", t, func() {
		m := sched.NewManual(time.Unix(0, 0))
		s, _ := newSpawner(m, model.Area{}, game.SpawnerConfig{Padding: 34})

		Convey("Then every position should keep clear of the edges", func() {
			area := model.Area{W: 400, H: 300}
			for i := 0; i < 200; i++ {
				x, y := s.Position(area)
				So(x, ShouldBeBetweenOrEqual, 34.0, 366.0)
				So(y, ShouldBeBetweenOrEqual, 34.0, 266.0)
			}
		})

		Convey("And axes narrower than two paddings should collapse to the middle", func() {
			x, y := s.Position(model.Area{W: 50, H: 20})
			So(x, ShouldEqual, 25.0)
			So(y, ShouldEqual, 10.0)
		})

		Convey("And non-finite sides should never yield non-finite positions", func() {
			x, y := s.Position(model.Area{W: math.NaN(), H: math.Inf(1)})
			So(x, ShouldEqual, 0.0)
			So(y, ShouldEqual, 0.0)
			x, _ = s.Position(model.Area{W: math.Inf(-1), H: 100})
			So(x, ShouldEqual, 0.0)
		})

		Convey("And an empty area should spawn at the origin", func() {
			x, y := s.Position(model.Area{})
			So(x, ShouldEqual, 0.0)
			So(y, ShouldEqual, 0.0)
		})
	})
}

func TestSpawnerLifecycle(t *testing.T) {
	Convey("Given a running spawner", t, func() {
		m := sched.NewManual(time.Unix(0, 0))
		s, log := newSpawner(m, model.Area{W: 400, H: 300}, game.SpawnerConfig{
			Interval:     time.Second,
			Life:         950 * time.Millisecond,
			CleanupAfter: 1600 * time.Millisecond,
			CleanupAge:   1400 * time.Millisecond,
			Padding:      34,
		})
		So(s.Start(), ShouldBeTrue)

		Convey("Then a second Start should be refused", func() {
			So(s.Start(), ShouldBeFalse)
			m.Advance(time.Second)
			So(log.spawned, ShouldHaveLength, 1)
		})

		Convey("When a heart is left alone", func() {
			m.Advance(time.Second)
			So(s.Len(), ShouldEqual, 1)
			m.Advance(950 * time.Millisecond)

			Convey("Then it should be missed exactly once", func() {
				So(log.missed, ShouldResemble, []string{"h1"})
				So(log.spawned[0].State(), ShouldEqual, game.TargetMissed)
				m.Advance(3 * time.Second)
				So(log.missed[0], ShouldEqual, "h1")
				So(log.swept, ShouldBeEmpty)
			})
		})

		Convey("When a heart is collected", func() {
			m.Advance(time.Second)
			got := s.Collect("h1")

			Convey("Then its miss should never fire", func() {
				So(got, ShouldNotBeNil)
				So(got.State(), ShouldEqual, game.TargetCollected)
				s.Stop()
				m.Advance(5 * time.Second)
				So(log.missed, ShouldBeEmpty)
				So(log.swept, ShouldBeEmpty)
			})

			Convey("And a second collect should fail", func() {
				So(s.Collect("h1"), ShouldBeNil)
			})
		})

		Convey("When the spawner stops with hearts on screen", func() {
			m.Advance(time.Second)
			s.Stop()
			m.Advance(2 * time.Second)

			Convey("Then existing hearts should still time out", func() {
				So(log.missed, ShouldResemble, []string{"h1"})
				So(log.spawned, ShouldHaveLength, 1)
			})
		})

		Convey("When hearts are cleared", func() {
			m.Advance(2 * time.Second)
			cleared := s.Clear()
			s.Stop()
			m.Advance(5 * time.Second)

			Convey("Then their timers should do nothing", func() {
				So(cleared, ShouldHaveLength, 1)
				So(s.Len(), ShouldEqual, 0)
				So(log.missed, ShouldResemble, []string{"h1"})
			})
		})

		Convey("Then Live should list hearts oldest first", func() {
			s.Stop()
			s2, log2 := newSpawner(m, model.Area{W: 400, H: 300}, game.SpawnerConfig{
				Interval: 100 * time.Millisecond,
				Life:     time.Second,
			})
			s2.Start()
			m.Advance(300 * time.Millisecond)
			live := s2.Live()
			So(live, ShouldHaveLength, 3)
			So(live[0].ID, ShouldEqual, log2.spawned[0].ID)
			So(live[2].ID, ShouldEqual, log2.spawned[2].ID)
		})
	})

	Convey("Given hearts that outlive the safety sweep", t, func() {
		m := sched.NewManual(time.Unix(0, 0))
		s, log := newSpawner(m, model.Area{W: 400, H: 300}, game.SpawnerConfig{
			Interval:     time.Second,
			Life:         5 * time.Second,
			CleanupAfter: 1600 * time.Millisecond,
			CleanupAge:   1400 * time.Millisecond,
		})
		s.Start()
		m.Advance(time.Second)
		s.Stop()
		m.Advance(1600 * time.Millisecond)

		Convey("Then the sweep should remove them without a miss", func() {
			So(log.swept, ShouldResemble, []string{"h1"})
			So(log.missed, ShouldBeEmpty)
			m.Advance(5 * time.Second)
			So(log.missed, ShouldBeEmpty)
		})
	})
}
