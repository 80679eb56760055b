package scoring_test

import (
	"math/rand"
	"testing"

	scoring "github.com/okian/hearts/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func TestThresholdRule(t *testing.T) {
	Convey("Given the default combo rule", t, func() {
		rule := scoring.DefaultRule()

		Convey("Then combos below three should be worth one point", func() {
			So(rule(1), ShouldEqual, 1)
			So(rule(2), ShouldEqual, 1)
		})

		Convey("And combos of three or more should be worth two", func() {
			So(rule(3), ShouldEqual, 2)
			So(rule(4), ShouldEqual, 2)
			So(rule(40), ShouldEqual, 2)
		})
	})

	Convey("Given a custom threshold rule", t, func() {
		rule := scoring.ThresholdRule(5, 1, 3)

		Convey("Then the bonus should start at the threshold", func() {
			So(rule(4), ShouldEqual, 1)
			So(rule(5), ShouldEqual, 3)
		})
	})
}

func TestKeeper(t *testing.T) {
	Convey("Given a new keeper with defaults", t, func() {
		k := scoring.NewKeeper()

		Convey("Then it should start empty", func() {
			So(k.Score(), ShouldEqual, 0)
			So(k.Combo(), ShouldEqual, 0)
			So(k.Goal(), ShouldEqual, 6)
			So(k.Won(), ShouldBeFalse)
			So(k.Progress(), ShouldEqual, 0)
		})

		Convey("When three hearts are collected in a row", func() {
			p1, _ := k.OnCollect()
			p2, _ := k.OnCollect()
			p3, reached := k.OnCollect()

			Convey("Then the third should be worth two points", func() {
				So([]int{p1, p2, p3}, ShouldResemble, []int{1, 1, 2})
				So(k.Score(), ShouldEqual, 4)
				So(k.Combo(), ShouldEqual, 3)
				So(reached, ShouldBeFalse)
			})

			Convey("And a miss should zero the combo but keep the score", func() {
				k.OnMiss()
				So(k.Combo(), ShouldEqual, 0)
				So(k.Score(), ShouldEqual, 4)
			})

			Convey("And the next collect should reach the goal exactly once", func() {
				_, reached := k.OnCollect()
				So(reached, ShouldBeTrue)
				So(k.Score(), ShouldEqual, 6)
				So(k.Won(), ShouldBeTrue)

				points, again := k.OnCollect()
				So(again, ShouldBeFalse)
				So(points, ShouldEqual, 0)
				So(k.Score(), ShouldEqual, 6)
			})
		})

		Convey("When the award would overshoot the goal", func() {
			k := scoring.NewKeeper(scoring.WithGoal(5))
			for i := 0; i < 4; i++ {
				k.OnCollect()
			}

			Convey("Then the score should clamp and report the clamped points", func() {
				So(k.Score(), ShouldEqual, 5)
				So(k.Progress(), ShouldEqual, 1.0)
			})
		})

		Convey("When reset after winning", func() {
			for i := 0; i < 5; i++ {
				k.OnCollect()
			}
			So(k.Won(), ShouldBeTrue)
			k.Reset()

			Convey("Then everything should be zero and the goal re-armed", func() {
				So(k.Score(), ShouldEqual, 0)
				So(k.Combo(), ShouldEqual, 0)
				So(k.Won(), ShouldBeFalse)
			})
		})

		Convey("When only the combo is reset", func() {
			k.OnCollect()
			k.OnCollect()
			k.ResetCombo()

			Convey("Then the score should survive", func() {
				So(k.Combo(), ShouldEqual, 0)
				So(k.Score(), ShouldEqual, 2)
			})
		})
	})
}

func TestKeeperBounds(t *testing.T) {
	Convey("Given random sequences of collects and misses", t, func() {
		rng := rand.New(rand.NewSource(7)) //nolint:gosec // deterministic test data

		Convey("Then score and combo should stay in range and the goal fire at most once", func() {
			for run := 0; run < 50; run++ {
				k := scoring.NewKeeper()
				signals := 0
				for step := 0; step < 40; step++ {
					if rng.Intn(3) == 0 {
						k.OnMiss()
					} else if _, reached := k.OnCollect(); reached {
						signals++
					}
					So(k.Score(), ShouldBeBetweenOrEqual, 0, k.Goal())
					So(k.Combo(), ShouldBeGreaterThanOrEqualTo, 0)
				}
				So(signals, ShouldBeLessThanOrEqualTo, 1)
			}
		})
	})

	Convey("Given a rule that returns negative points", t, func() {
		k := scoring.NewKeeper(scoring.WithRule(func(int) int { return -3 }))

		Convey("Then the score should never drop below zero", func() {
			k.OnCollect()
			So(k.Score(), ShouldEqual, 0)
		})
	})
}
