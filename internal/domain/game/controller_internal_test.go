package game

import (
	"io"
	"testing"
	"time"

	"github.com/okian/hearts/internal/domain/model"
	"github.com/okian/hearts/internal/domain/sched"
	"github.com/okian/hearts/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestExpiryPrefersWin(t *testing.T) {
	Convey("Given the goal and the countdown landing on the same step", t, func() {
		_ = logger.Init(logger.WithOutput(io.Discard))
		m := sched.NewManual(time.Unix(0, 0))
		c := NewController(m, NopPort{Area: model.Area{W: 100, H: 100}})
		c.Start()
		for !c.keeper.Won() {
			c.keeper.OnCollect()
		}
		c.onExpire()

		Convey("Then the round should end as won", func() {
			So(c.Phase(), ShouldEqual, model.PhaseWon)
			So(c.LetterEnabled(), ShouldBeTrue)
		})

		Convey("And a second expiry should change nothing", func() {
			c.onExpire()
			So(c.Phase(), ShouldEqual, model.PhaseWon)
		})
	})
}
