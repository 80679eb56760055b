package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/okian/hearts/internal/adapters/audio"
	"github.com/okian/hearts/internal/config"
	"github.com/okian/hearts/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(logger.WithOutput(io.Discard)); err != nil {
		panic(err)
	}
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("HEARTS_ADDR", ":8080")
			_ = os.Setenv("HEARTS_GOAL", "4")
			_ = os.Setenv("HEARTS_MAX_SESSIONS", "10")
			defer func() {
				_ = os.Unsetenv("HEARTS_ADDR")
				_ = os.Unsetenv("HEARTS_GOAL")
				_ = os.Unsetenv("HEARTS_MAX_SESSIONS")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.Goal, convey.ShouldEqual, 4)
				convey.So(cfg.MaxSessions, convey.ShouldEqual, 10)
			})

			convey.Convey("And the service should carry it", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				svc := newService(cfg, logger.Get())
				convey.So(svc.Settings().Goal, convey.ShouldEqual, 4)
				convey.So(svc.GetStats().MaxSessions, convey.ShouldEqual, 10)
			})
		})

		convey.Convey("When testing invalid configuration", func() {
			_ = os.Setenv("HEARTS_GOAL", "0")
			defer func() { _ = os.Unsetenv("HEARTS_GOAL") }()

			convey.Convey("Then configuration loading should fail", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func TestMux(t *testing.T) {
	convey.Convey("Given the wired mux", t, func() {
		ctx := context.Background()
		cfg := config.New()
		cfg.PublicURL = "https://hearts.example/"
		svc := newService(cfg, logger.Get())
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		mux := newMux(ctx, cfg, svc, audio.NewBank(), logger.Get())
		get := func(path string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
			return w
		}

		convey.Convey("Then every surface should answer", func() {
			convey.So(get("/").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/app.js").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/healthz").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/stats").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/sessions").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/cues/pop.wav").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/qr.png").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/openapi.yaml").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/api-docs").Code, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("Then a plain GET on the socket should be refused", func() {
			convey.So(get("/ws").Code, convey.ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestMetricsUpdaters(t *testing.T) {
	convey.Convey("Given the metrics updaters", t, func() {
		svc := newService(config.New(), logger.Get())

		convey.Convey("Then they should run until cancelled", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()
			convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
			convey.So(func() { startServiceMetricsUpdater(ctx, svc) }, convey.ShouldNotPanic)
		})

		convey.Convey("Then single updates should not panic", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
			convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
		})
	})
}
