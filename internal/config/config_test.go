package config_test

import (
	"runtime"
	"testing"

	"github.com/oplozada/estadistica/internal/config"
	"github.com/oplozada/estadistica/internal/domain/ranking"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
			convey.So(cfg.Alpha, convey.ShouldEqual, 0.05)
			convey.So(cfg.RankOrder, convey.ShouldEqual, "descending")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 1_000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.MaxAnalyses, convey.ShouldEqual, 10_000)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
			convey.So(cfg.Order(), convey.ShouldEqual, ranking.Descending)
		})
	})
}
