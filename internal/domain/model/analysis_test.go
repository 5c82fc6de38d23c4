package model_test

import (
	"errors"
	"testing"
	"time"

	"github.com/oplozada/estadistica/internal/domain/model"
	"github.com/oplozada/estadistica/internal/domain/types"
	"github.com/smartystreets/goconvey/convey"
)

func TestAnalysis(t *testing.T) {
	convey.Convey("Given a pending analysis", t, func() {
		created := time.Date(2025, 5, 7, 20, 43, 29, 0, time.UTC)
		a := model.Analysis{ID: "a-1", Status: model.StatusPending, Alpha: 0.05, CreatedAt: created, UpdatedAt: created}

		convey.Convey("Then it is not terminal", func() {
			convey.So(a.Terminal(), convey.ShouldBeFalse)
		})

		convey.Convey("When it completes", func() {
			at := created.Add(time.Second)
			a.Complete(types.Result{N: 3, W: 0.5}, at)

			convey.Convey("Then the result is attached", func() {
				convey.So(a.Terminal(), convey.ShouldBeTrue)
				convey.So(a.Status, convey.ShouldEqual, model.StatusDone)
				convey.So(a.Result, convey.ShouldNotBeNil)
				convey.So(a.Result.W, convey.ShouldEqual, 0.5)
				convey.So(a.UpdatedAt, convey.ShouldEqual, at)
			})
		})

		convey.Convey("When it fails", func() {
			a.Fail(errors.New("invalid input: row 2"), created.Add(time.Second))

			convey.Convey("Then the error message is kept and no result is exposed", func() {
				convey.So(a.Terminal(), convey.ShouldBeTrue)
				convey.So(a.Status, convey.ShouldEqual, model.StatusFailed)
				convey.So(a.Result, convey.ShouldBeNil)
				convey.So(a.Error, convey.ShouldEqual, "invalid input: row 2")
			})
		})
	})
}
