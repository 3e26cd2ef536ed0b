package promsink_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/numerai-exporter/internal/adapters/promsink"
	"github.com/okian/numerai-exporter/internal/domain/emit"
	"github.com/okian/numerai-exporter/internal/domain/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"
)

func gather(reg *prometheus.Registry, name string) *dto.MetricFamily {
	mfs, err := reg.Gather()
	So(err, ShouldBeNil)
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func TestSink_Publish(t *testing.T) {
	Convey("Given a sink on a fresh registry", t, func() {
		reg := prometheus.NewRegistry()
		e := emit.New()
		sink, err := promsink.New(reg, e.Families())
		So(err, ShouldBeNil)
		ctx := context.Background()

		labels := map[string]string{model.LabelModel: "m1", model.LabelRound: "5", model.LabelStatus: "resolved"}

		Convey("When publishing the same series twice", func() {
			So(sink.Publish(ctx, []model.Observation{
				{Name: "numerai_signals_at_risk", Labels: labels, Value: 10},
				{Name: "numerai_signals_at_risk", Labels: labels, Value: 12.5},
			}), ShouldBeNil)

			Convey("Then the last write should win", func() {
				mf := gather(reg, "numerai_signals_at_risk")
				So(mf, ShouldNotBeNil)
				So(mf.GetType(), ShouldEqual, dto.MetricType_GAUGE)
				So(len(mf.GetMetric()), ShouldEqual, 1)
				So(mf.GetMetric()[0].GetGauge().GetValue(), ShouldEqual, 12.5)
			})
		})

		Convey("When publishing across passes", func() {
			So(sink.Publish(ctx, []model.Observation{e.LatestRound(800), e.NMRPrice(e2d("7.5"))}), ShouldBeNil)
			So(sink.Publish(ctx, []model.Observation{e.LatestRound(801)}), ShouldBeNil)

			Convey("Then untouched series should keep their value", func() {
				So(testutil.CollectAndCount(reg, "numerai_nmr_price"), ShouldEqual, 1)
				mf := gather(reg, "numerai_nmr_price")
				So(mf.GetMetric()[0].GetGauge().GetValue(), ShouldEqual, 7.5)
				mf = gather(reg, "numerai_signals_latest_round")
				So(mf.GetMetric()[0].GetGauge().GetValue(), ShouldEqual, 801.0)
			})
		})

		Convey("When publishing an unknown family", func() {
			err := sink.Publish(ctx, []model.Observation{{Name: "numerai_bogus", Value: 1}})

			Convey("Then it should fail with ErrUnknownMetric", func() {
				So(errors.Is(err, promsink.ErrUnknownMetric), ShouldBeTrue)
			})
		})

		Convey("When labels do not match the family", func() {
			err := sink.Publish(ctx, []model.Observation{{Name: "numerai_signals_at_risk", Labels: map[string]string{"model": "m1"}, Value: 1}})

			Convey("Then it should fail with ErrUnknownMetric", func() {
				So(errors.Is(err, promsink.ErrUnknownMetric), ShouldBeTrue)
			})
		})

		Convey("When a second sink registers the same families", func() {
			again, err := promsink.New(reg, e.Families())
			So(err, ShouldBeNil)
			So(again.Publish(ctx, []model.Observation{e.LatestRound(900)}), ShouldBeNil)

			Convey("Then both should share the existing collectors", func() {
				mf := gather(reg, "numerai_signals_latest_round")
				So(mf.GetMetric()[0].GetGauge().GetValue(), ShouldEqual, 900.0)
			})
		})
	})

	Convey("Given a registry with a conflicting collector", t, func() {
		reg := prometheus.NewRegistry()
		reg.MustRegister(prometheus.NewCounter(prometheus.CounterOpts{Name: "numerai_signals_latest_round", Help: "Latest round"}))

		Convey("Then creating the sink should fail", func() {
			_, err := promsink.New(reg, emit.New().Families())
			So(errors.Is(err, promsink.ErrRegister), ShouldBeTrue)
		})
	})
}

func e2d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
