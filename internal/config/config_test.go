package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/numerai-exporter/internal/config"
	"github.com/okian/numerai-exporter/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":8000")
			convey.So(cfg.UpdateInterval, convey.ShouldEqual, 60*time.Second)
			convey.So(cfg.TournamentID, convey.ShouldEqual, 11)
			convey.So(cfg.Namespace, convey.ShouldEqual, "numerai")
			convey.So(cfg.Subsystem, convey.ShouldEqual, "signals")
			convey.So(cfg.Periods, convey.ShouldResemble, []int{1, 2, 3, 4, 5, 10, 20, 40, 60, 120, 250, -1})
			convey.So(cfg.PercentilePlaces, convey.ShouldEqual, 1)
			convey.So(cfg.ValuePlaces, convey.ShouldEqual, 4)
			convey.So(cfg.ZeroIsAbsent, convey.ShouldBeTrue)
			convey.So(cfg.ModelConcurrency, convey.ShouldEqual, 1)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then PeriodList should mirror the defaults", func() {
			convey.So(cfg.PeriodList(), convey.ShouldResemble, model.DefaultPeriods())
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cfg := config.New()

		cases := []struct {
			name   string
			mutate func(*config.Config)
			msg    string
		}{
			{"zero interval", func(c *config.Config) { c.UpdateInterval = 0 }, "update_interval"},
			{"no periods", func(c *config.Config) { c.Periods = nil }, "periods must not be empty"},
			{"zero period", func(c *config.Config) { c.Periods = []int{1, 0} }, "period 0"},
			{"negative period", func(c *config.Config) { c.Periods = []int{-2} }, "period -2"},
			{"too many places", func(c *config.Config) { c.ValuePlaces = 17 }, "value_places"},
			{"negative places", func(c *config.Config) { c.PercentilePlaces = -1 }, "percentile_places"},
			{"no workers", func(c *config.Config) { c.ModelConcurrency = 0 }, "model_concurrency"},
			{"bad format", func(c *config.Config) { c.LogFormat = "xml" }, "log_format"},
		}

		for _, tc := range cases {
			convey.Convey("When the config has "+tc.name, func() {
				tc.mutate(cfg)
				err := cfg.Validate()

				convey.Convey("Then it should be rejected", func() {
					convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
					convey.So(err.Error(), convey.ShouldContainSubstring, tc.msg)
				})
			})
		}
	})
}
