package types_test

import (
	"encoding/json"
	"testing"
	"time"

	types "github.com/okian/numerai-exporter/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTickStatus(t *testing.T) {
	Convey("Given a TickStatus", t, func() {
		Convey("When the status is pending", func() {
			st := types.TickStatus{Status: types.StatusPending}
			raw, err := json.Marshal(st)
			So(err, ShouldBeNil)

			Convey("Then optional fields should be omitted", func() {
				So(string(raw), ShouldEqual, `{"status":"pending","duration_ms":0,"models":0,"observations":0}`)
				So(st.Healthy(), ShouldBeTrue)
			})
		})

		Convey("When the status is failing", func() {
			at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
			st := types.TickStatus{Status: types.StatusFailing, TickID: "t1", StartedAt: &at, Error: "boom"}
			raw, err := json.Marshal(st)
			So(err, ShouldBeNil)

			Convey("Then it should be unhealthy and carry the cause", func() {
				So(st.Healthy(), ShouldBeFalse)
				So(string(raw), ShouldContainSubstring, `"error":"boom"`)
				So(string(raw), ShouldContainSubstring, `"started_at":"2024-05-01T12:00:00Z"`)
			})
		})
	})
}
