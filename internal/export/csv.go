// Package export renders the simulation's accumulated result
// collections as CSV for downstream analysis tooling.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/signalsfoundry/contact-simulator/model"
)

// ReadingColumns is the header row of the readings table.
var ReadingColumns = []string{
	"time",
	"receiverId",
	"transmitterId",
	"receiverPower",
	"receiverDeviceModel",
	"transmitterDeviceModel",
}

// MeetingColumns is the header row of the meetings table.
var MeetingColumns = []string{
	"start",
	"end",
	"duration",
	"participantA",
	"participantB",
}

// WriteReadings writes the reading log as CSV, header first, one row
// per reading in capture order.
func WriteReadings(w io.Writer, readings []model.Reading) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ReadingColumns); err != nil {
		return fmt.Errorf("write readings header: %w", err)
	}
	for _, r := range readings {
		row := []string{
			formatFloat(r.Time),
			r.ReceiverID,
			r.TransmitterID,
			formatFloat(r.PowerDBm),
			r.ReceiverModel,
			r.TransmitterModel,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write reading row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteMeetings writes the meeting list as CSV, header first, one row
// per meeting in formation order.
func WriteMeetings(w io.Writer, meetings []model.Meeting) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(MeetingColumns); err != nil {
		return fmt.Errorf("write meetings header: %w", err)
	}
	for _, m := range meetings {
		row := []string{
			formatFloat(m.Start),
			formatFloat(m.End),
			formatFloat(m.Duration()),
			m.ParticipantA,
			m.ParticipantB,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write meeting row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// formatFloat renders values with the shortest representation that
// round-trips, so seeded runs export byte-identical files.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
