// Package export renders alert snapshots for download. It only ever reads.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/sentinelops/mission-intel-platform/internal/contracts"
)

var csvHeader = []string{
	"id", "level", "title", "timestamp", "location", "status", "hash",
	"latitude", "longitude",
}

// WriteCSV flattens the alerts into CSV rows. Dispatch logs and evidence are
// dropped; coordinates split into latitude/longitude columns.
func WriteCSV(w io.Writer, alerts []contracts.Alert) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, a := range alerts {
		row := []string{
			a.ID,
			string(a.Level),
			a.Title,
			a.Timestamp,
			a.Location,
			string(a.Status),
			a.Hash,
			strconv.FormatFloat(a.Coordinates.Lat, 'f', -1, 64),
			strconv.FormatFloat(a.Coordinates.Lng, 'f', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
