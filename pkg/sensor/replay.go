package sensor

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// Replay reads triaxial readings back from a recorded CSV session. Rows are
// x,y,z in device units; a header row is skipped when the first field does
// not parse as a number.
type Replay struct {
	records [][3]float64
	pos     int
	loop    bool
}

// NewReplay loads a recorded session from path. With loop set, the source
// wraps around instead of reporting io.EOF when the recording runs out.
func NewReplay(path string, loop bool) (*Replay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open replay file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 3

	var records [][3]float64
	line := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read replay file %s: %w", path, err)
		}
		line++

		x, errX := strconv.ParseFloat(row[0], 64)
		if errX != nil && line == 1 {
			continue // header row
		}
		y, errY := strconv.ParseFloat(row[1], 64)
		z, errZ := strconv.ParseFloat(row[2], 64)
		if errX != nil || errY != nil || errZ != nil {
			return nil, fmt.Errorf("invalid reading on line %d of %s", line, path)
		}
		records = append(records, [3]float64{x, y, z})
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("replay file %s contains no readings", path)
	}
	return &Replay{records: records, loop: loop}, nil
}

// Read returns the next recorded reading, or io.EOF when a non-looping
// recording is exhausted.
func (r *Replay) Read() (float64, float64, float64, error) {
	if r.pos >= len(r.records) {
		if !r.loop {
			return 0, 0, 0, io.EOF
		}
		r.pos = 0
	}
	rec := r.records[r.pos]
	r.pos++
	return rec[0], rec[1], rec[2], nil
}

// Len returns the number of recorded readings.
func (r *Replay) Len() int {
	return len(r.records)
}
