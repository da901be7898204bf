// Package stats holds the wire types shared by the statistics service
// and its HTTP client.
package stats

import (
	"fmt"
	"strings"
	"time"
)

// TimeLayout is the timestamp format used on the statistics wire and in
// query parameters.
const TimeLayout = "2006-01-02 15:04:05"

// Timestamp marshals as TimeLayout instead of RFC 3339.
type Timestamp time.Time

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(t).Format(TimeLayout) + `"`), nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	parsed, err := time.Parse(TimeLayout, raw)
	if err != nil {
		return fmt.Errorf("parse timestamp %q: %w", raw, err)
	}
	*t = Timestamp(parsed)
	return nil
}

func (t Timestamp) Time() time.Time {
	return time.Time(t)
}

// Hit is a single recorded request against an endpoint of a service.
type Hit struct {
	App       string    `json:"app"`
	URI       string    `json:"uri"`
	IP        string    `json:"ip"`
	Timestamp Timestamp `json:"timestamp"`
}

// ViewCount is an aggregate over hits, grouped by app and uri.
type ViewCount struct {
	App  string `json:"app"`
	URI  string `json:"uri"`
	Hits int64  `json:"hits"`
}
