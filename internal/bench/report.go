package bench

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/sugawarayuuta/sonnet"
)

type Report struct {
	Config    Config    `json:"config"`
	StartedAt time.Time `json:"started_at"`
	Results   []Result  `json:"results"`
}

// JSON encodes the report.
func (r Report) JSON() ([]byte, error) {
	return sonnet.Marshal(r)
}

// ParseReport decodes a report produced by JSON.
func ParseReport(data []byte) (Report, error) {
	var r Report
	if err := sonnet.Unmarshal(data, &r); err != nil {
		return Report{}, fmt.Errorf("decode report: %w", err)
	}
	return r, nil
}

// WriteTable prints one aligned line per result.
func (r Report) WriteTable(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "QUEUE\tSCENARIO\tOPS\tELAPSED\tNS/OP")
	for _, res := range r.Results {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%v\t%.1f\n", res.Queue, res.Scenario, res.Ops, res.Elapsed, res.NsPerOp)
	}
	return tw.Flush()
}
