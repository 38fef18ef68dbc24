package cli

import (
	"strings"

	"github.com/go-faster/errors"
	"github.com/spf13/pflag"

	"github.com/alexanderramin/shiftdash/internal/period"
	"github.com/alexanderramin/shiftdash/internal/rollup"
)

// monthValue is a pflag.Value that accepts any month form period
// understands (Jan'24, Jan 2024, 2024-01, ...) and stores the wire form.
type monthValue struct {
	wire string
}

var _ pflag.Value = (*monthValue)(nil)

func (m *monthValue) String() string { return m.wire }
func (m *monthValue) Type() string   { return "month" }

func (m *monthValue) Set(s string) error {
	if strings.TrimSpace(s) == "" {
		m.wire = ""
		return nil
	}
	wire, err := period.Normalize(s)
	if err != nil {
		return err
	}
	m.wire = wire
	return nil
}

// sortValue is a pflag.Value for --sort: asc, desc or none.
type sortValue struct {
	dir rollup.Direction
}

var _ pflag.Value = (*sortValue)(nil)

func (s *sortValue) String() string { return string(s.dir) }
func (s *sortValue) Type() string   { return "asc|desc" }

func (s *sortValue) Set(v string) error {
	switch d := rollup.Direction(strings.ToLower(strings.TrimSpace(v))); d {
	case rollup.Asc, rollup.Desc:
		s.dir = d
	case "", "none":
		s.dir = ""
	default:
		return errors.Errorf("sort must be asc or desc, got %q", v)
	}
	return nil
}

// metricValue is a pflag.Value for --by: total or heads.
type metricValue struct {
	metric rollup.Metric
}

var _ pflag.Value = (*metricValue)(nil)

func (m *metricValue) String() string { return string(m.metric) }
func (m *metricValue) Type() string   { return "total|heads" }

func (m *metricValue) Set(v string) error {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "total", "total_allowance", "allowance":
		m.metric = rollup.MetricTotalAllowance
	case "heads", "head_count", "headcount":
		m.metric = rollup.MetricHeadCount
	default:
		return errors.Errorf("sort metric must be total or heads, got %q", v)
	}
	return nil
}

// sortState turns the flag pair into a rollup sort, nil when unsorted.
func sortState(dir sortValue, metric metricValue) *rollup.Sort {
	if dir.dir == "" {
		return nil
	}
	m := metric.metric
	if m == "" {
		m = rollup.MetricTotalAllowance
	}
	return &rollup.Sort{Metric: m, Direction: dir.dir}
}

// monthFlags registers --from and --to on fs.
func monthFlags(fs *pflag.FlagSet, from, to *monthValue) {
	fs.Var(from, "from", "First month (Jan'24, 2024-01, ...)")
	fs.Var(to, "to", "Last month (Jan'24, 2024-01, ...)")
}
