package cli

import (
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/roach88/todolist/internal/kvstore"
	"github.com/roach88/todolist/internal/store"
	"github.com/roach88/todolist/internal/todo"
)

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show storage and engine metrics",
		Long: `Print the engine and storage backend metrics in the Prometheus text
exposition format (or as JSON with --format json).

For SQLite these are connection pool statistics; for Pebble they are
compaction, memtable and WAL statistics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(rootOpts, cmd, func(s *session, f *OutputFormatter) error {
				families, err := s.registry.Gather()
				if err != nil {
					return err
				}
				return f.Success(newStatsView(families))
			})
		},
	}
}

// backendCollector returns the metrics collector for st, if it has one.
func backendCollector(st todo.Store) prometheus.Collector {
	switch st := st.(type) {
	case *store.Store:
		return collectors.NewDBStatsCollector(st.DB(), "todo")
	case *kvstore.Store:
		return st.Collector()
	}
	return nil
}

type sampleView struct {
	Labels map[string]string `json:"labels,omitempty"`
	Value  float64           `json:"value"`
}

type familyView struct {
	Name    string       `json:"name"`
	Type    string       `json:"type"`
	Samples []sampleView `json:"samples"`
}

type statsView struct {
	Metrics []familyView `json:"metrics"`

	families []*dto.MetricFamily
}

// newStatsView summarizes families. Histograms report their sample count.
func newStatsView(families []*dto.MetricFamily) statsView {
	v := statsView{Metrics: make([]familyView, 0, len(families)), families: families}

	for _, mf := range families {
		fv := familyView{
			Name:    mf.GetName(),
			Type:    strings.ToLower(mf.GetType().String()),
			Samples: make([]sampleView, 0, len(mf.GetMetric())),
		}
		for _, m := range mf.GetMetric() {
			sv := sampleView{}
			if pairs := m.GetLabel(); len(pairs) > 0 {
				sv.Labels = make(map[string]string, len(pairs))
				for _, lp := range pairs {
					sv.Labels[lp.GetName()] = lp.GetValue()
				}
			}
			switch {
			case m.GetCounter() != nil:
				sv.Value = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				sv.Value = m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				sv.Value = float64(m.GetHistogram().GetSampleCount())
			case m.GetUntyped() != nil:
				sv.Value = m.GetUntyped().GetValue()
			}
			fv.Samples = append(fv.Samples, sv)
		}
		v.Metrics = append(v.Metrics, fv)
	}

	sort.Slice(v.Metrics, func(i, j int) bool { return v.Metrics[i].Name < v.Metrics[j].Name })
	return v
}

func (v statsView) String() string {
	var b strings.Builder
	for _, mf := range v.families {
		if _, err := expfmt.MetricFamilyToText(&b, mf); err != nil {
			return err.Error()
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}
