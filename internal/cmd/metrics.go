package cmd

import (
	"fmt"
	"io"

	dto "github.com/prometheus/client_model/go"

	"devboard/internal/metrics"
)

// printMetrics writes every non-empty devboard collector to w
func printMetrics(w io.Writer) error {
	families, err := metrics.Registry.Gather()
	if err != nil {
		return err
	}

	for _, family := range families {
		for _, m := range family.GetMetric() {
			name := family.GetName() + labelSuffix(m.GetLabel())
			switch family.GetType() {
			case dto.MetricType_COUNTER:
				if m.GetCounter().GetValue() == 0 {
					continue
				}
				fmt.Fprintf(w, "%s %g\n", name, m.GetCounter().GetValue())
			case dto.MetricType_HISTOGRAM:
				h := m.GetHistogram()
				if h.GetSampleCount() == 0 {
					continue
				}
				fmt.Fprintf(w, "%s_count %d\n", name, h.GetSampleCount())
				fmt.Fprintf(w, "%s_sum %g\n", name, h.GetSampleSum())
			}
		}
	}
	return nil
}

func labelSuffix(labels []*dto.LabelPair) string {
	if len(labels) == 0 {
		return ""
	}
	suffix := "{"
	for i, l := range labels {
		if i > 0 {
			suffix += ","
		}
		suffix += fmt.Sprintf("%s=%q", l.GetName(), l.GetValue())
	}
	return suffix + "}"
}
