package metrics

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hamed0406/observatorycheck/internal/domain"
)

// Label names of every exported gauge.
const (
	LabelScanID     = "scan_id"
	LabelGrade      = "grade"
	LabelLikelihood = "likelihood_indicator"
	LabelHostname   = "hostname"
	LabelTags       = "tags"
)

var labelNames = []string{LabelScanID, LabelGrade, LabelLikelihood, LabelHostname, LabelTags}

var derivedKeys = map[string]bool{
	LabelScanID:     true,
	LabelGrade:      true,
	LabelLikelihood: true,
	LabelHostname:   true,
}

// Exporter mirrors the latest observations of each host as Prometheus gauges.
type Exporter struct {
	registry *prometheus.Registry

	mu     sync.Mutex
	gauges map[string]*prometheus.GaugeVec
}

func NewExporter() *Exporter {
	return &Exporter{
		registry: prometheus.NewRegistry(),
		gauges:   make(map[string]*prometheus.GaugeVec),
	}
}

func (e *Exporter) Registry() *prometheus.Registry { return e.registry }

// PromName converts a dotted metric name into a Prometheus metric name.
func PromName(name string) string {
	return strings.NewReplacer(".", "_", "-", "_").Replace(name)
}

// Publish replaces the series of obs' host with obs.
func (e *Exporter) Publish(host string, obs []domain.Observation) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, g := range e.gauges {
		g.DeletePartialMatch(prometheus.Labels{LabelHostname: host})
	}

	for _, o := range obs {
		g, err := e.gaugeFor(o.Name)
		if err != nil {
			return err
		}
		g.With(labelsFor(o)).Set(o.Value)
	}
	return nil
}

func (e *Exporter) gaugeFor(name string) (*prometheus.GaugeVec, error) {
	if g, ok := e.gauges[name]; ok {
		return g, nil
	}
	g := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: PromName(name),
		Help: "Observatory gauge " + name,
	}, labelNames)
	if err := e.registry.Register(g); err != nil {
		return nil, err
	}
	e.gauges[name] = g
	return g, nil
}

// labelsFor maps an observation onto the exporter labels. The derived tags
// lead the tag list; everything after them, including user tags that reuse a
// derived key, is folded into LabelTags. The hostname label is always o.Host
// so Publish can drop a host's previous series.
func labelsFor(o domain.Observation) prometheus.Labels {
	l := prometheus.Labels{
		LabelScanID:     "",
		LabelGrade:      "",
		LabelLikelihood: "",
		LabelHostname:   o.Host,
		LabelTags:       "",
	}
	seen := make(map[string]bool, len(derivedKeys))
	var extra []string
	prefix := true
	for i, t := range o.Tags {
		k, v, ok := strings.Cut(t, ":")
		if prefix && i < len(derivedKeys) && ok && derivedKeys[k] && !seen[k] {
			seen[k] = true
			if k != LabelHostname {
				l[k] = v
			}
			continue
		}
		prefix = false
		extra = append(extra, t)
	}
	l[LabelTags] = strings.Join(extra, ",")
	return l
}
