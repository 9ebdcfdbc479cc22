package runlog

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/grochmal/harmonia/internal/domain/harmonia"
	"github.com/grochmal/harmonia/internal/domain/uri"
)

// paramEntry and metricEntry preserve insertion order across the
// lifetime of a MetricProvider, since Go maps do not, and §4.3 requires a
// deterministic flush order.
type paramEntry struct {
	key, value string
}

type metricEntry struct {
	key    string
	values []float64
}

// MetricProvider accumulates scalar params and vectorized metrics, and
// flushes them to an optional backing handle on Close, each param as
// "<k>: <v>\n" and each metric as "<k>: <v0>,<v1>,...\n" with every value
// formatted to exactly four decimal digits. A linked LogProvider receives
// a mirrored message per log call. Release is scoped: Close runs the
// flush exactly once even if called more than once.
type MetricProvider struct {
	handle      io.WriteCloser
	logProvider *LogProvider
	once        sync.Once

	mu       sync.Mutex
	params   []paramEntry
	paramID  map[string]int
	metrics  []metricEntry
	metricID map[string]int
}

// newMetricProvider opens uri ("-" disables the backing handle) and
// optionally links a LogProvider for mirrored messages.
func newMetricProvider(u string, logProvider *LogProvider) (*MetricProvider, error) {
	mp := &MetricProvider{
		logProvider: logProvider,
		paramID:     make(map[string]int),
		metricID:    make(map[string]int),
	}
	if u == stdoutSentinel || u == "" {
		return mp, nil
	}

	if err := uri.HasScheme(u); err != nil {
		return nil, &harmonia.DomainError{Code: harmonia.ErrCodeInvalidInput, Message: "metric provider uri must have a scheme", Cause: err}
	}
	if err := uri.MakeDirs(u); err != nil {
		return nil, &harmonia.DomainError{Code: harmonia.ErrCodeInvalidInput, Message: "failed to create metric parent directory", Cause: err}
	}
	path := u
	if err := uri.IsFileScheme(u); err == nil {
		path = u[len("file://"):]
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, &harmonia.DomainError{Code: harmonia.ErrCodeInvalidInput, Message: "failed to open metric handle", Cause: err}
	}
	mp.handle = f
	return mp, nil
}

// MetricFactory mirrors LogProviderFactory: a templated URI containing
// {name} and {version}, used to build a MetricProvider bound to a
// specific run.
type MetricFactory struct {
	ref harmonia.LogProviderFactoryRef
}

// NewMetricFactory validates templateURI the same way a log provider
// factory does.
func NewMetricFactory(templateURI string) (MetricFactory, error) {
	ref, err := harmonia.NewLogProviderFactoryRef(templateURI)
	if err != nil {
		return MetricFactory{}, err
	}
	return MetricFactory{ref: ref}, nil
}

// Build expands the template and returns a bound MetricProvider, linking
// logProvider (may be nil) for mirrored messages.
func (f MetricFactory) Build(version, name string, logProvider *LogProvider) (*MetricProvider, error) {
	expanded := uri.ExpandNameVersion(f.ref.URI, version, name)
	return newMetricProvider(expanded, logProvider)
}

// LogParam records a scalar param, overwriting any prior value for the
// same key while preserving its original position.
func (mp *MetricProvider) LogParam(param, value string) {
	mp.mu.Lock()
	if idx, ok := mp.paramID[param]; ok {
		mp.params[idx].value = value
	} else {
		mp.paramID[param] = len(mp.params)
		mp.params = append(mp.params, paramEntry{key: param, value: value})
	}
	mp.mu.Unlock()

	if mp.logProvider != nil {
		mp.logProvider.Msg(fmt.Sprintf("param: %s = %s", param, value))
	}
}

// GetParam returns the recorded value for param, or "" if never logged.
func (mp *MetricProvider) GetParam(param string) string {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	if idx, ok := mp.paramID[param]; ok {
		return mp.params[idx].value
	}
	return ""
}

// LogMetric appends a value to metric's vector.
func (mp *MetricProvider) LogMetric(metric string, value float64) {
	mp.mu.Lock()
	if idx, ok := mp.metricID[metric]; ok {
		mp.metrics[idx].values = append(mp.metrics[idx].values, value)
	} else {
		mp.metricID[metric] = len(mp.metrics)
		mp.metrics = append(mp.metrics, metricEntry{key: metric, values: []float64{value}})
	}
	mp.mu.Unlock()

	if mp.logProvider != nil {
		mp.logProvider.Msg(fmt.Sprintf("metric: %s = %.4f", metric, value))
	}
}

// GetMetric returns the recorded value vector for metric, or nil if never
// logged.
func (mp *MetricProvider) GetMetric(metric string) []float64 {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	if idx, ok := mp.metricID[metric]; ok {
		return append([]float64(nil), mp.metrics[idx].values...)
	}
	return nil
}

// Close flushes params then metrics, in insertion order, to the backing
// handle (if any) and closes it, then releases the linked log provider.
// Idempotent: the flush-and-close body runs exactly once.
func (mp *MetricProvider) Close() error {
	var err error
	mp.once.Do(func() {
		if mp.handle != nil {
			mp.mu.Lock()
			for _, p := range mp.params {
				fmt.Fprintf(mp.handle, "%s: %s\n", p.key, p.value)
			}
			for _, m := range mp.metrics {
				formatted := make([]string, len(m.values))
				for i, v := range m.values {
					formatted[i] = fmt.Sprintf("%.4f", v)
				}
				fmt.Fprintf(mp.handle, "%s: %s\n", m.key, strings.Join(formatted, ","))
			}
			mp.mu.Unlock()
			err = mp.handle.Close()
		}
		if mp.logProvider != nil {
			if lerr := mp.logProvider.Close(); lerr != nil && err == nil {
				err = lerr
			}
		}
	})
	return err
}
