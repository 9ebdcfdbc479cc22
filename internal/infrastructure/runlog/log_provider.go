// Package runlog implements the per-run, per-node log and metric providers
// of component C: write-only sinks derived from templated URIs, with
// flush-on-close metric aggregation. It is the data-plane counterpart to
// internal/infrastructure/applog's control-plane logging.
package runlog

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/grochmal/harmonia/internal/domain/harmonia"
	"github.com/grochmal/harmonia/internal/domain/uri"
)

const stdoutSentinel = "-"

// LogProvider is a write-only sink for a single run/node pair. Each line
// is prefixed with an ISO-8601 UTC timestamp and a " | " separator.
// Release is idempotent: close may be called any number of times, and the
// underlying handle is closed exactly once.
type LogProvider struct {
	handle   io.WriteCloser
	isStdout bool
	once     sync.Once

	prevStdout *os.File
	prevStderr *os.File
}

// newLogProvider opens uri ("-" for stdout) and, when captureStdout is
// true, redirects the process's stdout/stderr to the handle for the
// lifetime of the provider. The supervisor does not set captureStdout: it
// routes each child's output to the provider through its own writer.
func newLogProvider(u string, captureStdout bool) (*LogProvider, error) {
	if u == stdoutSentinel {
		return &LogProvider{handle: os.Stdout, isStdout: true}, nil
	}

	if err := uri.HasScheme(u); err != nil {
		return nil, &harmonia.DomainError{Code: harmonia.ErrCodeInvalidInput, Message: "log provider uri must have a scheme", Cause: err}
	}
	if err := uri.MakeDirs(u); err != nil {
		return nil, &harmonia.DomainError{Code: harmonia.ErrCodeInvalidInput, Message: "failed to create log parent directory", Cause: err}
	}

	path := u
	if err := uri.IsFileScheme(u); err == nil {
		path = u[len("file://"):]
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, &harmonia.DomainError{Code: harmonia.ErrCodeInvalidInput, Message: "failed to open log handle", Cause: err}
	}

	lp := &LogProvider{handle: f}
	if captureStdout {
		lp.prevStdout, lp.prevStderr = os.Stdout, os.Stderr
		os.Stdout = f
		os.Stderr = f
	}
	return lp, nil
}

// Msg writes a single timestamped line.
func (lp *LogProvider) Msg(msg string) {
	fmt.Fprintf(lp.handle, "%s | %s\n", time.Now().UTC().Format(time.RFC3339), msg)
}

// Close releases the provider's resources. Safe to call more than once;
// only the first call has effect.
func (lp *LogProvider) Close() error {
	var err error
	lp.once.Do(func() {
		if lp.prevStdout != nil {
			os.Stdout = lp.prevStdout
			os.Stderr = lp.prevStderr
		}
		if !lp.isStdout {
			err = lp.handle.Close()
		}
	})
	return err
}

// LogProviderFactory holds a templated URI containing both {name} and
// {version} (the sentinel "-" is exempt). Build expands the template and
// returns a bound LogProvider.
type LogProviderFactory struct {
	ref harmonia.LogProviderFactoryRef
}

// NewLogProviderFactory validates ref's URI shape via the domain
// constructor and wraps it for building concrete providers.
func NewLogProviderFactory(templateURI string) (LogProviderFactory, error) {
	ref, err := harmonia.NewLogProviderFactoryRef(templateURI)
	if err != nil {
		return LogProviderFactory{}, err
	}
	return LogProviderFactory{ref: ref}, nil
}

// Build expands {version} and {name}, ensures parent directories, opens a
// write-only handle, and returns a bound LogProvider. captureStdout
// redirects the enclosing process's stdout/stderr to the handle; no caller
// in this module sets it to true.
func (f LogProviderFactory) Build(version, name string, captureStdout bool) (*LogProvider, error) {
	expanded := uri.ExpandNameVersion(f.ref.URI, version, name)
	return newLogProvider(expanded, captureStdout)
}
