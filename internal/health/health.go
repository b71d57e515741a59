// Package health serves the liveness and readiness probes.
package health

import (
	"fmt"
	"net/http"
	"os"
)

// Check reports whether one dependency is usable.
type Check func() error

// Checker runs the readiness checks.
type Checker struct {
	checks map[string]Check
}

// New returns a Checker with the named readiness checks.
func New(checks map[string]Check) *Checker {
	return &Checker{checks: checks}
}

// Healthz returns 200 "ok\n" unconditionally.
func Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok\n"))
}

// Readyz returns 200 "ready\n" when every check passes, else 503 with the
// first failure.
func (c *Checker) Readyz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	for name, check := range c.checks {
		if err := check(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, "not ready: %s: %v\n", name, err)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready\n"))
}

// DirWritable checks that dir exists and accepts new files.
func DirWritable(dir string) Check {
	return func() error {
		f, err := os.CreateTemp(dir, ".ready-*")
		if err != nil {
			return err
		}
		name := f.Name()
		f.Close()
		return os.Remove(name)
	}
}
