package report

import "fmt"

// ConnectionError is a transport-level failure reaching the report
// server (DNS, refused connection, timeout). It is the only fetch error
// that is retried.
type ConnectionError struct {
	URL string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connecting to %s: %v", e.URL, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }
