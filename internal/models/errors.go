package models

import (
	"fmt"
	"strings"
)

// Service identifiers carried by UpstreamError.
const (
	ServiceIndicator  = "indicator"
	ServiceMarketData = "market-data"
	ServiceAnalysis   = "analysis"
)

// UpstreamError describes a failed interaction with an external
// service. Any UpstreamError from the fetch or analysis stages aborts
// the pipeline.
type UpstreamError struct {
	Service    string
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	msg := fmt.Sprintf("%s service error", e.Service)
	if e.Endpoint != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Endpoint)
	}
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s: status %d", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// ConfigError reports every missing required configuration key in a
// single error, so one failed run is enough to fix the environment.
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", strings.Join(e.Missing, ", "))
}
