package model

import "time"

// RetryConfig defines retry behavior for fetching remote sources
type RetryConfig struct {
	MaxRetries    int           `json:"max_retries"`
	InitialDelay  time.Duration `json:"initial_delay"`
	MaxDelay      time.Duration `json:"max_delay"`
	BackoffFactor float64       `json:"backoff_factor"`
}

// DefaultRetryConfig is used when a loader is built without one.
var DefaultRetryConfig = RetryConfig{
	MaxRetries:    3,
	InitialDelay:  200 * time.Millisecond,
	MaxDelay:      2 * time.Second,
	BackoffFactor: 2.0,
}
