package server

import (
	"sync"
	"time"
)

// Status is the JSON body served by GET /status
type Status struct {
	// Ready reports whether the server accepts extraction requests
	Ready bool `json:"ready"`

	// RequestsServed counts extraction requests answered successfully
	RequestsServed int64 `json:"requests_served"`

	// RequestsFailed counts extraction requests answered with an error
	RequestsFailed int64 `json:"requests_failed"`

	// LastDuration is how long the last extraction request took
	LastDuration *time.Duration `json:"last_duration,omitempty"`

	// LastError is the error of the last failed request
	LastError string `json:"last_error,omitempty"`

	// UptimeSeconds is how long the server has been running
	UptimeSeconds int64 `json:"uptime_seconds"`
}

// StatusTracker tracks request outcomes in a thread-safe manner
type StatusTracker struct {
	mu        sync.RWMutex
	ready     bool
	startTime time.Time
	served    int64
	failed    int64
	lastDur   *time.Duration
	errMsg    string
}

// NewStatusTracker creates a new status tracker
func NewStatusTracker() *StatusTracker {
	return &StatusTracker{
		startTime: time.Now(),
	}
}

// GetStatus returns a snapshot of the current status
func (st *StatusTracker) GetStatus() Status {
	st.mu.RLock()
	defer st.mu.RUnlock()

	return Status{
		Ready:          st.ready,
		RequestsServed: st.served,
		RequestsFailed: st.failed,
		LastDuration:   st.lastDur,
		LastError:      st.errMsg,
		UptimeSeconds:  int64(time.Since(st.startTime).Seconds()),
	}
}

// SetReady marks the server as accepting or refusing work
func (st *StatusTracker) SetReady(ready bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.ready = ready
}

// Ready reports whether the server accepts work
func (st *StatusTracker) Ready() bool {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.ready
}

// RequestServed records a successful request
func (st *StatusTracker) RequestServed(duration time.Duration) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.served++
	st.lastDur = &duration
}

// RequestFailed records a failed request
func (st *StatusTracker) RequestFailed(err error, duration time.Duration) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.failed++
	st.lastDur = &duration
	if err != nil {
		st.errMsg = err.Error()
	}
}
