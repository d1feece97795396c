package events

import "time"

// FetchStart is emitted before a store read. ID pairs it with its
// FetchFinish.
type FetchStart struct {
	ID     uint64
	Kind   string
	Method string
}

// FetchFinish is emitted after a store read completes.
type FetchFinish struct {
	ID       uint64
	Kind     string
	Method   string
	Rows     int
	Err      error
	Duration time.Duration
}
