package events

import (
	"net/http"
	"time"
)

// HTTPStart is published when the GraphQL endpoint receives a request, before
// authentication.
type HTTPStart struct {
	Request *http.Request
}

// HTTPFinish is published once the response has been written. UserID is
// empty for unauthenticated or rejected requests; Batch counts the
// operations of a batched request and is zero otherwise.
type HTTPFinish struct {
	Request  *http.Request
	Status   int
	UserID   string
	Batch    int
	Duration time.Duration
}
