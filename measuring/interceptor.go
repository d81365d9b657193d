package measuring

import (
	"time"

	routing "github.com/jackwhelpton/fasthttp-routing/v2"
)

// Recorder receives one response time per completed request.
type Recorder interface {
	Record(key Key, t time.Duration)
}

// Time calls next and records its elapsed time under key, whether next
// returns an error or panics. The error from next is returned unchanged.
func Time(r Recorder, key Key, next func() error) error {
	startTime := time.Now()
	defer func() {
		r.Record(key, time.Since(startTime))
	}()
	return next()
}

// Handler is a routing middleware recording the response time of the
// handlers after it. Requests are keyed by pattern, which should be the route
// pattern the handler is registered under; an empty pattern keys requests by
// their literal path instead.
func Handler(r Recorder, pattern string) routing.Handler {
	return func(c *routing.Context) error {
		key := Key{Path: pattern, Method: string(c.Method())}
		if key.Path == "" {
			key.Path = string(c.Path())
		}
		return Time(r, key, c.Next)
	}
}
