//go:build !unix

package zmqasync

import "time"

// pollFallbackInterval bounds how often the worker re-checks registered
// sockets when no platform-native multiplexer is available.
const pollFallbackInterval = 10 * time.Millisecond

// waitAndService is the non-unix fallback: it has no raw fd to multiplex
// on, so it simply waits out one interval (or until a new request wakes
// it via the channel-backed [wakeup]) and then reconciles every socket
// with outstanding interest against its real readiness.
func (w *worker) waitAndService() error {
	timer := time.NewTimer(pollFallbackInterval)
	defer timer.Stop()

	select {
	case <-w.wake.(*wakeup).C():
	case <-timer.C:
	}

	w.service()
	return nil
}
