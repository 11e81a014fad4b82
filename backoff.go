package ringqueue

import (
	"runtime"

	"github.com/valyala/fastrand"
)

const goschedEvery = 64 // reduce runtime.Gosched() frequency in hot loops

// backoff spaces out runtime.Gosched() calls in a CAS retry loop.
// The cadence is jittered so that contending goroutines do not yield in lockstep.
type backoff struct {
	spins   uint32
	retries int
	limit   uint32
	max     int // 0 means unbounded
}

func newBackoff(maxRetries int) backoff {
	return backoff{limit: goschedEvery, max: maxRetries}
}

// wait records a failed attempt and reports whether the caller may retry.
func (b *backoff) wait() bool {
	b.retries++
	if b.max > 0 && b.retries >= b.max {
		return false
	}

	b.spins++
	if b.spins >= b.limit {
		b.spins = 0
		b.limit = goschedEvery/2 + fastrand.Uint32n(goschedEvery)
		runtime.Gosched()
	}
	return true
}
