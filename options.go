package ringqueue

// WaitPolicy selects how OfferTimeout, PollTimeout, Put and Take wait
// after a failed first attempt.
type WaitPolicy int

const (
	// SleepRetry sleeps for the whole timeout once and then makes exactly one more attempt.
	// It cannot wake early when an item or a free slot appears.
	SleepRetry WaitPolicy = iota
	// SpinUntil keeps retrying with backoff until the timeout elapses,
	// returning as soon as an attempt succeeds.
	SpinUntil
)

func (p WaitPolicy) String() string {
	switch p {
	case SleepRetry:
		return "sleep-retry"
	case SpinUntil:
		return "spin-until"
	default:
		return "unknown"
	}
}

type options struct {
	waitPolicy   WaitPolicy
	maxRetries   int
	clearOnPoll  bool
	collectStats bool
}

func defaultOptions() options {
	return options{
		waitPolicy:  SleepRetry,
		clearOnPoll: true,
	}
}

// Option configures a Queue.
type Option func(*options)

// WithWaitPolicy sets the wait policy used by the timeout operations.
func WithWaitPolicy(p WaitPolicy) Option {
	return func(o *options) {
		o.waitPolicy = p
	}
}

// WithMaxRetries caps the reservation loop of Offer and the claim loop of Poll.
// Once n CAS attempts have failed the operation gives up and reports full or empty.
// The publish loop of Offer is never capped. n <= 0 means unbounded (the default).
func WithMaxRetries(n int) Option {
	return func(o *options) {
		if n < 0 {
			n = 0
		}
		o.maxRetries = n
	}
}

// WithoutSlotClearing keeps consumed values in their slots until a producer overwrites them.
func WithoutSlotClearing() Option {
	return func(o *options) {
		o.clearOnPoll = false
	}
}

// WithStats enables the counters returned by Queue.Stats.
// They are shared atomics and add contention to every operation.
func WithStats() Option {
	return func(o *options) {
		o.collectStats = true
	}
}
