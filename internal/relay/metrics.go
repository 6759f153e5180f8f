package relay

// Metrics is the observation surface of the relay core.
type Metrics interface {
	// ObservePublish records one publish reaching n subscribers.
	ObservePublish(n int)
	// ObserveDrop records an event evicted from a full subscriber buffer.
	ObserveDrop()
	// ObserveSubscribers records the current subscriber count.
	ObserveSubscribers(n int)
	// ObserveSession records a relay session of kind opening (+1) or closing (-1).
	ObserveSession(kind string, delta int)
	// ObserveAppendError records a failed persistence append.
	ObserveAppendError()
}

// NoopMetrics discards all observations.
type NoopMetrics struct{}

func (NoopMetrics) ObservePublish(int)         {}
func (NoopMetrics) ObserveDrop()               {}
func (NoopMetrics) ObserveSubscribers(int)     {}
func (NoopMetrics) ObserveSession(string, int) {}
func (NoopMetrics) ObserveAppendError()        {}
