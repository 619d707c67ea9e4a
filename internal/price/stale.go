package price

// IsStale reports whether now - observationTimestamp exceeds thresholdSeconds.
// A timestamp ahead of now is never stale.
func IsStale(observationTimestamp, now, thresholdSeconds uint64) bool {
	return Age(observationTimestamp, now) > thresholdSeconds
}

// Age returns now - observationTimestamp, clamped at zero.
func Age(observationTimestamp, now uint64) uint64 {
	if now <= observationTimestamp {
		return 0
	}
	return now - observationTimestamp
}
