package metrics

import "testing"

// BenchmarkCollector_RoundTrip records what one Invoke costs in
// counters, from many goroutines at once.
func BenchmarkCollector_RoundTrip(b *testing.B) {
	c := New()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			c.CommandSent()
			c.BytesSent(12)
			c.BytesReceived(48)
			c.ResponseDispatched()
		}
	})
}
