package bucket

import (
	"context"
	"fmt"
	"testing"
	"time"
)

// BenchmarkAllow measures single-threaded throughput on one address.
func BenchmarkAllow(b *testing.B) {
	store := NewInMemoryBucketStore(1000, 1000, time.Minute)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = store.Allow(ctx, "203.0.113.7")
	}
}

// BenchmarkAllow_Parallel measures contention on a shared address.
func BenchmarkAllow_Parallel(b *testing.B) {
	store := NewInMemoryBucketStore(1000, 1000, time.Minute)
	ctx := context.Background()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = store.Allow(ctx, "203.0.113.7")
		}
	})
}

// BenchmarkAllow_HighCardinality measures the cost of minting buckets for many addresses.
func BenchmarkAllow_HighCardinality(b *testing.B) {
	store := NewInMemoryBucketStore(1, 5, time.Minute)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = store.Allow(ctx, fmt.Sprintf("10.%d.%d.%d", (i>>16)&0xff, (i>>8)&0xff, i&0xff))
	}
}
