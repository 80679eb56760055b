package metrics

import "errors"

// ErrBadBuckets rejects histogram buckets that are empty or not strictly
// increasing; prometheus panics on them at registration.
var ErrBadBuckets = errors.New("histogram buckets must be strictly increasing")

func checkBuckets(buckets []float64) error {
	if len(buckets) == 0 {
		return ErrBadBuckets
	}
	for i := 1; i < len(buckets); i++ {
		if buckets[i] <= buckets[i-1] {
			return ErrBadBuckets
		}
	}
	return nil
}
