package assert

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// ResponseTimeBelow checks elapsed < maxMS milliseconds.
func ResponseTimeBelow(elapsed time.Duration, maxMS int) error {
	if elapsed >= time.Duration(maxMS)*time.Millisecond {
		return fail("response time", "", fmt.Sprintf("less than %d ms", maxMS), fmt.Sprintf("%d ms", elapsed.Milliseconds()))
	}
	return nil
}

// WithinBaseline checks current < baseline * pct / 100.
func WithinBaseline(current, baseline time.Duration, pct int) error {
	limit := time.Duration(float64(baseline) * float64(pct) / 100)
	if current >= limit {
		return fail("response time", "",
			fmt.Sprintf("less than %d%% of %s (%s)", pct, baseline, limit), current.String())
	}
	return nil
}

// PayloadBelowKB checks size/1024 < maxKB, size in bytes.
func PayloadBelowKB(size int, maxKB int) error {
	kb := float64(size) / 1024
	if kb >= float64(maxKB) {
		return fail("payload size", "", fmt.Sprintf("less than %d KB", maxKB), fmt.Sprintf("%.2f KB", kb))
	}
	return nil
}

// Percentile returns the p-th percentile (nearest rank) of durations.
func Percentile(durations []time.Duration, p int) time.Duration {
	if len(durations) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), durations...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return sorted[percentileIndex(len(sorted), p)]
}

// PercentileBelow checks that the p-th percentile of durations is below maxMS.
func PercentileBelow(durations []time.Duration, p, maxMS int) error {
	if len(durations) == 0 {
		return fail("response time", fmt.Sprintf("p%d", p), "at least one measured request", "none")
	}
	got := Percentile(durations, p)
	if got >= time.Duration(maxMS)*time.Millisecond {
		return fail("response time", fmt.Sprintf("p%d", p), fmt.Sprintf("less than %d ms", maxMS), fmt.Sprintf("%d ms", got.Milliseconds()))
	}
	return nil
}

func percentileIndex(n int, percentile int) int {
	if n == 0 {
		return 0
	}
	index := int(math.Ceil(float64(n)*float64(percentile)/100.0)) - 1
	if index < 0 {
		index = 0
	}
	if index >= n {
		index = n - 1
	}
	return index
}
