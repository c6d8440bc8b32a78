package moment

import (
	"sort"
	"time"
)

// Range is a half-open trim window inside a video, in milliseconds.
type Range struct {
	StartMS int64
	EndMS   int64
}

// ClusterTimestamps merges face-sighting timestamps into trim ranges. Sorted
// timestamps closer than gap fall into one cluster; each cluster becomes a
// range from its first sighting to its last plus buffer, so a clip never cuts
// off the instant the face was seen.
func ClusterTimestamps(timestamps []int64, gap, buffer time.Duration) []Range {
	if len(timestamps) == 0 {
		return nil
	}

	sorted := make([]int64, len(timestamps))
	copy(sorted, timestamps)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	gapMS := gap.Milliseconds()
	bufferMS := buffer.Milliseconds()

	var ranges []Range
	start := sorted[0]
	last := sorted[0]

	for _, ts := range sorted[1:] {
		if ts-last > gapMS {
			ranges = append(ranges, Range{StartMS: start, EndMS: last + bufferMS})
			start = ts
		}
		last = ts
	}
	ranges = append(ranges, Range{StartMS: start, EndMS: last + bufferMS})

	return ranges
}
