package moment

import (
	"time"

	"github.com/your-org/momentmaker/internal/models"
)

// Candidate is one asset chosen for assembly. A video with trim ranges
// contributes one clip per range; a video without ranges or an image
// contributes one whole clip.
type Candidate struct {
	AssetKey string
	Kind     models.MediaKind
	Ranges   []Range
}

// SelectClips decides which assets go into a moment.
//
// With no identity filter every photo and video goes in whole. With a filter,
// only assets where a requested identity was sighted survive, and videos are
// trimmed down to the clusters of sighting timestamps. An empty selection is
// ErrNoOccurrences, never an empty moment.
func SelectClips(assets []models.MediaAsset, occurrences []models.Occurrence, filtered bool, gap, buffer time.Duration) ([]Candidate, error) {
	kindByKey := make(map[string]models.MediaKind, len(assets))
	order := make([]string, 0, len(assets))
	for _, a := range assets {
		if a.Kind != models.MediaKindImage && a.Kind != models.MediaKindVideo {
			continue
		}
		if _, seen := kindByKey[a.ObjectKey]; seen {
			continue
		}
		kindByKey[a.ObjectKey] = a.Kind
		order = append(order, a.ObjectKey)
	}

	if !filtered {
		candidates := make([]Candidate, 0, len(order))
		for _, key := range order {
			candidates = append(candidates, Candidate{AssetKey: key, Kind: kindByKey[key]})
		}
		if len(candidates) == 0 {
			return nil, ErrNoOccurrences
		}
		return candidates, nil
	}

	timestampsByKey := make(map[string][]int64)
	matched := make(map[string]bool)
	for _, occ := range occurrences {
		if _, known := kindByKey[occ.AssetKey]; !known {
			continue
		}
		matched[occ.AssetKey] = true
		if occ.TimestampMS != nil {
			timestampsByKey[occ.AssetKey] = append(timestampsByKey[occ.AssetKey], *occ.TimestampMS)
		}
	}

	var candidates []Candidate
	for _, key := range order {
		if !matched[key] {
			continue
		}
		c := Candidate{AssetKey: key, Kind: kindByKey[key]}
		if c.Kind == models.MediaKindVideo {
			c.Ranges = ClusterTimestamps(timestampsByKey[key], gap, buffer)
		}
		candidates = append(candidates, c)
	}

	if len(candidates) == 0 {
		return nil, ErrNoOccurrences
	}
	return candidates, nil
}
