package faces

import (
	"context"
	"fmt"

	"github.com/your-org/momentmaker/internal/models"
	"github.com/your-org/momentmaker/internal/observability"
	"github.com/your-org/momentmaker/internal/storage"
)

// OccurrenceStore persists where each identity appears.
type OccurrenceStore interface {
	AppendOccurrence(ctx context.Context, userID, faceKey string, loc models.Location) (storage.AppendOutcome, error)
	GetOccurrences(ctx context.Context, userID string, faceKeys []string) ([]models.Occurrence, error)
}

// Index is the append-only record of identity sightings. Entries are never
// rewritten or deleted; re-analysis of the same asset simply appends again.
type Index struct {
	store OccurrenceStore
}

func NewIndex(store OccurrenceStore) *Index {
	return &Index{store: store}
}

// Record appends one sighting of an identity. TimestampMS is nil for still
// images and set for video frames.
func (i *Index) Record(ctx context.Context, userID, faceKey string, loc models.Location) error {
	outcome, err := i.store.AppendOccurrence(ctx, userID, faceKey, loc)
	if err != nil {
		return fmt.Errorf("append occurrence: %w", err)
	}
	if outcome == storage.OutcomeConflict {
		outcome, err = i.store.AppendOccurrence(ctx, userID, faceKey, loc)
		if err != nil {
			return fmt.Errorf("retry occurrence append: %w", err)
		}
		if outcome == storage.OutcomeConflict {
			return fmt.Errorf("append occurrence for %s: persistent conflict", faceKey)
		}
	}

	observability.OccurrencesIndexed.Inc()
	return nil
}

// Lookup returns the sightings for the given identities, deduplicated by
// (identity, asset, timestamp). An empty faceKeys slice selects every
// identity of the user.
func (i *Index) Lookup(ctx context.Context, userID string, faceKeys []string) ([]models.Occurrence, error) {
	occurrences, err := i.store.GetOccurrences(ctx, userID, faceKeys)
	if err != nil {
		return nil, fmt.Errorf("load occurrences: %w", err)
	}

	seen := make(map[string]struct{}, len(occurrences))
	deduped := occurrences[:0]
	for _, occ := range occurrences {
		key := occ.FaceKey + "\x00" + occ.AssetKey
		if occ.TimestampMS != nil {
			key = fmt.Sprintf("%s\x00%d", key, *occ.TimestampMS)
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, occ)
	}
	return deduped, nil
}
