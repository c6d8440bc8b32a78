package faces

import (
	"context"
	"fmt"

	"github.com/your-org/momentmaker/internal/models"
	"github.com/your-org/momentmaker/internal/observability"
	"github.com/your-org/momentmaker/internal/storage"
)

// Comparer scores the similarity of a face crop against a stored canonical
// crop as a percent.
type Comparer interface {
	CompareFaces(ctx context.Context, sourceCrop []byte, targetCropKey string) (float64, error)
	MatchThreshold() float64
}

// CatalogueStore persists per-user face catalogues and identity rows.
type CatalogueStore interface {
	GetCatalogueFaces(ctx context.Context, userID string) ([]string, error)
	AppendCatalogueFace(ctx context.Context, userID, cropKey string) (storage.AppendOutcome, error)
	CreateIdentity(ctx context.Context, userID, cropKey string, embedding []float32) (*models.Identity, error)
}

// CropStore stores canonical face crops.
type CropStore interface {
	PutObject(ctx context.Context, key string, data []byte, contentType string) error
}

// Resolution is the outcome of resolving one face crop to an identity.
// FaceKey doubles as the identity ID and the canonical crop's object key.
type Resolution struct {
	FaceKey string
	Matched bool
}

// Matcher resolves face crops to identities: a crop either matches an
// existing catalogue entry or becomes a new identity with the crop as its
// canonical image.
type Matcher struct {
	comparer Comparer
	store    CatalogueStore
	crops    CropStore
}

func NewMatcher(comparer Comparer, store CatalogueStore, crops CropStore) *Matcher {
	return &Matcher{comparer: comparer, store: store, crops: crops}
}

// Resolve matches a crop against the user's current catalogue, re-read on
// every call so faces resolved earlier in the same asset are visible.
func (m *Matcher) Resolve(ctx context.Context, userID string, crop []byte) (Resolution, error) {
	catalogue, err := m.store.GetCatalogueFaces(ctx, userID)
	if err != nil {
		return Resolution{}, fmt.Errorf("load catalogue: %w", err)
	}
	return m.ResolveAgainst(ctx, userID, crop, catalogue)
}

// ResolveAgainst matches a crop against a fixed catalogue snapshot. Entries
// are compared in catalogue order and the first one at or above the match
// threshold wins; no best-match search happens.
func (m *Matcher) ResolveAgainst(ctx context.Context, userID string, crop []byte, catalogue []string) (Resolution, error) {
	threshold := m.comparer.MatchThreshold()

	for _, cropKey := range catalogue {
		similarity, err := m.comparer.CompareFaces(ctx, crop, cropKey)
		if err != nil {
			return Resolution{}, fmt.Errorf("compare against %s: %w", cropKey, err)
		}
		if similarity >= threshold {
			observability.FacesMatched.Inc()
			return Resolution{FaceKey: cropKey, Matched: true}, nil
		}
	}

	faceKey, err := m.register(ctx, userID, crop)
	if err != nil {
		return Resolution{}, err
	}
	return Resolution{FaceKey: faceKey, Matched: false}, nil
}

// register stores the crop as a new canonical image and appends it to the
// user's catalogue. The crop is uploaded before the catalogue append so a
// catalogue entry never points at a missing object.
func (m *Matcher) register(ctx context.Context, userID string, crop []byte) (string, error) {
	faceKey := storage.FaceCropKey(userID)

	if err := m.crops.PutObject(ctx, faceKey, crop, "image/jpeg"); err != nil {
		return "", fmt.Errorf("store canonical crop: %w", err)
	}

	outcome, err := m.store.AppendCatalogueFace(ctx, userID, faceKey)
	if err != nil {
		return "", fmt.Errorf("append catalogue face: %w", err)
	}
	if outcome == storage.OutcomeConflict {
		// Another writer created the catalogue between our check and insert.
		// The append path cannot lose against an existing row, so one retry
		// settles it.
		outcome, err = m.store.AppendCatalogueFace(ctx, userID, faceKey)
		if err != nil {
			return "", fmt.Errorf("retry catalogue append: %w", err)
		}
		if outcome == storage.OutcomeConflict {
			return "", fmt.Errorf("append catalogue face %s: persistent conflict", faceKey)
		}
	}

	// Without the identity row the face exists in the catalogue but never in
	// listings or the embedding cache. Fail the face; the caller skips it and
	// the next sighting re-registers cleanly.
	if _, err := m.store.CreateIdentity(ctx, userID, faceKey, nil); err != nil {
		return "", fmt.Errorf("create identity row for %s: %w", faceKey, err)
	}

	observability.IdentitiesCreated.Inc()
	return faceKey, nil
}
