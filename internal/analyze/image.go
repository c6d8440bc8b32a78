package analyze

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/your-org/momentmaker/internal/faces"
	"github.com/your-org/momentmaker/internal/media"
	"github.com/your-org/momentmaker/internal/models"
	"github.com/your-org/momentmaker/internal/observability"
	"github.com/your-org/momentmaker/internal/queue"
)

// AnalyzeImage runs the synchronous still-image flow: detect faces, crop each
// one, resolve it to an identity and record the sighting. A failure on one
// face never blocks the others.
func (a *Analyzer) AnalyzeImage(ctx context.Context, userID, key string) error {
	data, err := a.objects.GetObject(ctx, key)
	if err != nil {
		return err
	}

	details, err := a.vision.DetectFaces(ctx, data)
	if err != nil {
		return fmt.Errorf("detect faces in %s: %w", key, err)
	}

	img, err := media.DecodeImage(data)
	if err != nil {
		return err
	}

	indexed := 0
	for _, d := range details {
		// Faces without a confidence score are dropped, not defaulted.
		if d.Confidence == nil || *d.Confidence <= a.cfg.MinConfidence {
			continue
		}
		observability.FacesDetected.WithLabelValues("image").Inc()

		if err := a.processFace(ctx, userID, img, d.Box, models.Location{AssetKey: key}); err != nil {
			slog.Warn("face skipped", "key", key, "error", err)
			continue
		}
		indexed++
	}

	slog.Info("image analyzed", "key", key, "faces", indexed)
	observability.AssetsAnalyzed.WithLabelValues("image").Inc()
	return nil
}

// processFace crops one face out of a decoded source image and feeds it
// through identity resolution and occurrence indexing. snapshot selects which
// catalogue the matcher compares against: nil re-reads the latest catalogue,
// which is the behavior the still-image flow wants.
func (a *Analyzer) processFace(ctx context.Context, userID string, img image.Image, box models.BoundingBox, loc models.Location) error {
	return a.processFaceAgainst(ctx, userID, img, box, loc, nil, true)
}

func (a *Analyzer) processFaceAgainst(ctx context.Context, userID string, img image.Image, box models.BoundingBox, loc models.Location, snapshot []string, refetch bool) error {
	crop, err := media.CropFace(img, media.ClampBox(box))
	if err != nil {
		if errors.Is(err, media.ErrBadGeometry) {
			return fmt.Errorf("unusable face geometry: %w", err)
		}
		return err
	}

	cropData, err := media.EncodeJPEG(crop, 90)
	if err != nil {
		return err
	}

	var resolution faces.Resolution
	if refetch {
		resolution, err = a.matcher.Resolve(ctx, userID, cropData)
	} else {
		resolution, err = a.matcher.ResolveAgainst(ctx, userID, cropData, snapshot)
	}
	if err != nil {
		return fmt.Errorf("resolve identity: %w", err)
	}

	if err := a.index.Record(ctx, userID, resolution.FaceKey, loc); err != nil {
		return err
	}

	a.notify(resolution, userID, loc)
	return nil
}

func (a *Analyzer) notify(res faces.Resolution, userID string, loc models.Location) {
	if !res.Matched {
		a.publishEvent(queue.Event{
			Type:   "identity_created",
			UserID: userID,
			Data:   map[string]any{"faceId": res.FaceKey},
		})
	}
	a.publishEvent(queue.Event{
		Type:   "face_indexed",
		UserID: userID,
		Data:   map[string]any{"faceId": res.FaceKey, "assetKey": loc.AssetKey},
	})
}

func (a *Analyzer) publishEvent(event queue.Event) {
	if a.producer == nil {
		return
	}
	if err := a.producer.PublishEvent(event); err != nil {
		slog.Warn("publish event failed", "type", event.Type, "error", err)
	}
}
