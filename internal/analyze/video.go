package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/your-org/momentmaker/internal/config"
	"github.com/your-org/momentmaker/internal/faces"
	"github.com/your-org/momentmaker/internal/media"
	"github.com/your-org/momentmaker/internal/models"
	"github.com/your-org/momentmaker/internal/observability"
	"github.com/your-org/momentmaker/internal/queue"
	"github.com/your-org/momentmaker/internal/storage"
	"github.com/your-org/momentmaker/internal/vision"
)

// Notifier publishes detection job tasks and per-user UI events.
type Notifier interface {
	PublishJobTask(ctx context.Context, jobID string, data interface{}) error
	PublishEvent(event queue.Event) error
}

// Analyzer is the upload-side of the pipeline: it routes uploaded assets,
// runs still images synchronously and drives videos through asynchronous
// detection jobs.
type Analyzer struct {
	cfg      config.VisionConfig
	db       *storage.PostgresStore
	objects  *storage.MinIOStore
	producer Notifier
	vision   *vision.Service
	matcher  *faces.Matcher
	index    *faces.Index
}

func NewAnalyzer(cfg config.VisionConfig, db *storage.PostgresStore, objects *storage.MinIOStore, producer Notifier, visionSvc *vision.Service, matcher *faces.Matcher, index *faces.Index) *Analyzer {
	return &Analyzer{
		cfg:      cfg,
		db:       db,
		objects:  objects,
		producer: producer,
		vision:   visionSvc,
		matcher:  matcher,
		index:    index,
	}
}

// HandleUpload routes one asset-uploaded signal. Face crops and assembled
// moments pass through untouched.
func (a *Analyzer) HandleUpload(ctx context.Context, signal models.UploadSignal) error {
	cls := Classify(signal.Key)
	if !cls.Analyzable {
		slog.Debug("upload not analyzable", "key", signal.Key)
		return nil
	}

	userID := signal.UserID
	if userID == "" {
		userID = cls.UserID
	}

	if _, err := a.db.RegisterAsset(ctx, userID, cls.Kind, signal.Key); err != nil {
		return fmt.Errorf("register asset %s: %w", signal.Key, err)
	}

	switch cls.Kind {
	case models.MediaKindImage:
		return a.AnalyzeImage(ctx, userID, signal.Key)
	case models.MediaKindVideo:
		return a.startVideoJob(ctx, userID, signal)
	case models.MediaKindAudio:
		observability.AssetsAnalyzed.WithLabelValues("audio").Inc()
		return nil
	}
	return nil
}

// startVideoJob records a submitted job and hands the heavy detection work to
// the job queue. The upload signal is acked as soon as the task is durable.
func (a *Analyzer) startVideoJob(ctx context.Context, userID string, signal models.UploadSignal) error {
	job, err := a.db.CreateJob(ctx, userID, signal.Key)
	if err != nil {
		return fmt.Errorf("create detection job: %w", err)
	}

	task := models.JobTask{
		JobID:  job.ID,
		UserID: userID,
		Bucket: signal.Bucket,
		Key:    signal.Key,
	}
	if err := a.producer.PublishJobTask(ctx, job.ID.String(), task); err != nil {
		return fmt.Errorf("publish job task: %w", err)
	}

	slog.Info("video detection job submitted", "job", job.ID, "key", signal.Key)
	return nil
}

// HandleJobCompletion indexes the faces a finished detection job found. The
// whole job resolves against one catalogue snapshot taken up front; faces of
// a brand-new person seen many times in one video may each mint an identity,
// and later merging is out of scope.
func (a *Analyzer) HandleJobCompletion(ctx context.Context, completion models.JobCompletion) error {
	if completion.Status == models.JobStatusFailed {
		slog.Warn("detection job failed, nothing to index", "job", completion.JobID, "key", completion.Video.Key, "error", completion.Error)
		a.publishEvent(queue.Event{
			Type:   "job_failed",
			UserID: completion.UserID,
			Data:   map[string]any{"jobId": completion.JobID.String(), "error": completion.Error},
		})
		return nil
	}

	allFaces, err := a.loadJobFaces(ctx, completion.JobID)
	if err != nil {
		return err
	}

	usable := filterQuality(allFaces, a.cfg.MinBrightness, a.cfg.MinSharpness)
	if len(usable) == 0 {
		slog.Info("no usable faces in video", "job", completion.JobID, "detected", len(allFaces))
		observability.AssetsAnalyzed.WithLabelValues("video").Inc()
		return nil
	}

	tmpDir, err := os.MkdirTemp("", "index-")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	videoPath := filepath.Join(tmpDir, "video"+filepath.Ext(completion.Video.Key))
	if err := a.objects.DownloadToFile(ctx, completion.Video.Key, videoPath); err != nil {
		return err
	}

	snapshot, err := a.db.GetCatalogueFaces(ctx, completion.UserID)
	if err != nil {
		return fmt.Errorf("load catalogue snapshot: %w", err)
	}

	indexed := 0
	for _, face := range usable {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		observability.FacesDetected.WithLabelValues("video").Inc()

		if err := a.indexVideoFace(ctx, completion, videoPath, face, snapshot); err != nil {
			slog.Warn("video face skipped", "job", completion.JobID, "ts_ms", face.TimestampMS, "error", err)
			continue
		}
		indexed++
	}

	slog.Info("video indexed", "job", completion.JobID, "key", completion.Video.Key, "faces", indexed)
	observability.AssetsAnalyzed.WithLabelValues("video").Inc()

	// The stored face list is only needed between detection and indexing.
	if err := a.objects.DeleteObject(ctx, storage.JobFacesKey(completion.JobID)); err != nil {
		slog.Warn("delete job face list failed", "job", completion.JobID, "error", err)
	}


	a.publishEvent(queue.Event{
		Type:   "job_succeeded",
		UserID: completion.UserID,
		Data:   map[string]any{"jobId": completion.JobID.String(), "faces": indexed},
	})
	return nil
}

func (a *Analyzer) indexVideoFace(ctx context.Context, completion models.JobCompletion, videoPath string, face models.VideoFace, snapshot []string) error {
	frame, err := media.ExtractFrame(ctx, videoPath, face.TimestampMS)
	if err != nil {
		return err
	}
	img, err := media.DecodeImage(frame)
	if err != nil {
		return err
	}

	ts := face.TimestampMS
	loc := models.Location{AssetKey: completion.Video.Key, TimestampMS: &ts}
	return a.processFaceAgainst(ctx, completion.UserID, img, face.Box, loc, snapshot, false)
}

func (a *Analyzer) loadJobFaces(ctx context.Context, jobID uuid.UUID) ([]models.VideoFace, error) {
	data, err := a.objects.GetObject(ctx, storage.JobFacesKey(jobID))
	if err != nil {
		return nil, fmt.Errorf("load job face list: %w", err)
	}

	var result []models.VideoFace
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parse job face list: %w", err)
	}
	return result, nil
}

// filterQuality keeps faces bright and sharp enough to crop usefully. A face
// missing either score is dropped, never defaulted to pass.
func filterQuality(all []models.VideoFace, minBrightness, minSharpness float64) []models.VideoFace {
	var usable []models.VideoFace
	for _, f := range all {
		if f.Brightness == nil || f.Sharpness == nil {
			continue
		}
		if *f.Brightness > minBrightness && *f.Sharpness > minSharpness {
			usable = append(usable, f)
		}
	}
	return usable
}
