package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/your-org/momentmaker/internal/media"
	"github.com/your-org/momentmaker/internal/models"
	"github.com/your-org/momentmaker/internal/observability"
	"github.com/your-org/momentmaker/internal/queue"
	"github.com/your-org/momentmaker/internal/storage"
)

// JobRunner executes asynchronous video face detection jobs. A job samples
// frames across the whole video, detects faces in each frame and stores the
// full face list in object storage; a completion signal is published either
// way so the indexing side always learns the terminal status.
type JobRunner struct {
	vision   *Service
	db       *storage.PostgresStore
	objects  *storage.MinIOStore
	producer *queue.Producer
}

func NewJobRunner(vision *Service, db *storage.PostgresStore, objects *storage.MinIOStore, producer *queue.Producer) *JobRunner {
	return &JobRunner{
		vision:   vision,
		db:       db,
		objects:  objects,
		producer: producer,
	}
}

// Run processes one detection job to a terminal state. The returned error is
// for logging only; the job row and the completion signal already reflect the
// outcome.
func (r *JobRunner) Run(ctx context.Context, task models.JobTask) error {
	faces, err := r.detect(ctx, task)
	if err != nil {
		slog.Error("detection job failed", "job", task.JobID, "key", task.Key, "error", err)
		r.finish(ctx, task, models.JobStatusFailed, err.Error())
		return err
	}

	data, err := json.Marshal(faces)
	if err != nil {
		r.finish(ctx, task, models.JobStatusFailed, err.Error())
		return fmt.Errorf("marshal faces: %w", err)
	}
	facesKey := storage.JobFacesKey(task.JobID)
	if err := r.objects.PutObject(ctx, facesKey, data, "application/json"); err != nil {
		r.finish(ctx, task, models.JobStatusFailed, err.Error())
		return fmt.Errorf("store face list: %w", err)
	}

	slog.Info("detection job succeeded", "job", task.JobID, "key", task.Key, "faces", len(faces))
	r.finish(ctx, task, models.JobStatusSucceeded, "")
	return nil
}

func (r *JobRunner) detect(ctx context.Context, task models.JobTask) ([]models.VideoFace, error) {
	tmpDir, err := os.MkdirTemp("", "facejob-")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	videoPath := filepath.Join(tmpDir, "input"+filepath.Ext(task.Key))
	if err := r.objects.DownloadToFile(ctx, task.Key, videoPath); err != nil {
		return nil, err
	}

	durationSec, err := media.ProbeDuration(ctx, videoPath)
	if err != nil {
		return nil, err
	}

	fps := r.vision.cfg.SampleFPS
	if fps <= 0 {
		fps = 1
	}
	stepMS := int64(1000 / fps)
	totalMS := int64(durationSec * 1000)

	var faces []models.VideoFace
	for ts := int64(0); ts < totalMS; ts += stepMS {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		frame, err := media.ExtractFrame(ctx, videoPath, ts)
		if err != nil {
			slog.Warn("frame extraction failed, skipping", "job", task.JobID, "ts_ms", ts, "error", err)
			continue
		}

		frameFaces, err := r.detectInFrame(ctx, frame, ts)
		if err != nil {
			return nil, fmt.Errorf("detect at %dms: %w", ts, err)
		}
		faces = append(faces, frameFaces...)
	}

	return faces, nil
}

func (r *JobRunner) detectInFrame(ctx context.Context, frame []byte, ts int64) ([]models.VideoFace, error) {
	details, err := r.vision.DetectFaces(ctx, frame)
	if err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return nil, nil
	}

	img, err := media.DecodeImage(frame)
	if err != nil {
		return nil, err
	}

	faces := make([]models.VideoFace, 0, len(details))
	for _, d := range details {
		face := models.VideoFace{Box: d.Box, TimestampMS: ts}

		// Quality is scored on the face region itself. A face whose crop
		// cannot be taken keeps nil scores and is filtered downstream.
		if crop, err := media.CropFace(img, media.ClampBox(d.Box)); err == nil {
			b := Brightness(crop)
			sh := Sharpness(crop)
			face.Brightness = &b
			face.Sharpness = &sh
		}

		faces = append(faces, face)
	}
	return faces, nil
}

func (r *JobRunner) finish(ctx context.Context, task models.JobTask, status models.JobStatus, errMsg string) {
	if err := r.db.UpdateJobStatus(ctx, task.JobID, status, errMsg); err != nil {
		slog.Error("update job status failed", "job", task.JobID, "error", err)
	}
	observability.DetectionJobs.WithLabelValues(string(status)).Inc()

	completion := models.JobCompletion{
		Status: status,
		JobID:  task.JobID,
		UserID: task.UserID,
		Video:  models.VideoRef{Bucket: task.Bucket, Key: task.Key},
		Error:  errMsg,
	}
	if err := r.producer.PublishJobCompletion(ctx, task.JobID.String(), completion); err != nil {
		slog.Error("publish job completion failed", "job", task.JobID, "error", err)
	}
}
