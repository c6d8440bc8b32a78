package moment

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/your-org/momentmaker/internal/config"
	"github.com/your-org/momentmaker/internal/faces"
	"github.com/your-org/momentmaker/internal/models"
	"github.com/your-org/momentmaker/internal/queue"
	"github.com/your-org/momentmaker/internal/storage"
)

// Request describes one moment to build. An empty FaceIDs list means "use
// everything". TimeLimit is the duration budget in seconds and is validated
// as present before the request reaches this package.
type Request struct {
	UserID    string
	FaceIDs   []string
	TimeLimit int
	Song      string
}

// Service builds moments end to end: select clips, fetch them, encode,
// upload, record.
type Service struct {
	cfg       config.MomentConfig
	db        *storage.PostgresStore
	objects   *storage.MinIOStore
	index     *faces.Index
	assembler *Assembler
	producer  *queue.Producer
}

func NewService(cfg config.MomentConfig, db *storage.PostgresStore, objects *storage.MinIOStore, index *faces.Index, assembler *Assembler, producer *queue.Producer) *Service {
	return &Service{
		cfg:       cfg,
		db:        db,
		objects:   objects,
		index:     index,
		assembler: assembler,
		producer:  producer,
	}
}

// CreateMoment assembles one highlight video and returns the stored moment.
func (s *Service) CreateMoment(ctx context.Context, req Request) (*models.Moment, error) {
	assets, err := s.db.ListAssets(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}

	visual := 0
	for _, a := range assets {
		if a.Kind == models.MediaKindImage || a.Kind == models.MediaKindVideo {
			visual++
		}
	}
	if visual == 0 {
		return nil, ErrNoMedia
	}

	filtered := len(req.FaceIDs) > 0
	var occurrences []models.Occurrence
	if filtered {
		occurrences, err = s.index.Lookup(ctx, req.UserID, req.FaceIDs)
		if err != nil {
			return nil, err
		}
	}

	candidates, err := SelectClips(assets, occurrences, filtered, s.cfg.ClusterGap, s.cfg.ClusterBuffer)
	if err != nil {
		return nil, err
	}

	workDir, err := os.MkdirTemp("", "moment-")
	if err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	sources, err := s.download(ctx, workDir, candidates)
	if err != nil {
		return nil, err
	}

	songPath := s.resolveSong(ctx, workDir, req.UserID, req.Song)

	outPath, err := s.assembler.Assemble(ctx, workDir, sources, songPath, req.TimeLimit)
	if err != nil {
		return nil, err
	}

	duration, err := s.assembler.encoder.Probe(ctx, outPath)
	if err != nil {
		slog.Warn("probe assembled moment failed", "error", err)
		duration = 0
	}

	key := storage.MomentKey(req.UserID, fmt.Sprintf("final_video_%s.mp4", uuid.New()))
	if err := s.objects.UploadFromFile(ctx, key, outPath, "video/mp4"); err != nil {
		return nil, fmt.Errorf("upload moment: %w", err)
	}

	m, err := s.db.CreateMoment(ctx, req.UserID, key, duration)
	if err != nil {
		return nil, fmt.Errorf("record moment: %w", err)
	}

	slog.Info("moment assembled", "user", req.UserID, "key", key, "clips", len(sources), "duration_s", duration)
	s.notifyReady(m)
	return m, nil
}

// download fetches every candidate asset into the work dir. Any missing asset
// aborts the assembly.
func (s *Service) download(ctx context.Context, workDir string, candidates []Candidate) ([]SourceClip, error) {
	sources := make([]SourceClip, 0, len(candidates))
	for i, c := range candidates {
		path := filepath.Join(workDir, fmt.Sprintf("src_%03d%s", i, filepath.Ext(c.AssetKey)))
		if err := s.objects.DownloadToFile(ctx, c.AssetKey, path); err != nil {
			return nil, fmt.Errorf("fetch clip source %s: %w", c.AssetKey, err)
		}
		sources = append(sources, SourceClip{Path: path, Kind: c.Kind, Ranges: c.Ranges})
	}
	return sources, nil
}

// resolveSong fetches the requested backing track. A missing or unfetchable
// song degrades to a silent moment rather than failing the assembly.
func (s *Service) resolveSong(ctx context.Context, workDir, userID, song string) string {
	if song == "" {
		return ""
	}

	path := filepath.Join(workDir, "song.mp3")
	if err := s.objects.DownloadToFile(ctx, storage.SongKey(userID, song), path); err != nil {
		slog.Warn("song unavailable, assembling silent moment", "song", song, "error", err)
		return ""
	}
	return path
}

func (s *Service) notifyReady(m *models.Moment) {
	if s.producer == nil {
		return
	}
	event := queue.Event{
		Type:   "moment_ready",
		UserID: m.UserID,
		Data:   map[string]any{"momentId": m.ID.String(), "file": m.ObjectKey},
	}
	if err := s.producer.PublishEvent(event); err != nil {
		slog.Warn("publish moment event failed", "error", err)
	}
}
