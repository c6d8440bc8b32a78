package vision

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/your-org/momentmaker/internal/config"
	"github.com/your-org/momentmaker/internal/media"
	"github.com/your-org/momentmaker/internal/models"
	"github.com/your-org/momentmaker/internal/observability"
	"github.com/your-org/momentmaker/internal/storage"
)

// Service is the face analysis capability: it locates faces in images and
// scores the similarity of a face against catalogued canonical crops.
//
// ONNX sessions hold fixed input/output tensors, so all inference runs are
// serialized behind a mutex.
type Service struct {
	detector *Detector
	embedder *Embedder
	db       *storage.PostgresStore
	objects  *storage.MinIOStore
	cfg      config.VisionConfig
	mu       sync.Mutex
}

// InitRuntime initializes the ONNX Runtime environment. Call once per process
// before creating a Service.
func InitRuntime() error {
	ort.SetSharedLibraryPath(onnxLibPath())
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("initialize onnx runtime: %w", err)
	}
	return nil
}

// DestroyRuntime tears down the ONNX Runtime environment.
func DestroyRuntime() {
	_ = ort.DestroyEnvironment()
}

func onnxLibPath() string {
	switch runtime.GOOS {
	case "windows":
		return "onnxruntime.dll"
	case "linux":
		return "libonnxruntime.so"
	case "darwin":
		return "libonnxruntime.dylib"
	default:
		return "onnxruntime.dll"
	}
}

func NewService(cfg config.VisionConfig, db *storage.PostgresStore, objects *storage.MinIOStore) (*Service, error) {
	detector, err := NewDetector(filepath.Join(cfg.ModelsDir, "det_10g.onnx"), 0.5)
	if err != nil {
		return nil, fmt.Errorf("load detector: %w", err)
	}

	embedder, err := NewEmbedder(filepath.Join(cfg.ModelsDir, "w600k_r50.onnx"))
	if err != nil {
		detector.Close()
		return nil, fmt.Errorf("load embedder: %w", err)
	}

	return &Service{
		detector: detector,
		embedder: embedder,
		db:       db,
		objects:  objects,
		cfg:      cfg,
	}, nil
}

func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detector.Close()
	s.embedder.Close()
}

// DetectFaces locates faces in an encoded image and returns them with
// normalized bounding boxes and percent confidence scores.
func (s *Service) DetectFaces(ctx context.Context, imageData []byte) ([]models.FaceDetail, error) {
	img, err := media.DecodeImage(imageData)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	origW := bounds.Dx()
	origH := bounds.Dy()
	if origW == 0 || origH == 0 {
		return nil, fmt.Errorf("detect faces: empty image")
	}

	inW, inH := s.detector.InputSize()
	input := detectorInput(img, inW, inH)

	s.mu.Lock()
	start := time.Now()
	detections, err := s.detector.Detect(input, origW, origH)
	observability.InferenceDuration.WithLabelValues("detect").Observe(time.Since(start).Seconds())
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	faces := make([]models.FaceDetail, 0, len(detections))
	for _, d := range detections {
		conf := float64(d.Confidence) * 100
		faces = append(faces, models.FaceDetail{
			Box: models.BoundingBox{
				Left:   float64(d.BBox[0]) / float64(origW),
				Top:    float64(d.BBox[1]) / float64(origH),
				Width:  float64(d.BBox[2]-d.BBox[0]) / float64(origW),
				Height: float64(d.BBox[3]-d.BBox[1]) / float64(origH),
			},
			Confidence: &conf,
		})
	}
	return faces, nil
}

// EmbedCrop extracts an embedding from an encoded face crop.
func (s *Service) EmbedCrop(ctx context.Context, cropData []byte) ([]float32, error) {
	img, err := media.DecodeImage(cropData)
	if err != nil {
		return nil, err
	}

	inW, inH := s.embedder.InputSize()
	input := embedderInput(img, inW, inH)

	s.mu.Lock()
	defer s.mu.Unlock()
	start := time.Now()
	emb, err := s.embedder.Embed(input)
	observability.InferenceDuration.WithLabelValues("embed").Observe(time.Since(start).Seconds())
	return emb, err
}

// CompareFaces scores how similar a source face crop is to a stored canonical
// crop, as a percent. Canonical crop embeddings are cached in the database the
// first time a crop participates in a comparison.
func (s *Service) CompareFaces(ctx context.Context, sourceCrop []byte, targetCropKey string) (float64, error) {
	sourceEmb, err := s.EmbedCrop(ctx, sourceCrop)
	if err != nil {
		return 0, fmt.Errorf("embed source crop: %w", err)
	}

	targetEmb, err := s.cropEmbedding(ctx, targetCropKey)
	if err != nil {
		return 0, err
	}

	// Map cosine similarity [-1,1] onto a percent scale.
	return 50 * (1 + cosine(sourceEmb, targetEmb)), nil
}

func (s *Service) cropEmbedding(ctx context.Context, cropKey string) ([]float32, error) {
	emb, err := s.db.GetCropEmbedding(ctx, cropKey)
	if err != nil {
		return nil, fmt.Errorf("load cached embedding %s: %w", cropKey, err)
	}
	if emb != nil {
		return emb, nil
	}

	data, err := s.objects.GetObject(ctx, cropKey)
	if err != nil {
		return nil, fmt.Errorf("fetch canonical crop %s: %w", cropKey, err)
	}

	emb, err = s.EmbedCrop(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("embed canonical crop %s: %w", cropKey, err)
	}

	if err := s.db.SetCropEmbedding(ctx, cropKey, emb); err != nil {
		slog.Warn("cache crop embedding failed", "crop", cropKey, "error", err)
	}
	return emb, nil
}

// MatchThreshold is the percent similarity at which two crops count as the
// same person.
func (s *Service) MatchThreshold() float64 {
	return s.cfg.MatchSimilarity
}
