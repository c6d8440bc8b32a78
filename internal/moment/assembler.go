package moment

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/your-org/momentmaker/internal/models"
	"github.com/your-org/momentmaker/internal/observability"
)

// Encoder produces uniformly formatted clips and joins them. All paths are
// local files.
type Encoder interface {
	// VideoClip re-encodes a video into the output format, optionally trimmed
	// to one range.
	VideoClip(ctx context.Context, src, dst string, trim *Range) error
	// ImageClip turns a photo into a still clip of the given duration.
	ImageClip(ctx context.Context, src, dst string, durationSec int) error
	// Concat joins the clips listed in listPath, mixing in an optional looped
	// audio track and clamping the result to limitSec seconds.
	Concat(ctx context.Context, listPath, dst, songPath string, limitSec int) error
	// Probe returns a file's duration in seconds.
	Probe(ctx context.Context, path string) (float64, error)
}

// SourceClip is one downloaded asset awaiting encoding.
type SourceClip struct {
	Path   string
	Kind   models.MediaKind
	Ranges []Range
}

// Assembler turns selected clips into one moment video. Any single encoding
// failure aborts the whole assembly; a moment with silently missing clips
// would not be the moment the caller asked for.
type Assembler struct {
	encoder       Encoder
	imageDuration int
}

func NewAssembler(encoder Encoder, imageDurationSec int) *Assembler {
	return &Assembler{encoder: encoder, imageDuration: imageDurationSec}
}

// Assemble encodes every source into workDir, shuffles the encoded clips once
// and concatenates them. Returns the path of the finished video.
func (a *Assembler) Assemble(ctx context.Context, workDir string, sources []SourceClip, songPath string, limitSec int) (string, error) {
	if limitSec <= 0 {
		return "", ErrEmptyAssembly
	}

	start := time.Now()

	var encoded []string
	for i, src := range sources {
		paths, err := a.encodeSource(ctx, workDir, i, src)
		if err != nil {
			return "", err
		}
		encoded = append(encoded, paths...)
	}
	if len(encoded) == 0 {
		return "", ErrEmptyAssembly
	}

	rand.Shuffle(len(encoded), func(i, j int) {
		encoded[i], encoded[j] = encoded[j], encoded[i]
	})

	listPath := filepath.Join(workDir, "clips.txt")
	if err := writeConcatList(listPath, encoded); err != nil {
		return "", err
	}

	outPath := filepath.Join(workDir, "moment.mp4")
	if err := a.encoder.Concat(ctx, listPath, outPath, songPath, limitSec); err != nil {
		return "", fmt.Errorf("concatenate clips: %w", err)
	}

	observability.AssemblyDuration.Observe(time.Since(start).Seconds())
	observability.ClipsAssembled.Add(float64(len(encoded)))
	return outPath, nil
}

func (a *Assembler) encodeSource(ctx context.Context, workDir string, idx int, src SourceClip) ([]string, error) {
	switch src.Kind {
	case models.MediaKindImage:
		dst := filepath.Join(workDir, fmt.Sprintf("clip_%03d.mp4", idx))
		if err := a.encoder.ImageClip(ctx, src.Path, dst, a.imageDuration); err != nil {
			return nil, fmt.Errorf("encode image clip %s: %w", src.Path, err)
		}
		return []string{dst}, nil

	case models.MediaKindVideo:
		if len(src.Ranges) == 0 {
			dst := filepath.Join(workDir, fmt.Sprintf("clip_%03d.mp4", idx))
			if err := a.encoder.VideoClip(ctx, src.Path, dst, nil); err != nil {
				return nil, fmt.Errorf("encode video clip %s: %w", src.Path, err)
			}
			return []string{dst}, nil
		}

		paths := make([]string, 0, len(src.Ranges))
		for ri, r := range src.Ranges {
			trim := r
			dst := filepath.Join(workDir, fmt.Sprintf("clip_%03d_%02d.mp4", idx, ri))
			if err := a.encoder.VideoClip(ctx, src.Path, dst, &trim); err != nil {
				return nil, fmt.Errorf("encode trimmed clip %s [%d-%d]: %w", src.Path, r.StartMS, r.EndMS, err)
			}
			paths = append(paths, dst)
		}
		return paths, nil
	}
	return nil, fmt.Errorf("unsupported clip kind %q", src.Kind)
}

// writeConcatList emits the ffmpeg concat demuxer list format.
func writeConcatList(path string, clips []string) error {
	var b strings.Builder
	for _, c := range clips {
		fmt.Fprintf(&b, "file '%s'\n", c)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}
	return nil
}
