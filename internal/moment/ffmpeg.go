package moment

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"

	"github.com/your-org/momentmaker/internal/media"
)

// FFmpegEncoder shells out to ffmpeg. Every clip is letterboxed into the
// output frame: scaled down to fit, then padded with black bars so mixed
// portrait and landscape sources concatenate cleanly.
type FFmpegEncoder struct {
	width  int
	height int
	fps    int
}

func NewFFmpegEncoder(width, height, fps int) *FFmpegEncoder {
	return &FFmpegEncoder{width: width, height: height, fps: fps}
}

func (e *FFmpegEncoder) letterbox() string {
	return fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2:color=black",
		e.width, e.height, e.width, e.height,
	)
}

func (e *FFmpegEncoder) VideoClip(ctx context.Context, src, dst string, trim *Range) error {
	return runFFmpeg(ctx, e.videoClipArgs(src, dst, trim))
}

func (e *FFmpegEncoder) videoClipArgs(src, dst string, trim *Range) []string {
	args := []string{"-hide_banner", "-loglevel", "error", "-y"}

	if trim != nil {
		args = append(args,
			"-ss", msToSeconds(trim.StartMS),
			"-to", msToSeconds(trim.EndMS),
		)
	}

	return append(args,
		"-i", src,
		"-vf", e.letterbox(),
		"-r", strconv.Itoa(e.fps),
		"-c:v", "libx264",
		"-preset", "ultrafast",
		"-pix_fmt", "yuv420p",
		"-an",
		dst,
	)
}

func (e *FFmpegEncoder) ImageClip(ctx context.Context, src, dst string, durationSec int) error {
	args := []string{
		"-hide_banner", "-loglevel", "error", "-y",
		"-loop", "1",
		"-i", src,
		"-t", strconv.Itoa(durationSec),
		"-vf", e.letterbox(),
		"-r", strconv.Itoa(e.fps),
		"-c:v", "libx264",
		"-preset", "ultrafast",
		"-pix_fmt", "yuv420p",
		"-an",
		dst,
	}
	return runFFmpeg(ctx, args)
}

// Concat joins pre-encoded clips with the concat demuxer. With a song the
// audio loops under the video and -shortest stops it at the video's end; the
// whole output is clamped to limitSec either way. The merge re-encodes so
// the -t clamp cuts on an exact frame instead of the next packet boundary.
func (e *FFmpegEncoder) Concat(ctx context.Context, listPath, dst, songPath string, limitSec int) error {
	return runFFmpeg(ctx, e.concatArgs(listPath, dst, songPath, limitSec))
}

func (e *FFmpegEncoder) concatArgs(listPath, dst, songPath string, limitSec int) []string {
	args := []string{
		"-hide_banner", "-loglevel", "error", "-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
	}

	if songPath != "" {
		args = append(args,
			"-stream_loop", "-1",
			"-i", songPath,
			"-map", "0:v:0",
			"-map", "1:a:0",
			"-c:a", "aac",
			"-shortest",
		)
	}

	return append(args,
		"-c:v", "libx264",
		"-preset", "ultrafast",
		"-pix_fmt", "yuv420p",
		"-t", strconv.Itoa(limitSec),
		dst,
	)
}

func (e *FFmpegEncoder) Probe(ctx context.Context, path string) (float64, error) {
	return media.ProbeDuration(ctx, path)
}

func runFFmpeg(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		slog.Warn("ffmpeg stderr", "output", stderr.String())
		return fmt.Errorf("ffmpeg: %w", err)
	}
	return nil
}

func msToSeconds(ms int64) string {
	return fmt.Sprintf("%.3f", float64(ms)/1000)
}
