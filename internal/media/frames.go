package media

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
)

// ExtractFrame produces a single PNG still from a local video file at the
// given millisecond timestamp.
func ExtractFrame(ctx context.Context, videoPath string, timestampMS int64) ([]byte, error) {
	seek := fmt.Sprintf("%.3f", float64(timestampMS)/1000)

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-hide_banner",
		"-loglevel", "error",
		"-ss", seek,
		"-i", videoPath,
		"-vframes", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"pipe:1",
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		slog.Warn("ffmpeg stderr", "output", stderr.String())
		return nil, fmt.Errorf("extract frame at %dms: %w", timestampMS, err)
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("extract frame at %dms: empty output", timestampMS)
	}
	return stdout.Bytes(), nil
}

// ProbeDuration returns a local media file's duration in seconds.
func ProbeDuration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)

	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("probe %s: %w", path, err)
	}

	dur, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration of %s: %w", path, err)
	}
	return dur, nil
}
