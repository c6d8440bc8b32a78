package moment

import (
	"slices"
	"testing"
)

func argAfter(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

func TestConcatArgsReencodeAndClamp(t *testing.T) {
	e := NewFFmpegEncoder(1280, 720, 24)
	args := e.concatArgs("list.txt", "out.mp4", "", 45)

	// Stream copy would clamp on packet boundaries and overshoot the limit.
	if slices.Contains(args, "copy") {
		t.Errorf("args = %v; merge must re-encode, not stream-copy", args)
	}
	if got := argAfter(args, "-c:v"); got != "libx264" {
		t.Errorf("-c:v = %q; want libx264", got)
	}
	if got := argAfter(args, "-t"); got != "45" {
		t.Errorf("-t = %q; want 45", got)
	}
}

func TestConcatArgsSong(t *testing.T) {
	e := NewFFmpegEncoder(1280, 720, 24)

	silent := e.concatArgs("list.txt", "out.mp4", "", 60)
	for _, flag := range []string{"-stream_loop", "-shortest", "-c:a"} {
		if slices.Contains(silent, flag) {
			t.Errorf("silent args contain %s: %v", flag, silent)
		}
	}

	withSong := e.concatArgs("list.txt", "out.mp4", "song.mp3", 60)
	if got := argAfter(withSong, "-stream_loop"); got != "-1" {
		t.Errorf("-stream_loop = %q; want -1 (loop until -shortest)", got)
	}
	if !slices.Contains(withSong, "-shortest") {
		t.Errorf("song args missing -shortest: %v", withSong)
	}
	if got := argAfter(withSong, "-map"); got != "0:v:0" {
		t.Errorf("first -map = %q; want 0:v:0", got)
	}
}

func TestVideoClipArgsTrim(t *testing.T) {
	e := NewFFmpegEncoder(1280, 720, 24)

	whole := e.videoClipArgs("in.mp4", "out.mp4", nil)
	if slices.Contains(whole, "-ss") || slices.Contains(whole, "-to") {
		t.Errorf("untrimmed args contain a seek: %v", whole)
	}

	trimmed := e.videoClipArgs("in.mp4", "out.mp4", &Range{StartMS: 1500, EndMS: 4200})
	if got := argAfter(trimmed, "-ss"); got != "1.500" {
		t.Errorf("-ss = %q; want 1.500", got)
	}
	if got := argAfter(trimmed, "-to"); got != "4.200" {
		t.Errorf("-to = %q; want 4.200", got)
	}
}
