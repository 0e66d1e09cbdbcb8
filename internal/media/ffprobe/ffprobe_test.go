package ffprobe

import "testing"

func TestDurationSeconds(t *testing.T) {
	r := Result{Format: Format{Duration: "123.456"}}
	if got := r.DurationSeconds(); got != 123.456 {
		t.Fatalf("expected 123.456, got %v", got)
	}
	r = Result{Format: Format{Duration: "garbage"}}
	if got := r.DurationSeconds(); got != 0 {
		t.Fatalf("expected 0 for malformed duration, got %v", got)
	}
	r = Result{}
	if got := r.DurationSeconds(); got != 0 {
		t.Fatalf("expected 0 for empty duration, got %v", got)
	}
}

func TestDetectKind(t *testing.T) {
	video := Result{Streams: []Stream{
		{CodecType: "video", CodecName: "h264"},
		{CodecType: "audio", CodecName: "aac"},
	}}
	kind, err := video.DetectKind()
	if err != nil || kind != KindVideo {
		t.Fatalf("expected video, got %v %v", kind, err)
	}

	// Cover art must not promote an mp3 to a video source.
	audio := Result{Streams: []Stream{
		{CodecType: "video", CodecName: "mjpeg"},
		{CodecType: "audio", CodecName: "mp3"},
	}}
	kind, err = audio.DetectKind()
	if err != nil || kind != KindAudio {
		t.Fatalf("expected audio, got %v %v", kind, err)
	}

	empty := Result{}
	if _, err := empty.DetectKind(); err == nil {
		t.Fatal("expected error for streamless container")
	}
}
