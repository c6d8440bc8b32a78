package analyze

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/your-org/momentmaker/internal/config"
	"github.com/your-org/momentmaker/internal/models"
	"github.com/your-org/momentmaker/internal/queue"
)

type fakeNotifier struct {
	tasks  []string
	events []queue.Event
}

func (f *fakeNotifier) PublishJobTask(ctx context.Context, jobID string, data interface{}) error {
	f.tasks = append(f.tasks, jobID)
	return nil
}

func (f *fakeNotifier) PublishEvent(event queue.Event) error {
	f.events = append(f.events, event)
	return nil
}

func TestJobFailureNotifiesUser(t *testing.T) {
	notifier := &fakeNotifier{}
	a := NewAnalyzer(config.VisionConfig{}, nil, nil, notifier, nil, nil, nil)

	completion := models.JobCompletion{
		Status: models.JobStatusFailed,
		JobID:  uuid.New(),
		UserID: "u1",
		Video:  models.VideoRef{Key: "user-media/u1/video/v.mp4"},
		Error:  "probe input: exit status 1",
	}

	// A failed job indexes nothing but still must surface to the user.
	if err := a.HandleJobCompletion(context.Background(), completion); err != nil {
		t.Fatalf("HandleJobCompletion: %v", err)
	}

	if len(notifier.events) != 1 {
		t.Fatalf("events = %d; want one job_failed event", len(notifier.events))
	}
	ev := notifier.events[0]
	if ev.Type != "job_failed" || ev.UserID != "u1" {
		t.Errorf("event = %+v; want job_failed for u1", ev)
	}
	if ev.Data["jobId"] != completion.JobID.String() {
		t.Errorf("event jobId = %v; want %s", ev.Data["jobId"], completion.JobID)
	}
	if ev.Data["error"] != completion.Error {
		t.Errorf("event error = %v; want job error message", ev.Data["error"])
	}
}
