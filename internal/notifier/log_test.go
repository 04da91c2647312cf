package notifier

import (
	"context"
	"strings"
	"testing"

	"talento/internal/model"

	"github.com/rs/zerolog"
)

func TestLogChannelWritesNotification(t *testing.T) {
	var buf strings.Builder
	logger := zerolog.New(&buf)
	ch := NewLogChannel(&logger)

	n := model.Notification{Title: "Админ зөвшөөрлөө", Type: model.NotifySuccess, Link: "/jobs/1"}
	if err := ch.Deliver(context.Background(), Recipient{UserID: "u-42"}, n); err != nil {
		t.Fatalf("Deliver error: %v", err)
	}

	logged := buf.String()
	if !strings.Contains(logged, "u-42") || !strings.Contains(logged, "SUCCESS") || !strings.Contains(logged, "/jobs/1") {
		t.Fatalf("log output missing notification info: %s", logged)
	}
}
