package notifier

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"talento/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherRecordsThenFlushes(t *testing.T) {
	t.Parallel()

	w := &stubWriter{}
	ch := &stubChannel{}
	d := NewDispatcher(zerolog.New(io.Discard), NewDedup(DedupConfig{}), ch)

	p, err := d.Record(context.Background(), w, Recipient{UserID: "u1"}, RejectedNotice("Backend"))
	require.NoError(t, err)
	require.Len(t, w.created, 1)
	assert.Equal(t, "u1", w.created[0].UserID)
	assert.Equal(t, model.NotifyError, w.created[0].Type)
	assert.Equal(t, 0, ch.calls, "channels must wait for Flush")

	d.Flush(context.Background(), p)
	assert.Equal(t, 1, ch.calls)
}

func TestDispatcherSuppressesDuplicates(t *testing.T) {
	t.Parallel()

	w := &stubWriter{}
	ch := &stubChannel{}
	d := NewDispatcher(zerolog.New(io.Discard), NewDedup(DedupConfig{Window: "1h"}), ch)

	to := Recipient{UserID: "u1"}
	require.NoError(t, d.Send(context.Background(), w, to, EmployerApprovedNotice("Backend")))
	require.NoError(t, d.Send(context.Background(), w, to, EmployerApprovedNotice("Backend")))
	require.NoError(t, d.Send(context.Background(), w, Recipient{UserID: "u2"}, EmployerApprovedNotice("Backend")))

	assert.Len(t, w.created, 3, "in-app rows are always written")
	assert.Equal(t, 2, ch.calls)
}

func TestDispatcherRequiresRecipientAndPropagatesWriteError(t *testing.T) {
	t.Parallel()

	d := NewDispatcher(zerolog.New(io.Discard), nil)
	_, err := d.Record(context.Background(), &stubWriter{}, Recipient{}, RejectedNotice("x"))
	assert.Error(t, err)

	boom := errors.New("boom")
	_, err = d.Record(context.Background(), &stubWriter{err: boom}, Recipient{UserID: "u"}, RejectedNotice("x"))
	assert.ErrorIs(t, err, boom)
}

func TestChannelErrorsAreSwallowed(t *testing.T) {
	t.Parallel()

	ch := &stubChannel{err: errors.New("smtp down")}
	d := NewDispatcher(zerolog.New(io.Discard), nil, ch)
	require.NoError(t, d.Send(context.Background(), &stubWriter{}, Recipient{UserID: "u"}, RejectedNotice("x")))
	assert.Equal(t, 1, ch.calls)
}

func TestStatusNoticeCoversOnlyOutcomeStatuses(t *testing.T) {
	t.Parallel()

	for _, s := range []model.ApplicationStatus{model.StatusAdminApproved, model.StatusApproved} {
		n, ok := StatusNotice(s, "Backend")
		require.True(t, ok)
		assert.Equal(t, model.NotifySuccess, n.Type)
		assert.Contains(t, n.Message, "Backend")
	}
	n, ok := StatusNotice(model.StatusRejected, "Backend")
	require.True(t, ok)
	assert.Equal(t, model.NotifyError, n.Type)

	for _, s := range []model.ApplicationStatus{model.StatusPending, model.StatusEmployerApproved} {
		_, ok := StatusNotice(s, "Backend")
		assert.False(t, ok, s)
	}
}

func TestDedupWindowAndBound(t *testing.T) {
	t.Parallel()

	d := NewDedup(DedupConfig{MaxEntries: 2, Window: "1m"})
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return now }

	assert.False(t, d.Seen("a"))
	assert.True(t, d.Seen("a"))

	now = now.Add(2 * time.Minute)
	assert.False(t, d.Seen("a"), "entries older than the window are forgotten")

	now = now.Add(time.Second)
	assert.False(t, d.Seen("b"))
	now = now.Add(time.Second)
	assert.False(t, d.Seen("c"))
	assert.Equal(t, 2, d.Len(), "cache never grows past its bound")
	assert.False(t, d.Seen("a"), "oldest entry was dropped to make room")

	now = now.Add(time.Hour)
	assert.Equal(t, 2, d.Evict())
	assert.Equal(t, 0, d.Len())
}

// --- stubs ---

type stubWriter struct {
	created []model.Notification
	err     error
}

func (s *stubWriter) CreateNotification(ctx context.Context, n *model.Notification) error {
	if s.err != nil {
		return s.err
	}
	n.ID = "n" + string(rune('0'+len(s.created)))
	s.created = append(s.created, *n)
	return nil
}

type stubChannel struct {
	calls int
	err   error
}

func (s *stubChannel) Name() string { return "stub" }

func (s *stubChannel) Deliver(ctx context.Context, to Recipient, n model.Notification) error {
	s.calls++
	return s.err
}
