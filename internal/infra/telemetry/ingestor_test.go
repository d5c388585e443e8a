package telemetry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/yanqian/tapmon/internal/domain/auth"
	"github.com/yanqian/tapmon/internal/domain/vitals"
	apperrors "github.com/yanqian/tapmon/pkg/errors"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestUserSegment(t *testing.T) {
	idx, err := userSegment("tapmon/users/+/vitals")
	require.NoError(t, err)
	require.Equal(t, 2, idx)

	for _, bad := range []string{"tapmon/users/vitals", "tapmon/+/+/vitals", "tapmon/users/#"} {
		_, err := userSegment(bad)
		require.Error(t, err, bad)
	}
}

func TestHandleMessageRecordsReading(t *testing.T) {
	rec := &stubRecorder{}
	ing := newTestIngestor(t, rec)
	defer ing.Stop()

	ing.handleMessage(nil, stubMessage{topic: "tapmon/users/42/vitals", payload: `{"temperature":"36.7","heartRate":71}`})

	require.Len(t, rec.calls, 1)
	require.Equal(t, int64(42), rec.calls[0].userID)
	require.Equal(t, vitals.SourceDevice, rec.calls[0].req.Source)
	require.Equal(t, vitals.Measurement(36.7), *rec.calls[0].req.Temperature)
	require.Equal(t, vitals.Measurement(71), *rec.calls[0].req.HeartRate)
}

func TestHandleMessageDropsMalformed(t *testing.T) {
	rec := &stubRecorder{}
	ing := newTestIngestor(t, rec)
	defer ing.Stop()

	ing.handleMessage(nil, stubMessage{topic: "tapmon/users/abc/vitals", payload: `{"temperature":36.7,"heartRate":71}`})
	ing.handleMessage(nil, stubMessage{topic: "tapmon/users/0/vitals", payload: `{"temperature":36.7,"heartRate":71}`})
	ing.handleMessage(nil, stubMessage{topic: "tapmon/users/5/vitals", payload: `not json`})
	ing.handleMessage(nil, stubMessage{topic: "tapmon/users", payload: `{}`})

	require.Empty(t, rec.calls)
}

func TestHandleMessageSkipsUnknownUsers(t *testing.T) {
	rec := &stubRecorder{}
	ing := newTestIngestor(t, rec)
	defer ing.Stop()

	ing.handleMessage(nil, stubMessage{topic: "tapmon/users/999/vitals", payload: `{"temperature":36.7,"heartRate":71}`})
	ing.handleMessage(nil, stubMessage{topic: "tapmon/users/13/vitals", payload: `{"temperature":36.7,"heartRate":71}`})

	require.Empty(t, rec.calls)
}

func TestNewIngestorValidates(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	_, err := NewIngestor(Config{BrokerURL: "tcp://localhost:1883", Topic: "tapmon/vitals"}, &stubRecorder{}, knownUsers(), logger)
	require.Error(t, err)
	_, err = NewIngestor(Config{Topic: "tapmon/users/+/vitals"}, &stubRecorder{}, knownUsers(), logger)
	require.Error(t, err)
	_, err = NewIngestor(Config{BrokerURL: "tcp://localhost:1883", Topic: "tapmon/users/+/vitals"}, &stubRecorder{}, nil, logger)
	require.Error(t, err)
}

func newTestIngestor(t *testing.T, rec Recorder) *Ingestor {
	t.Helper()
	ing, err := NewIngestor(Config{
		BrokerURL: "tcp://localhost:1883",
		Topic:     "tapmon/users/+/vitals",
	}, rec, knownUsers(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return ing
}

type recordCall struct {
	userID int64
	req    vitals.RecordRequest
}

type stubRecorder struct {
	mu    sync.Mutex
	calls []recordCall
}

func (r *stubRecorder) Record(_ context.Context, userID int64, req vitals.RecordRequest) (vitals.RecordResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, recordCall{userID: userID, req: req})
	return vitals.RecordResponse{}, nil
}

// stubUsers knows users 5 and 42; user 13 makes the lookup fail.
type stubUsers map[int64]bool

func knownUsers() stubUsers {
	return stubUsers{5: true, 42: true}
}

func (u stubUsers) Profile(_ context.Context, userID int64) (auth.UserView, error) {
	if userID == 13 {
		return auth.UserView{}, apperrors.Wrap(apperrors.CodeStorage, "failed to load user", errors.New("db down"))
	}
	if !u[userID] {
		return auth.UserView{}, apperrors.Wrap(apperrors.CodeNotFound, "user not found", nil)
	}
	return auth.UserView{ID: userID}, nil
}

type stubMessage struct {
	topic   string
	payload string
}

func (m stubMessage) Duplicate() bool   { return false }
func (m stubMessage) Qos() byte         { return 1 }
func (m stubMessage) Retained() bool    { return false }
func (m stubMessage) Topic() string     { return m.topic }
func (m stubMessage) MessageID() uint16 { return 1 }
func (m stubMessage) Payload() []byte   { return []byte(m.payload) }
func (m stubMessage) Ack()              {}
