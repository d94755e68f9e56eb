package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nsqio/go-nsq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forgedocs/internal/middleware"
)

type fakeReingester struct {
	gotID  string
	gotCID string
	err    error
	called bool
}

func (f *fakeReingester) ReingestFromFile(ctx context.Context, documentID string) error {
	f.called = true
	f.gotID = documentID
	f.gotCID = middleware.GetCorrelationID(ctx)
	return f.err
}

func message(body []byte) *nsq.Message {
	return nsq.NewMessage(nsq.MessageID{}, body)
}

func TestHandleMessage_Reingests(t *testing.T) {
	r := &fakeReingester{}
	c := NewIngestConsumer(r, time.Minute)

	body, err := json.Marshal(IngestTask{DocumentID: "doc-1", CorrelationID: "corr-1"})
	require.NoError(t, err)

	require.NoError(t, c.HandleMessage(message(body)))
	assert.Equal(t, "doc-1", r.gotID)
	assert.Equal(t, "corr-1", r.gotCID, "correlation id must follow the task into the worker")
}

func TestHandleMessage_PoisonPillNotRetried(t *testing.T) {
	r := &fakeReingester{err: errors.New("should not be called")}
	c := NewIngestConsumer(r, time.Minute)

	assert.NoError(t, c.HandleMessage(message([]byte("{not json"))))
	assert.NoError(t, c.HandleMessage(message([]byte(`{"correlation_id":"x"}`))))
	assert.NoError(t, c.HandleMessage(message(nil)))
	assert.False(t, r.called)
}

func TestHandleMessage_FailureRequeues(t *testing.T) {
	r := &fakeReingester{err: errors.New("file missing")}
	c := NewIngestConsumer(r, time.Minute)

	body, err := json.Marshal(IngestTask{DocumentID: "doc-1"})
	require.NoError(t, err)

	assert.Error(t, c.HandleMessage(message(body)), "transient failures return an error so NSQ retries")
}
