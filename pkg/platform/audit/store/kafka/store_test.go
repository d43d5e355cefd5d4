package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"jobboard/pkg/domain"
	audit "jobboard/pkg/platform/audit"
)

type fakeProducer struct {
	records []*kgo.Record
	err     error
}

func (f *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	var results kgo.ProduceResults
	for _, r := range rs {
		f.records = append(f.records, r)
		results = append(results, kgo.ProduceResult{Record: r, Err: f.err})
	}
	return results
}

func TestStore_Append(t *testing.T) {
	producer := &fakeProducer{}
	store := New(producer, "audit-events")

	err := store.Append(context.Background(), audit.Event{
		Category: audit.CategoryCompliance,
		UserID:   domain.UserID(5),
		Action:   string(audit.EventApplicationSubmitted),
		Subject:  "job_role:3",
	})
	require.NoError(t, err)
	require.Len(t, producer.records, 1)

	rec := producer.records[0]
	assert.Equal(t, "audit-events", rec.Topic)
	assert.Equal(t, "5", string(rec.Key))

	var decoded audit.Event
	require.NoError(t, json.Unmarshal(rec.Value, &decoded))
	assert.Equal(t, string(audit.EventApplicationSubmitted), decoded.Action)
	assert.Equal(t, domain.UserID(5), decoded.UserID)
}

func TestStore_Append_ProduceError(t *testing.T) {
	store := New(&fakeProducer{err: errors.New("broker down")}, "audit-events")

	err := store.Append(context.Background(), audit.Event{Action: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}

func TestStore_Append_AnonymousEventHasNoKey(t *testing.T) {
	producer := &fakeProducer{}
	require.NoError(t, New(producer, "t").Append(context.Background(), audit.Event{Action: string(audit.EventLoginFailed)}))
	assert.Nil(t, producer.records[0].Key)
}
