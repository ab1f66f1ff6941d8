package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
)

type captureWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *captureWriter) Close() error { return nil }

func TestKafkaPublisher_PublishProduct(t *testing.T) {
	w := &captureWriter{}
	p := &KafkaPublisher{w: w, timeout: time.Second}

	require.NoError(t, p.PublishProduct(context.Background(), ProductEvent{
		Type: ProductCreated, ProductID: 12, UserID: 3, Name: "tea",
	}))
	require.Len(t, w.msgs, 1)
	require.Equal(t, "12", string(w.msgs[0].Key))

	var ev ProductEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &ev))
	require.Equal(t, ProductCreated, ev.Type)
	require.Equal(t, int64(12), ev.ProductID)
	require.Equal(t, "tea", ev.Name)
	require.False(t, ev.At.IsZero())
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	p := &KafkaPublisher{w: &captureWriter{err: errors.New("broker down")}, timeout: time.Second}
	err := p.PublishProduct(context.Background(), ProductEvent{Type: ProductDeleted, ProductID: 1})
	require.Error(t, err)
	require.Contains(t, err.Error(), ProductDeleted)
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	require.NoError(t, p.PublishProduct(context.Background(), ProductEvent{}))
	require.NoError(t, p.Close())
}
