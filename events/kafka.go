package events

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/bobg/reportanchor"
)

var _ reportanchor.Sink = &KafkaSink{}

// Producer is the part of a kgo.Client that KafkaSink uses.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// KafkaSink publishes each event as a JSON message.
// The message key is the record address,
// so all events for one record land in the same partition.
type KafkaSink struct {
	p     Producer
	topic string
}

// NewKafkaSink produces a KafkaSink writing to topic through p.
func NewKafkaSink(p Producer, topic string) *KafkaSink {
	return &KafkaSink{p: p, topic: topic}
}

// DialKafka creates a kgo.Client for the given seed brokers.
func DialKafka(brokers []string) (*kgo.Client, error) {
	client, err := kgo.NewClient(kgo.SeedBrokers(brokers...))
	return client, errors.Wrap(err, "creating kafka client")
}

// Emit implements reportanchor.Sink.
// It waits for the broker to acknowledge the message.
func (s *KafkaSink) Emit(ctx context.Context, e reportanchor.Event) error {
	val, err := json.Marshal(e)
	if err != nil {
		return errors.Wrap(err, "encoding event")
	}
	rec := &kgo.Record{
		Topic: s.topic,
		Key:   append([]byte(nil), e.Address[:]...),
		Value: val,
	}
	return errors.Wrapf(s.p.ProduceSync(ctx, rec).FirstErr(), "producing to %s", s.topic)
}
