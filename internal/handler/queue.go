package handler

import (
	"encoding/json"
	"time"

	"github.com/IBM/sarama"

	"github.com/bookrent/rental-service/pkg/breaker"
)

type Enqueuer interface {
	Enqueue(topic string, v any) error
}

// NewEnqueuer wraps the producer with a circuit breaker so a flapping broker
// does not slow down the rental request path. A nil producer disables
// publishing entirely.
func NewEnqueuer(producer sarama.SyncProducer) Enqueuer {
	return &enqueuerImpl{
		producer: producer,
		cb:       breaker.New(20, 30*time.Second, 0.5, 5),
	}
}

type enqueuerImpl struct {
	producer sarama.SyncProducer
	cb       breaker.CircuitBreaker
}

func (q *enqueuerImpl) Enqueue(topic string, v any) error {
	if q.producer == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return q.cb.Call(func() error {
		msg := &sarama.ProducerMessage{Topic: topic, Value: sarama.StringEncoder(data)}
		_, _, err := q.producer.SendMessage(msg)
		return err
	})
}
