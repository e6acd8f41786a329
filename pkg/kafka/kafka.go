package kafka

import (
	"time"

	"github.com/IBM/sarama"
)

const RentalEventsTopic = "rental-events"

type Config struct {
	Addrs []string `envconfig:"KAFKA_ADDRS"`
}

// EventRental is published on every rental lifecycle transition.
type EventRental struct {
	RentalID      string    `json:"rentalId"`
	UserID        string    `json:"userId"`
	BookID        string    `json:"bookId"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"paymentStatus"`
	At            time.Time `json:"at"`
}

func NewProducer(cfg Config) (sarama.SyncProducer, error) {
	defaultCfg := sarama.NewConfig()

	defaultCfg.Producer.RequiredAcks = sarama.WaitForAll
	defaultCfg.Producer.Return.Successes = true

	return sarama.NewSyncProducer(cfg.Addrs, defaultCfg)
}
