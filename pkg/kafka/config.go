package kafka

import (
	"crypto/tls"
	"fmt"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/segmentio/kafka-go/sasl/scram"
)

// Config holds Kafka connection parameters.
type Config struct {
	Brokers []string

	// SASL configuration for authentication.
	SASLEnabled   bool
	SASLMechanism string // "PLAIN" or "SCRAM-SHA-256" or "SCRAM-SHA-512"
	SASLUsername  string
	SASLPassword  string

	// TLS enables TLS for Kafka connections.
	TLS bool
}

// transport builds the kafka-go transport shared by every writer.
func (c Config) transport() (*kafkago.Transport, error) {
	t := &kafkago.Transport{}
	if c.TLS {
		t.TLS = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	if c.SASLEnabled {
		mech, err := resolveSASL(c)
		if err != nil {
			return nil, err
		}
		t.SASL = mech
	}
	return t, nil
}

// resolveSASL returns the SASL mechanism named by the configuration.
func resolveSASL(cfg Config) (sasl.Mechanism, error) {
	switch cfg.SASLMechanism {
	case "SCRAM-SHA-256":
		return scram.Mechanism(scram.SHA256, cfg.SASLUsername, cfg.SASLPassword)
	case "SCRAM-SHA-512":
		return scram.Mechanism(scram.SHA512, cfg.SASLUsername, cfg.SASLPassword)
	case "PLAIN", "":
		return plain.Mechanism{
			Username: cfg.SASLUsername,
			Password: cfg.SASLPassword,
		}, nil
	default:
		return nil, fmt.Errorf("kafka: unsupported SASL mechanism %q", cfg.SASLMechanism)
	}
}
