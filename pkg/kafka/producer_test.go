package kafka

import (
	"context"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProducer(t *testing.T) {
	p, err := NewProducer(Config{Brokers: []string{"localhost:9092", "localhost:9093"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"localhost:9092", "localhost:9093"}, p.brokers)
	assert.Empty(t, p.writers)
	assert.Nil(t, p.transport.TLS)
	assert.Nil(t, p.transport.SASL)
}

func TestNewProducer_RequiresBrokers(t *testing.T) {
	_, err := NewProducer(Config{})
	assert.Error(t, err)
}

func TestNewProducer_TLSAndSASL(t *testing.T) {
	tests := []struct {
		mechanism string
		wantName  string
		wantErr   bool
	}{
		{"", "PLAIN", false},
		{"PLAIN", "PLAIN", false},
		{"SCRAM-SHA-256", "SCRAM-SHA-256", false},
		{"SCRAM-SHA-512", "SCRAM-SHA-512", false},
		{"GSSAPI", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.mechanism, func(t *testing.T) {
			p, err := NewProducer(Config{
				Brokers:       []string{"kafka:9092"},
				TLS:           true,
				SASLEnabled:   true,
				SASLMechanism: tt.mechanism,
				SASLUsername:  "lending",
				SASLPassword:  "secret",
			})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, p.transport.TLS)
			require.NotNil(t, p.transport.SASL)
			assert.Equal(t, tt.wantName, p.transport.SASL.Name())
		})
	}
}

func TestGetOrCreateWriter_ReusesPerTopic(t *testing.T) {
	p, err := NewProducer(Config{Brokers: []string{"kafka:9092"}})
	require.NoError(t, err)

	w1 := p.getOrCreateWriter("lending.loan")
	w2 := p.getOrCreateWriter("lending.loan")
	w3 := p.getOrCreateWriter("lending.kyc")

	assert.Same(t, w1, w2)
	assert.NotSame(t, w1, w3)
	assert.Equal(t, "lending.loan", w1.Topic)
	assert.Same(t, p.transport, w1.Transport)
	require.NoError(t, p.Close())
	assert.Empty(t, p.writers)
}

func TestPublish_NoMessagesIsNoop(t *testing.T) {
	p, err := NewProducer(Config{Brokers: []string{"kafka:9092"}})
	require.NoError(t, err)
	require.NoError(t, p.Publish(context.Background(), "lending.loan"))
	assert.Empty(t, p.writers)
}

func TestToKafkaMessages_CopiesHeaders(t *testing.T) {
	out := toKafkaMessages([]Message{{
		Key:     []byte("loan-1"),
		Value:   []byte(`{}`),
		Headers: map[string]string{"event_type": "lending.loan.disbursed"},
	}})
	require.Len(t, out, 1)
	assert.Equal(t, []byte("loan-1"), out[0].Key)
	assert.Equal(t, []kafkago.Header{{Key: "event_type", Value: []byte("lending.loan.disbursed")}}, out[0].Headers)
}
