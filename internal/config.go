package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
)

const (
	TransportMemory = "memory"
	TransportKafka  = "kafka"
)

type Config struct {
	LogLevel       string `env:"LOG_LEVEL,default=INFO"`
	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath  string `env:"BLUGE_FILEPATH,required=true"`

	// Comma separated addresses owned by this node.
	LocalAddresses    string `env:"LOCAL_ADDRESSES,required=true"`
	IdentityCacheSize int    `env:"IDENTITY_CACHE_SIZE,default=256"`

	Transport              string        `env:"TRANSPORT,default=memory"`
	KafkaBrokers           string        `env:"KAFKA_BROKERS"`
	KafkaTopic             string        `env:"KAFKA_TOPIC,default=market-messages"`
	KafkaGroupID           string        `env:"KAFKA_GROUP_ID"`
	KafkaPollWindow        time.Duration `env:"KAFKA_POLL_WINDOW,default=500ms"`
	KafkaNotificationTopic string        `env:"KAFKA_NOTIFICATION_TOPIC"`
	DefaultDaysRetention   int           `env:"DEFAULT_DAYS_RETENTION,default=2"`
	FeePerKBDay            float64       `env:"FEE_PER_KB_DAY,default=0.0001"`

	PollInterval    time.Duration `env:"POLL_INTERVAL,default=1s"`
	PollBatchSize   int           `env:"POLL_BATCH_SIZE,default=100"`
	RetryMin        time.Duration `env:"RETRY_MIN,default=5s"`
	RetryMax        time.Duration `env:"RETRY_MAX,default=10m"`
	RetryFactor     float64       `env:"RETRY_FACTOR,default=2"`
	RestartInterval time.Duration `env:"RESTART_INTERVAL,default=1s"`
	MetricsAddr     string        `env:"METRICS_ADDR,default=:9090"`
}

// Validate checks what the env tags can't express.
func (c Config) Validate() error {
	switch c.Transport {
	case TransportMemory:
	case TransportKafka:
		if len(c.Brokers()) == 0 || c.KafkaGroupID == "" {
			return fmt.Errorf("TRANSPORT=kafka needs KAFKA_BROKERS and KAFKA_GROUP_ID")
		}
	default:
		return fmt.Errorf("TRANSPORT must be %q or %q, got %q", TransportMemory, TransportKafka, c.Transport)
	}
	if len(c.Addresses()) == 0 {
		return fmt.Errorf("LOCAL_ADDRESSES must name at least one address")
	}
	if c.PollBatchSize <= 0 {
		return fmt.Errorf("POLL_BATCH_SIZE must be positive, got %d", c.PollBatchSize)
	}
	if c.RetryMin <= 0 || c.RetryMax < c.RetryMin {
		return fmt.Errorf("RETRY_MIN must be positive and not above RETRY_MAX")
	}
	return nil
}

func (c Config) Addresses() []string {
	return splitList(c.LocalAddresses)
}

func (c Config) Brokers() []string {
	return splitList(c.KafkaBrokers)
}

func splitList(value string) []string {
	return lo.Uniq(lo.Compact(lo.Map(strings.Split(value, ","), func(s string, _ int) string {
		return strings.TrimSpace(s)
	})))
}
