package internal

import (
	"testing"
	"time"

	"github.com/Netflix/go-env"
	"github.com/stretchr/testify/require"
)

func TestConfig_Defaults(t *testing.T) {
	req := require.New(t)
	t.Setenv("BADGER_FILEPATH", "/tmp/badger")
	t.Setenv("BLUGE_FILEPATH", "/tmp/bluge")
	t.Setenv("LOCAL_ADDRESSES", " alice , bob,,alice")

	var config Config
	_, err := env.UnmarshalFromEnviron(&config)

	req.NoError(err)
	req.NoError(config.Validate())
	req.Equal(TransportMemory, config.Transport)
	req.Equal([]string{"alice", "bob"}, config.Addresses())
	req.Equal(5*time.Second, config.RetryMin)
	req.Equal(10*time.Minute, config.RetryMax)
	req.Equal(100, config.PollBatchSize)
	req.Equal(2, config.DefaultDaysRetention)
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{
		LocalAddresses: "alice",
		Transport:      TransportMemory,
		PollBatchSize:  10,
		RetryMin:       time.Second,
		RetryMax:       time.Minute,
	}
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "memory transport", mutate: func(c *Config) {}},
		{name: "kafka transport", mutate: func(c *Config) {
			c.Transport, c.KafkaBrokers, c.KafkaGroupID = TransportKafka, "localhost:9092", "node-a"
		}},
		{name: "kafka without brokers", mutate: func(c *Config) {
			c.Transport, c.KafkaGroupID = TransportKafka, "node-a"
		}, wantErr: true},
		{name: "unknown transport", mutate: func(c *Config) { c.Transport = "carrier-pigeon" }, wantErr: true},
		{name: "no local address", mutate: func(c *Config) { c.LocalAddresses = " , " }, wantErr: true},
		{name: "empty batch", mutate: func(c *Config) { c.PollBatchSize = 0 }, wantErr: true},
		{name: "retry bounds inverted", mutate: func(c *Config) { c.RetryMax = time.Millisecond }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := valid
			tt.mutate(&config)
			err := config.Validate()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}
