package remote_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmoreno/waypoint-agent/internal/remote"
)

func TestNewKafkaStoreRequiresBrokers(t *testing.T) {
	_, err := remote.NewKafkaStore(nil, "records")
	assert.Error(t, err)
}

func TestNewKafkaStoreConstructsWriter(t *testing.T) {
	store, err := remote.NewKafkaStore([]string{"broker-1:9092"}, "records")
	require.NoError(t, err)
	assert.Equal(t, "kafka", store.Name())
	require.NoError(t, store.Close())
}
