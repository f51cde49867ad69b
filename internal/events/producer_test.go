package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewProducerWithoutBrokers(t *testing.T) {
	require.Nil(t, NewProducer(nil))
	require.Nil(t, NewProducer([]string{}))
}

func TestNilProducerIsSafe(t *testing.T) {
	var p *Producer

	err := p.PublishEvent(context.Background(), TopicUserEvents, "1", map[string]any{"type": "user_created"})
	require.NoError(t, err)
	require.NoError(t, p.Close())
}
