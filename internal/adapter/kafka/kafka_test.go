package kafka

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2025, 3, 12, 9, 30, 0, 0, time.UTC)
	event := BuildEvent{
		OutletGaugeID:  399,
		Rebuilt:        true,
		FeasibleGauges: 358,
		ExcludedGauges: 41,
		Edges:          402,
		BypassEdges:    17,
		AdjacencyPath:  "/data/processed/adjacency.csv",
		StatisticsPath: "/data/processed/statistics.csv",
		Duration:       84.5,
		CompletedAt:    now,
	}

	msg, err := serializeToMessage(event)
	require.NoError(t, err)

	assert.Equal(t, []byte("399"), msg.Key)
	assert.Contains(t, string(msg.Value), `"feasible_gauges":358`)
	assert.Contains(t, string(msg.Value), `"bypass_edges":17`)
	assert.Contains(t, string(msg.Value), `"adjacency_path":"/data/processed/adjacency.csv"`)

	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "rebuilt", msg.Headers[0].Key)
	assert.Equal(t, []byte("true"), msg.Headers[0].Value)
	assert.Equal(t, "completed_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)
}
