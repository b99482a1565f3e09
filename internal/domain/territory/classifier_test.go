package territory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andrescamacho/remoteminer-go/internal/domain/territory"
)

func TestParseZone_RoundTripsNames(t *testing.T) {
	for _, name := range []string{"W0N0", "E0S0", "W12N7", "E45S3"} {
		c, ok := territory.ParseZone(name)
		assert.True(t, ok, name)
		assert.Equal(t, name, c.Name())
	}

	c, _ := territory.ParseZone("W0N0")
	assert.Equal(t, territory.Coordinates{X: -1, Y: 0}, c)
	c, _ = territory.ParseZone("E0S0")
	assert.Equal(t, territory.Coordinates{X: 0, Y: -1}, c)
}

func TestParseZone_RejectsGarbage(t *testing.T) {
	for _, name := range []string{"", "sim", "W1", "N1W1", "w1n1", "W-1N1"} {
		_, ok := territory.ParseZone(name)
		assert.False(t, ok, name)
	}
}

func TestClassification(t *testing.T) {
	assert.True(t, territory.IsResourceRichZone("W5N5"))
	assert.True(t, territory.IsResourceRichZone("E15S25"))
	assert.False(t, territory.IsGuardedZone("W5N5"))

	for _, name := range []string{"W4N4", "W4N5", "W6N6", "E14S16", "W5N4"} {
		assert.True(t, territory.IsGuardedZone(name), name)
		assert.False(t, territory.IsResourceRichZone(name), name)
	}

	for _, name := range []string{"W1N1", "W3N5", "W7N5", "E10N10"} {
		assert.False(t, territory.IsGuardedZone(name), name)
		assert.False(t, territory.IsResourceRichZone(name), name)
		assert.False(t, territory.IsHighYieldZone(name), name)
	}

	assert.False(t, territory.IsGuardedZone("bogus"))
	assert.False(t, territory.IsResourceRichZone("bogus"))
}

func TestAdjacentZone_CrossesHemispheres(t *testing.T) {
	assert.Equal(t, "W1N2", territory.AdjacentZone("W1N1", territory.Top))
	assert.Equal(t, "W1N0", territory.AdjacentZone("W1N1", territory.Bottom))
	assert.Equal(t, "W0N1", territory.AdjacentZone("W1N1", territory.Right))
	assert.Equal(t, "W2N1", territory.AdjacentZone("W1N1", territory.Left))

	assert.Equal(t, "E0N0", territory.AdjacentZone("W0N0", territory.Right))
	assert.Equal(t, "W0S0", territory.AdjacentZone("W0N0", territory.Bottom))

	assert.Equal(t, "", territory.AdjacentZone("nope", territory.Top))
	assert.Equal(t, "", territory.AdjacentZone("W1N1", territory.Direction(99)))
}

func TestExitDirections_RespectsWorldBounds(t *testing.T) {
	topo := territory.NewTopology(2)

	assert.ElementsMatch(t, territory.AllDirections, topo.ExitDirections("W0N0"))
	// E1 is the last column, N1 the last row
	assert.ElementsMatch(t, []territory.Direction{territory.Bottom, territory.Left}, topo.ExitDirections("E1N1"))
	assert.Empty(t, topo.ExitDirections("E2N0"))
	assert.Empty(t, topo.ExitDirections("garbage"))

	assert.Len(t, territory.ExitDirections("W10N10"), 4)
}
