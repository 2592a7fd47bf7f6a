package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/talgya/clearing/internal/filler"
	"github.com/talgya/clearing/internal/world"
)

func TestObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	w := world.New().Click(world.ActionWar)
	m.Observe(42, w)

	assert.Equal(t, 10.0, testutil.ToFloat64(m.amount.WithLabelValues("food")))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.bound.WithLabelValues("people")))
	assert.Equal(t, 42.0, testutil.ToFloat64(m.tick))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.crowd))
}

func TestAction(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	hungry := world.New()
	hungry.Food = filler.New(5, 0, 10)
	_, out := hungry.Apply(world.ActionBirth)
	m.Action(out)
	m.Action(out)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.actions.WithLabelValues("birth", "false")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.actions.WithLabelValues("birth", "true")))
}
