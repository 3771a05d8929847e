package agent

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_PutIsAppendOnly(t *testing.T) {
	s := NewState()
	require.NoError(t, s.Put(StateKeyDiet, "eat greens"))

	err := s.Put(StateKeyDiet, "eat sweets")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStateKeyExists))

	v, ok := s.Get(StateKeyDiet)
	require.True(t, ok)
	assert.Equal(t, "eat greens", v)
}

func TestState_KeysCanonicalOrder(t *testing.T) {
	s := NewState()
	require.NoError(t, s.Put(StateKeyNote, "n"))
	require.NoError(t, s.Put(StateKeyLifestyle, "l"))
	require.NoError(t, s.Put(StateKeySymptoms, "s"))
	require.NoError(t, s.Put("zeta", "z"))
	require.NoError(t, s.Put("alpha", "a"))

	assert.Equal(t, []string{StateKeySymptoms, StateKeyLifestyle, StateKeyNote, "alpha", "zeta"}, s.Keys())
	assert.Equal(t, 5, s.Len())
	assert.Equal(t, 4, s.Contributions())
}

func TestState_Render(t *testing.T) {
	s := NewState()
	assert.Equal(t, "(empty)", s.Render())
	assert.True(t, s.IsEmpty())

	require.NoError(t, s.Put(StateKeyFitness, "walk daily"))
	require.NoError(t, s.Put(StateKeySymptoms, "drink water"))
	assert.Equal(t, "[symptoms]\ndrink water\n\n[fitness]\nwalk daily", s.Render())
}

func TestState_SnapshotIsCopy(t *testing.T) {
	s := NewState()
	require.NoError(t, s.Put(StateKeyDiet, "d"))

	snap := s.Snapshot()
	snap[StateKeyDiet] = "changed"

	v, _ := s.Get(StateKeyDiet)
	assert.Equal(t, "d", v)

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"diet":"d"}`, string(data))
}

func TestProfile_Render(t *testing.T) {
	assert.Equal(t, "(no profile)", Profile(nil).Render())

	p := Profile{"diet_type": "vegetarian", "age": 29}
	assert.Equal(t, "- age: 29\n- diet_type: vegetarian", p.Render())

	clone := p.Clone()
	clone["age"] = 30
	assert.Equal(t, 29, p["age"])
}
