package enum

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchTierJSON(t *testing.T) {
	data, err := json.Marshal(DispatchTierManualOpen)
	require.NoError(t, err)
	assert.Equal(t, `"manual_open"`, string(data))

	var tier DispatchTier
	require.NoError(t, json.Unmarshal([]byte(`"default"`), &tier))
	assert.Equal(t, DispatchTierDefault, tier)

	require.NoError(t, json.Unmarshal([]byte(`0`), &tier))
	assert.Equal(t, DispatchTierNamed, tier)
}

func TestDispatchTierDelivered(t *testing.T) {
	assert.True(t, DispatchTierNamed.Delivered())
	assert.True(t, DispatchTierManualOpen.Delivered())
	assert.False(t, DispatchTierSaved.Delivered())
	assert.Equal(t, "saved", DispatchTier(42).String())
}
