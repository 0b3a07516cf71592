package mqttout

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDiscoveryPayloadShape(t *testing.T) {
	payload := buildDiscoveryPayload("relay", "shop/bandsaw", "0xdeadbeef")

	require.Equal(t, "shop/bandsaw/state", payload.StateTopic)
	require.Equal(t, "0xdeadbeef_relay", payload.UniqueID)
	require.Equal(t, "Interlock relay", payload.Device.Name)
	require.Equal(t, "0xdeadbeef", payload.Device.SerialNumber)

	b, err := json.Marshal(payload)
	require.NoError(t, err)
	require.Contains(t, string(b), `"unique_id":"0xdeadbeef_relay"`)
}
