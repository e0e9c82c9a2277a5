package pkg

import "github.com/bytedance/sonic"

// JSON is the encoder configuration used across the router. It mirrors
// encoding/json behaviour (sorted map keys, HTML escaping) so outputs are stable.
var JSON = sonic.ConfigStd

func marshalJSON(v any) ([]byte, error) {
	return JSON.Marshal(v)
}

func unmarshalJSON(data []byte, v any) error {
	return JSON.Unmarshal(data, v)
}
