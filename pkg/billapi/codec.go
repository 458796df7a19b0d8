package billapi

import (
	"encoding/json"
	"fmt"
)

// Codec carries messages as plain JSON. Connect registers it under the
// "json" name so it replaces the default protobuf JSON codec.
type Codec struct {
	name string
}

// JSONCodec handles application/json.
var JSONCodec = Codec{name: "json"}

// JSONCharsetCodec handles application/json; charset=utf-8.
var JSONCharsetCodec = Codec{name: "json; charset=utf-8"}

func (c Codec) Name() string {
	return c.name
}

func (c Codec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (c Codec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("unmarshal %T: %w", msg, err)
	}
	return nil
}
