package core

import (
	"encoding/json"
	"fmt"
)

const (
	CredentialPayloadFormatAuthFieldsJSON = "auth_fields_json"
	CredentialPayloadVersionV1            = 1
)

// JSONFieldsCodec serializes validated auth fields before encryption and back
// after decryption. The payload shape matches the per-integration schema, not
// a fixed struct, so new integrations need no codec changes.
type JSONFieldsCodec struct{}

func (JSONFieldsCodec) Format() string {
	return CredentialPayloadFormatAuthFieldsJSON
}

func (JSONFieldsCodec) Version() int {
	return CredentialPayloadVersionV1
}

func (JSONFieldsCodec) Encode(fields map[string]any) ([]byte, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("core: credential payload requires at least one field")
	}
	encoded, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("core: encode credential payload: %w", err)
	}
	return encoded, nil
}

func (JSONFieldsCodec) Decode(payload []byte) (map[string]any, error) {
	if len(payload) == 0 {
		return nil, fmt.Errorf("core: credential payload is empty")
	}
	decoded := map[string]any{}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, fmt.Errorf("core: decode credential payload: %w", err)
	}
	return decoded, nil
}

var _ CredentialCodec = JSONFieldsCodec{}
