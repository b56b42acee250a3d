package core

import "testing"

func TestJSONFieldsCodec_RoundTrip(t *testing.T) {
	codec := JSONFieldsCodec{}
	fields := map[string]any{
		"token": "xoxb-1234",
		"port":  float64(5432),
		"ssl":   true,
	}

	encoded, err := codec.Encode(fields)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := codec.Decode(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded["token"] != "xoxb-1234" || decoded["port"] != float64(5432) || decoded["ssl"] != true {
		t.Fatalf("unexpected round trip result: %v", decoded)
	}
}

func TestJSONFieldsCodec_RejectsEmpty(t *testing.T) {
	codec := JSONFieldsCodec{}
	if _, err := codec.Encode(nil); err == nil {
		t.Fatalf("expected empty fields to be rejected")
	}
	if _, err := codec.Decode(nil); err == nil {
		t.Fatalf("expected empty payload to be rejected")
	}
}
