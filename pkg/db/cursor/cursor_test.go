package cursor

import (
	"errors"
	"strings"
	"testing"
)

func TestEncodeDecodeCursor(t *testing.T) {
	codec := NewCodec("test-secret-key-123")

	encoded := codec.Encode(123)

	if strings.ContainsAny(encoded, "+/=") {
		t.Fatalf("cursor %q is not url safe", encoded)
	}

	id, err := codec.Decode(encoded)

	if err != nil {
		t.Fatalf("Failed to decode cursor: %v", err)
	}

	if id != 123 {
		t.Errorf("Expected ID %d, got %d", 123, id)
	}
}

func TestDecodeInvalidCursor(t *testing.T) {
	codec := NewCodec("test-secret-key-123")

	for _, token := range []string{"", "invalid-cursor", ".", "abc.", ".abc", "eyJpZCI6MX0.invalid-signature"} {
		if _, err := codec.Decode(token); !errors.Is(err, ErrInvalidCursor) {
			t.Errorf("Expected ErrInvalidCursor for %q, got %v", token, err)
		}
	}
}

func TestDecodeCursorSignedWithAnotherSecret(t *testing.T) {
	encoded := NewCodec("one").Encode(5)

	if _, err := NewCodec("two").Decode(encoded); !errors.Is(err, ErrInvalidCursor) {
		t.Errorf("Expected ErrInvalidCursor, got %v", err)
	}
}
