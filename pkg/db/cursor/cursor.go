package cursor

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
)

var ErrInvalidCursor = errors.New("invalid cursor")

type CursorData struct {
	ID int `json:"id"`
}

// Codec signs keyset cursors so a client cannot forge a position it was
// never handed.
type Codec struct {
	secret []byte
}

func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

func (c *Codec) hmacSignature(encoded string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(encoded))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (c *Codec) Encode(id int) string {
	jsonData, _ := json.Marshal(CursorData{ID: id})
	encoded := base64.RawURLEncoding.EncodeToString(jsonData)

	return encoded + "." + c.hmacSignature(encoded)
}

func (c *Codec) Decode(token string) (int, error) {
	encoded, signature, found := strings.Cut(token, ".")

	if !found || encoded == "" || signature == "" {
		return 0, ErrInvalidCursor
	}

	if !hmac.Equal([]byte(signature), []byte(c.hmacSignature(encoded))) {
		return 0, ErrInvalidCursor
	}

	decoded, err := base64.RawURLEncoding.DecodeString(encoded)

	if err != nil {
		return 0, ErrInvalidCursor
	}

	var data CursorData

	if err := json.Unmarshal(decoded, &data); err != nil || data.ID <= 0 {
		return 0, ErrInvalidCursor
	}

	return data.ID, nil
}
