package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeCursor(t *testing.T) {
	consumedAt := time.Date(2026, 3, 15, 14, 30, 45, 123456789, time.UTC)

	token := EncodeCursor(consumedAt, 42)
	assert.NotEmpty(t, token, "Token should not be empty")

	decodedAt, decodedSeq, err := DecodeCursor(token)
	assert.NoError(t, err, "Decoding should not return an error")
	assert.Equal(t, consumedAt, decodedAt, "Timestamp should match after decode")
	assert.Equal(t, int64(42), decodedSeq, "Sequence should match after decode")

	// Zero values round-trip too
	zeroToken := EncodeCursor(time.Time{}, 0)
	decodedZero, decodedZeroSeq, err := DecodeCursor(zeroToken)
	assert.NoError(t, err)
	assert.Equal(t, time.Time{}, decodedZero)
	assert.Equal(t, int64(0), decodedZeroSeq)
}

func TestDecodeCursorError(t *testing.T) {
	// Invalid base64
	_, _, err := DecodeCursor("this is not base64!")
	assert.Error(t, err, "Should return an error for invalid base64")
	assert.Contains(t, err.Error(), "base64 decode")

	// Missing separator
	_, _, err = DecodeCursor("MjAyMy0wNS0xNVQwMDowMDowMFo=")
	assert.Error(t, err, "Should return an error for a token without a separator")
	assert.Contains(t, err.Error(), "split")

	// Bad timestamp
	_, _, err = DecodeCursor("bm90YWRhdGV8NDI=") // "notadate|42"
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "timestamp parse")

	// Bad sequence
	_, _, err = DecodeCursor("MjAyNi0wMy0xNVQxNDozMDo0NVp8bm90YW51bWJlcg==") // "2026-03-15T14:30:45Z|notanumber"
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "sequence parse")
}
