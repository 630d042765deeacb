package ws

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDataURIBase64(t *testing.T) {
	payload := []byte{0x89, 0x50, 0x4e, 0x47}
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(payload)

	contentType, data, err := decodeDataURI(uri)
	require.NoError(t, err)
	assert.Equal(t, "image/png", contentType)
	assert.Equal(t, payload, data)
}

func TestDecodeDataURIPlain(t *testing.T) {
	contentType, data, err := decodeDataURI("data:text/plain,hello%20world")
	require.NoError(t, err)
	assert.Equal(t, "text/plain", contentType)
	assert.Equal(t, []byte("hello world"), data)
}

func TestDecodeDataURIDefaultsContentType(t *testing.T) {
	contentType, _, err := decodeDataURI("data:,hi")
	require.NoError(t, err)
	assert.Equal(t, "text/plain", contentType)
}

func TestDecodeDataURIRejectsGarbage(t *testing.T) {
	cases := []string{
		"http://example.com/a.png",
		"data:image/png;base64",
		"data:image/png;base64,!!!not-base64!!!",
		"",
	}
	for _, uri := range cases {
		_, _, err := decodeDataURI(uri)
		assert.Error(t, err, "uri %q", uri)
	}
}

func TestExtFromContentType(t *testing.T) {
	assert.Equal(t, ".png", extFromContentType("image/png"))
	assert.Equal(t, ".jpg", extFromContentType("image/jpeg"))
	assert.Equal(t, ".gif", extFromContentType("image/gif"))
	assert.Equal(t, ".webp", extFromContentType("image/webp"))
	assert.Equal(t, ".bin", extFromContentType("application/octet-stream"))
}
