package ws

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// decodeDataURI parses a data: URI as sent by browser FileReader output and
// returns the content type and raw bytes.
func decodeDataURI(uri string) (contentType string, data []byte, err error) {
	const prefix = "data:"
	if !strings.HasPrefix(uri, prefix) {
		return "", nil, errors.New("not a data uri")
	}

	meta, payload, ok := strings.Cut(uri[len(prefix):], ",")
	if !ok {
		return "", nil, errors.New("malformed data uri")
	}

	contentType = meta
	isBase64 := strings.HasSuffix(meta, ";base64")
	if isBase64 {
		contentType = strings.TrimSuffix(meta, ";base64")
	}
	if contentType == "" {
		contentType = "text/plain"
	}

	if isBase64 {
		data, err = base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return "", nil, fmt.Errorf("decode data uri: %w", err)
		}
		return contentType, data, nil
	}

	unescaped, err := url.QueryUnescape(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode data uri: %w", err)
	}
	return contentType, []byte(unescaped), nil
}

func extFromContentType(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}
	return ".bin"
}
