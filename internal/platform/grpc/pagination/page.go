// Package pagination normalizes page sizes and encodes opaque page tokens for
// list RPCs.
package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"hash/crc32"
)

// ErrInvalidPageToken reports a token that is malformed or was issued for a
// different query.
var ErrInvalidPageToken = errors.New("invalid page token")

// PageSizeConfig configures page size normalization.
type PageSizeConfig struct {
	Default int
	Max     int
}

// ClampPageSize applies defaults and limits for page sizes.
func ClampPageSize(value int32, cfg PageSizeConfig) int {
	pageSize := int(value)
	if pageSize <= 0 {
		pageSize = cfg.Default
	}
	if cfg.Max > 0 && pageSize > cfg.Max {
		pageSize = cfg.Max
	}
	if pageSize <= 0 {
		pageSize = 1
	}
	return pageSize
}

// Token marks where the next page starts. Checksum binds it to the query
// that produced it so a token cannot be replayed against another filter.
type Token struct {
	Offset   int    `json:"o"`
	Checksum uint32 `json:"c"`
}

// QueryChecksum hashes the parts of a list request that must stay fixed
// across pages.
func QueryChecksum(parts ...string) uint32 {
	h := crc32.NewIEEE()
	for _, p := range parts {
		_, _ = h.Write([]byte(p))
		_, _ = h.Write([]byte{0})
	}
	return h.Sum32()
}

// Encode returns the opaque string form of t.
func (t Token) Encode() string {
	data, _ := json.Marshal(t)
	return base64.RawURLEncoding.EncodeToString(data)
}

// ParseToken decodes raw and checks it against checksum. An empty raw token
// is the first page.
func ParseToken(raw string, checksum uint32) (Token, error) {
	if raw == "" {
		return Token{Checksum: checksum}, nil
	}
	data, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return Token{}, ErrInvalidPageToken
	}
	var t Token
	if err := json.Unmarshal(data, &t); err != nil {
		return Token{}, ErrInvalidPageToken
	}
	if t.Offset < 0 || t.Checksum != checksum {
		return Token{}, ErrInvalidPageToken
	}
	return t, nil
}

// Next returns the token for the page after one of size pageSize, or "" when
// fetched shows the listing is exhausted.
func (t Token) Next(pageSize, fetched int) string {
	if fetched <= pageSize {
		return ""
	}
	return Token{Offset: t.Offset + pageSize, Checksum: t.Checksum}.Encode()
}
