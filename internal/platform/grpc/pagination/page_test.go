package pagination

import (
	"errors"
	"testing"
)

func TestClampPageSize(t *testing.T) {
	cfg := PageSizeConfig{Default: 10, Max: 50}
	tests := map[int32]int{0: 10, -3: 10, 7: 7, 50: 50, 99: 50}
	for in, want := range tests {
		if got := ClampPageSize(in, cfg); got != want {
			t.Fatalf("ClampPageSize(%d) = %d, want %d", in, got, want)
		}
	}
	if got := ClampPageSize(0, PageSizeConfig{}); got != 1 {
		t.Fatalf("zero config = %d, want 1", got)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	sum := QueryChecksum(`status = "active"`)
	first, err := ParseToken("", sum)
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	next := first.Next(10, 11)
	if next == "" {
		t.Fatal("expected next token")
	}
	tok, err := ParseToken(next, sum)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if tok.Offset != 10 {
		t.Fatalf("offset = %d, want 10", tok.Offset)
	}
	if tok.Next(10, 10) != "" {
		t.Fatal("expected last page")
	}
}

func TestParseTokenRejectsOtherQuery(t *testing.T) {
	tok := Token{Offset: 5, Checksum: QueryChecksum("a")}.Encode()
	if _, err := ParseToken(tok, QueryChecksum("b")); !errors.Is(err, ErrInvalidPageToken) {
		t.Fatalf("err = %v, want ErrInvalidPageToken", err)
	}
	if _, err := ParseToken("%%%", 0); !errors.Is(err, ErrInvalidPageToken) {
		t.Fatalf("err = %v, want ErrInvalidPageToken", err)
	}
}

func TestQueryChecksumSeparatesParts(t *testing.T) {
	if QueryChecksum("ab", "c") == QueryChecksum("a", "bc") {
		t.Fatal("expected distinct checksums")
	}
}
