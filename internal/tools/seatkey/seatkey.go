// Package seatkey generates the HMAC key that signs Vorago seat grants.
package seatkey

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/louisbranch/vorago/internal/services/vorago/seat"
)

// EnvName is the variable the server reads the key from.
const EnvName = "VORAGO_SEAT_KEY"

// Config holds configuration for seat key generation.
type Config struct {
	Bytes int
	// Export prefixes the line with "export " for shell sourcing.
	Export bool
}

// ParseConfig parses flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Config{Bytes: seat.MinKeyBytes}
	fs.IntVar(&cfg.Bytes, "bytes", cfg.Bytes, "number of random bytes")
	fs.BoolVar(&cfg.Export, "export", false, "prefix the output with export")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run generates the key and writes it to out.
func Run(cfg Config, out io.Writer, reader io.Reader) error {
	if cfg.Bytes < seat.MinKeyBytes {
		return fmt.Errorf("bytes must be at least %d", seat.MinKeyBytes)
	}
	if out == nil {
		return errors.New("output is required")
	}
	if reader == nil {
		reader = rand.Reader
	}

	buf := make([]byte, cfg.Bytes)
	if _, err := io.ReadFull(reader, buf); err != nil {
		return fmt.Errorf("generate random bytes: %w", err)
	}
	prefix := ""
	if cfg.Export {
		prefix = "export "
	}
	_, err := fmt.Fprintf(out, "%s%s=%s\n", prefix, EnvName, hex.EncodeToString(buf))
	return err
}
