package scenario

import (
	"fmt"
	"log"
)

// AssertionMode decides what a failed expectation does.
type AssertionMode int

const (
	// AssertionStrict stops the scenario at the first failed expectation.
	AssertionStrict AssertionMode = iota
	// AssertionLogOnly logs failed expectations and keeps going.
	AssertionLogOnly
)

// Assertions reports expectation failures according to Mode.
type Assertions struct {
	Mode   AssertionMode
	Logger *log.Logger
}

// Failf returns the failure in strict mode and logs it otherwise.
func (a Assertions) Failf(format string, args ...any) error {
	err := fmt.Errorf(format, args...)
	if a.Mode != AssertionLogOnly {
		return err
	}
	if a.Logger != nil {
		a.Logger.Printf("expectation failed: %v", err)
	}
	return nil
}
