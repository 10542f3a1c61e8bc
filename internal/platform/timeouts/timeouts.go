// Package timeouts defines the timeout constants shared by Vorago commands.
package timeouts

import "time"

// GRPCDial caps connection setup plus the health wait when dialing the
// Vorago service.
const GRPCDial = 2 * time.Second

// GRPCRequest caps one unary call from the MCP bridge.
const GRPCRequest = 5 * time.Second

// Storage caps a single snapshot read or write.
const Storage = 2 * time.Second

// Shutdown limits how long the server drains in-flight calls.
const Shutdown = 5 * time.Second
