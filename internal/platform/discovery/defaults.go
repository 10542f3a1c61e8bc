// Package discovery centralizes the default addresses of Vorago processes.
package discovery

import (
	"strconv"
	"strings"
)

const (
	// ServiceVorago is the game engine gRPC service identity.
	ServiceVorago = "vorago"
	// ServiceMCP is the MCP HTTP bridge identity.
	ServiceMCP = "mcp"
)

var grpcPorts = map[string]int{
	ServiceVorago: 8092,
}

var httpPorts = map[string]int{
	ServiceMCP: 8093,
}

// DefaultGRPCAddr returns the conventional gRPC address for a service.
func DefaultGRPCAddr(service string) string {
	return defaultAddr(strings.TrimSpace(service), grpcPorts)
}

// DefaultHTTPAddr returns the conventional HTTP address for a service.
func DefaultHTTPAddr(service string) string {
	return defaultAddr(strings.TrimSpace(service), httpPorts)
}

// OrDefaultGRPCAddr returns value when set, otherwise the service convention.
func OrDefaultGRPCAddr(value, service string) string {
	if value = strings.TrimSpace(value); value != "" {
		return value
	}
	return DefaultGRPCAddr(service)
}

// OrDefaultHTTPAddr returns value when set, otherwise the service convention.
func OrDefaultHTTPAddr(value, service string) string {
	if value = strings.TrimSpace(value); value != "" {
		return value
	}
	return DefaultHTTPAddr(service)
}

// ListenAddr turns a dial address into the address a server binds, keeping
// only the port so the listener accepts every interface.
func ListenAddr(addr string) string {
	if i := strings.LastIndex(addr, ":"); i >= 0 {
		return addr[i:]
	}
	return addr
}

func defaultAddr(service string, ports map[string]int) string {
	port, ok := ports[service]
	if !ok || port <= 0 {
		return ""
	}
	return "localhost:" + strconv.Itoa(port)
}
