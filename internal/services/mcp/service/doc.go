// Package service hosts the Vorago MCP server over stdio or streamable HTTP.
//
// The server dials the Vorago gRPC service, waits for it to report healthy and
// registers the tools from the domain package against that connection.
package service
