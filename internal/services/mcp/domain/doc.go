// Package domain defines the MCP tools exposed by the Vorago bridge.
//
// Each tool is a thin adapter over one vorago.v1.VoragoService method: inputs
// are typed structs with jsonschema descriptions, results are decoded from the
// service's Struct responses, and service errors surface as tool errors that
// carry the localized message and the engine rejection code.
package domain
