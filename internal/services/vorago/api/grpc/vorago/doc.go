// Package vorago implements the vorago.v1.VoragoService gRPC API.
//
// Requests and responses are google.protobuf.Struct values. Each game lives in
// storage as a snapshot; the service keeps a live match per game id and
// serializes commands on it with a per-match mutex, saving the snapshot after
// every accepted command.
//
// Rejections become platform errors whose reason is the engine rejection code,
// so clients get a FailedPrecondition or InvalidArgument status with
// ErrorInfo and a LocalizedMessage in the locale sent in x-vorago-locale.
package vorago
