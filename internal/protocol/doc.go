// Package protocol owns the radio test command contract.
//
// Ownership boundary:
// - command identifiers and status codes
// - frame/header primitives (frame)
// - tlv payload primitives (tlv)
// - per-command parameter requirements (schema)
// - request/response frame codec (wire)
package protocol
