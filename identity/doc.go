// Package identity represents the acting principal of a command
// invocation: who is dispatching, their roles, and their directly attached
// permission grants.
//
// Identities are normally supplied by the embedding application; a JWT
// verifier is provided for callers that authenticate with bearer tokens.
package identity
