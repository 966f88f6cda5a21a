// Package access issues and validates signed client access grants.
//
// Staff mint a grant URL for a client; following it signs the client in
// without a password. Grants are short-lived ed25519 JWTs and each grant
// is consumable exactly once through the replay store.
package access
