// Package identity defines the sign-in boundary for the portal.
//
// It owns staff accounts, magic-link tokens, and the server-side sessions
// both staff and clients carry, so the web layer can depend on stable
// principals instead of re-implementing sign-in rules.
//
// Subpackages:
//   - service: sign-in and session use-cases
//   - magiclink: magic-link timing and URL configuration
//   - storage: persistence interfaces and SQLite implementations
package identity
