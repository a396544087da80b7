// Package services provides domain services that span more than one
// aggregate or that guard the core's boundary:
//   - TransitionGuards: per (source, target) business invariants checked
//     before an order changes status
//   - RequestAuthenticator: HMAC-SHA256 verification of signed API requests
//     against the credential store
package services
