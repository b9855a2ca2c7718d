// Package remotes registers and verifies named git remotes.
//
// Service validates the requested remote URL, adds the remote when absent,
// and treats an existing remote with the same URL as an idempotent success.
package remotes
