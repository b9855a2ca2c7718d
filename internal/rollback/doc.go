// Package rollback reverses documentation deployments on demand.
//
// Service issues exactly one git mutation per operation: deleting the pages
// branch from a remote, or hard-resetting the local branch pointer to a
// remote-tracking ref. Neither ever runs automatically; both commands prompt
// for confirmation unless --yes is supplied.
package rollback
