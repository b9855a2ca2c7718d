// Package deploy publishes built documentation to a git-hosted pages branch.
//
// Service runs the ordered deployment pipeline (ensure worktree, build,
// commit, push) through the shared shell executor, and CommandBuilder exposes
// the pipeline as the deploy subcommand.
package deploy
