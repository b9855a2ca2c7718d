// Package docbuild runs documentation builds through make targets.
//
// Builder executes each configured target in order through the shared shell
// executor so build output and failures surface with the same logging as the
// git operations around them.
package docbuild
