// Package ui contains helpers for interacting with the operator.
//
// It provides IOConfirmationPrompter, which collects yes/no confirmations
// before destructive rollback operations mutate branch state.
package ui
