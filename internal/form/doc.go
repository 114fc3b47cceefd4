// Package form implements the record form controller: a working copy of one
// record that is edited field by field and submitted as a create or update
// against a types.Store.
//
// Submission is gated twice. A controller without a store or without a
// present identity is not ready and never writes. A controller for an
// admin-only module refuses non-admin identities without reporting an error.
package form
