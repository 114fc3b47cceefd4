// Package view is the collection view engine shared by every dashboard
// module. Given a snapshot of a collection and the module's column schema it
// filters, sorts, aggregates and joins records.
//
// Nothing in this package performs I/O, returns an error or panics on
// malformed data: missing and mistyped fields degrade to the type's default
// (empty string, zero, negative infinity, empty list). Views share record
// maps with their input; callers treat them as read-only.
package view
