// Package types defines the Store interface, the record and column schema
// types shared by every dashboard module, view state (filters and sort),
// identity and translation collaborators, and the standard error values.
//
// Records are schema-less at the store level. Shape is imposed only by the
// Schema and template each module declares.
package types
