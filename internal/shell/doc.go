// Package shell composes the view engine, the form controller and a
// types.Store into a live module session.
//
// A Session subscribes to every path its Module observes. Store callbacks
// are turned into one channel per path; a supervising goroutine merges them,
// keeps the latest snapshot of each path and leaves the loading state once
// every path has delivered or any path has failed. All subscriptions are
// released when the session closes or its context ends.
package shell
