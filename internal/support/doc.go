// Package support keeps a user's vote on an inquiry consistent across every
// in-memory view that renders that inquiry.
//
// A toggle is applied optimistically to all views of the inquiry, sent to the
// backend through a Client, and either committed (the server record is merged
// into the canonical view) or rolled back from a snapshot taken before the
// apply. A superseded request is left exactly as applied.
package support
