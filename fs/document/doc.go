// Package document implements the storage backend that reaches the
// restricted subtree through persisted tree grants.
//
// On platforms that block path access to <root>/Android/data and
// <root>/Android/obb, the only sanctioned way in is the document API: the
// user grants a tree, and every file below it is reached by walking
// document handles from that tree's root one segment at a time. This
// package performs that walk for each primitive operation, and delegates
// paths outside the restricted subtree to the direct backend.
//
// The document API itself is consumed through the Tree interface.
// FilesystemTree implements it over a billy.Filesystem rooted at the
// storage volume, which is how the backend is exercised off-device.
//
// # Missing Grants
//
// An operation on a restricted path without a matching grant fails with
// CodePermissionMissing and issues a grant request for the narrowest
// target through the negotiator. Nothing is retried automatically: once
// the grant lands the caller repeats the call.
package document
