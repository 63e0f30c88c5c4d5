// Package fs abstracts the file operations of the local blob store so tests
// can inject failures.
//
//   - [LocalFS] forwards to the os package; [Default] is a LocalFS.
//   - [FaultyFS] wraps another FileSystem and fails writes, syncs, closes or
//     renames of files whose name contains a configured pattern.
//
// Operations take no context: local file calls are not interruptible.
package fs
