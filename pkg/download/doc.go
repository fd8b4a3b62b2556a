// Package download fetches the files of a resolved plan into a directory.
//
// A [Coordinator] streams each package's file with go.bug.st/downloader on
// a bounded worker pool and reports through a [progress.Sink]:
//
//   - progress 0 when an item starts,
//   - throttled, strictly increasing percentages while bytes arrive (only
//     when the server reports a size),
//   - progress 100 on success, or an error event with a short message.
//
// Failures are isolated per item and never leave a partial file behind.
// [Coordinator.Run] returns only after every item has finished.
package download
