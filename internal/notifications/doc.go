// Package notifications delivers build outcomes to ntfy.
//
// Publish maps an Event and its Payload onto an ntfy message with title, tags,
// and priority headers. Without a configured topic the package hands back a
// noop service, so callers never branch on whether notifications are enabled.
package notifications
