// Package ui renders git command lifecycle events as short console sentences.
//
// Repository mutations are reported at info level and read-only queries at debug
// level, so a default gitsync run shows only the commands that changed something.
package ui
