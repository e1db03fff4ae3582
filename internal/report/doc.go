// Package report renders completed run reports in several formats:
// a human-readable text summary for the terminal and the report file,
// GitHub-flavored Markdown, and JSON. All writers implement the same
// Writer interface so the caller can fan one report out to multiple
// destinations.
package report
