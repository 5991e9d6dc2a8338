// Package scanner builds and runs the remote scanimage invocations: one per
// page, writing PDF page files named out01.pdf, out02.pdf, and so on into
// the session's batch directory.
package scanner
