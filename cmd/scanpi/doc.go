// Command scanpi scans documents on a remote scanner over SSH, merges the
// page PDFs locally, and optionally uploads the result to Paperless.
package main
