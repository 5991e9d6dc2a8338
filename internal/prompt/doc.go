// Package prompt handles the interactive conversation with the operator:
// page count, per-page confirmation, retry decisions, output naming, and
// the upload opt-in.
package prompt
