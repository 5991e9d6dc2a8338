// Package pdf merges the transferred page files into the final document
// using ghostscript's pdfwrite device.
package pdf
