// Package paperless posts merged documents to a Paperless-ngx consumption
// endpoint using token authentication.
package paperless
