// Package remote manages the SSH connection to the scanner host: target
// parsing, authenticated command execution, and SFTP file transfer.
//
// Commands that exit non-zero surface as retryable command errors while
// transport failures surface as connection errors, so the workflow can
// distinguish a mispositioned page from a dead link.
package remote
