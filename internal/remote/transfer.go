package remote

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/sftp"

	"scanpi/internal/services"
)

// Transfer copies files off the scanner host over SFTP.
type Transfer struct {
	client *sftp.Client
}

// NewTransfer opens an SFTP subsystem on an existing SSH connection.
func NewTransfer(c *Client) (*Transfer, error) {
	client, err := sftp.NewClient(c.conn)
	if err != nil {
		return nil, services.Wrap(services.ErrConnection, "transferring", "open sftp", c.target.String(), err)
	}
	return &Transfer{client: client}, nil
}

// Download copies one remote file to localPath, creating parent directories
// as needed. The destination is written atomically via a temp file.
func (t *Transfer) Download(ctx context.Context, remotePath, localPath string) error {
	if err := ctx.Err(); err != nil {
		return services.Wrap(services.ErrTransfer, "transferring", "download", remotePath, err)
	}

	src, err := t.client.Open(remotePath)
	if err != nil {
		return services.Wrap(services.ErrTransfer, "transferring", "open remote", remotePath, err)
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return services.Wrap(services.ErrTransfer, "transferring", "create local dir", filepath.Dir(localPath), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(localPath), ".scanpi-*")
	if err != nil {
		return services.Wrap(services.ErrTransfer, "transferring", "create temp file", localPath, err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := io.Copy(tmp, src); err != nil {
		return services.Wrap(services.ErrTransfer, "transferring", "copy",
			fmt.Sprintf("%s -> %s", remotePath, localPath), err)
	}
	if err := tmp.Close(); err != nil {
		return services.Wrap(services.ErrTransfer, "transferring", "flush", localPath, err)
	}
	if err := os.Rename(tmpName, localPath); err != nil {
		return services.Wrap(services.ErrTransfer, "transferring", "rename", localPath, err)
	}
	return nil
}

// Remove deletes a remote file. Used for best-effort batch cleanup.
func (t *Transfer) Remove(ctx context.Context, remotePath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return t.client.Remove(remotePath)
}

// RemoveDir deletes a remote directory once its contents are gone.
func (t *Transfer) RemoveDir(ctx context.Context, remotePath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return t.client.RemoveDirectory(remotePath)
}

// Close shuts down the SFTP subsystem.
func (t *Transfer) Close() error {
	if t == nil || t.client == nil {
		return nil
	}
	return t.client.Close()
}
