package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"

	"scanpi/internal/config"
	"scanpi/internal/logging"
	"scanpi/internal/services"
)

// Runner executes shell commands on the scanner host.
type Runner interface {
	Run(ctx context.Context, command string) ([]byte, error)
}

// Downloader copies files from the scanner host to the local machine.
type Downloader interface {
	Download(ctx context.Context, remotePath, localPath string) error
}

// Client is an authenticated SSH connection to the scanner host.
type Client struct {
	conn   *ssh.Client
	target Target
	logger *slog.Logger
}

// Connect dials the configured SSH target. Authentication tries the SSH
// agent first, then unencrypted key files under ~/.ssh.
func Connect(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Client, error) {
	target, err := ParseTarget(cfg.SSHArgs)
	if err != nil {
		return nil, err
	}

	auth, err := authMethods()
	if err != nil {
		return nil, services.Wrap(services.ErrConnection, "checking", "ssh auth", "no usable credentials", err)
	}

	hostKeyCallback, err := hostKeyPolicy(cfg.SSH.StrictHostKey)
	if err != nil {
		return nil, services.Wrap(services.ErrConnection, "checking", "ssh host keys", "load known_hosts", err)
	}

	timeout := time.Duration(cfg.SSH.ConnectTimeout) * time.Second
	clientConfig := &ssh.ClientConfig{
		User:            target.User,
		Auth:            auth,
		HostKeyCallback: hostKeyCallback,
		Timeout:         timeout,
	}

	dialer := net.Dialer{Timeout: timeout}
	netConn, err := dialer.DialContext(ctx, "tcp", target.Addr())
	if err != nil {
		return nil, services.Wrap(services.ErrConnection, "checking", "dial",
			fmt.Sprintf("connect to %s", target.Addr()), err)
	}

	if timeout > 0 {
		_ = netConn.SetDeadline(time.Now().Add(timeout))
	}
	sshConn, chans, reqs, err := ssh.NewClientConn(netConn, target.Addr(), clientConfig)
	if err != nil {
		_ = netConn.Close()
		return nil, services.Wrap(services.ErrConnection, "checking", "handshake",
			fmt.Sprintf("authenticate as %s", target.User), err)
	}
	_ = netConn.SetDeadline(time.Time{})

	if logger == nil {
		logger = logging.NewNop()
	}
	logger.Debug("ssh connected", logging.String("target", target.String()))

	return &Client{
		conn:   ssh.NewClient(sshConn, chans, reqs),
		target: target,
		logger: logger,
	}, nil
}

// Target returns the parsed destination this client is connected to.
func (c *Client) Target() Target {
	return c.target
}

// Run executes a command on the scanner host and returns its stdout. A
// non-zero exit maps to the command error marker with the stderr tail in
// the message; transport failures map to the connection marker.
func (c *Client) Run(ctx context.Context, command string) ([]byte, error) {
	sess, err := c.conn.NewSession()
	if err != nil {
		return nil, services.Wrap(services.ErrConnection, "", "new session", command, err)
	}
	defer sess.Close()

	var stdout, stderr bytes.Buffer
	sess.Stdout = &stdout
	sess.Stderr = &stderr

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = sess.Signal(ssh.SIGKILL)
			_ = sess.Close()
		case <-done:
		}
	}()

	if err := sess.Run(command); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, services.Wrap(services.ErrConnection, "", "run", command, ctxErr)
		}
		var exitErr *ssh.ExitError
		if errors.As(err, &exitErr) {
			detail := fmt.Sprintf("%s (exit %d)", command, exitErr.ExitStatus())
			if msg := stderrTail(stderr.String()); msg != "" {
				detail += ": " + msg
			}
			return nil, services.Wrap(services.ErrCommand, "", "run", detail, nil)
		}
		return nil, services.Wrap(services.ErrConnection, "", "run", command, err)
	}
	return stdout.Bytes(), nil
}

// Close shuts down the SSH connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func authMethods() ([]ssh.AuthMethod, error) {
	var methods []ssh.AuthMethod

	if sock := os.Getenv("SSH_AUTH_SOCK"); sock != "" {
		if conn, err := net.Dial("unix", sock); err == nil {
			methods = append(methods, ssh.PublicKeysCallback(agent.NewClient(conn).Signers))
		}
	}

	if signers := loadKeySigners(); len(signers) > 0 {
		methods = append(methods, ssh.PublicKeys(signers...))
	}

	if len(methods) == 0 {
		return nil, errors.New("no SSH agent and no readable key files")
	}
	return methods, nil
}

func loadKeySigners() []ssh.Signer {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}

	var signers []ssh.Signer
	for _, name := range []string{"id_ed25519", "id_ecdsa", "id_rsa"} {
		data, err := os.ReadFile(filepath.Join(home, ".ssh", name))
		if err != nil {
			continue
		}
		signer, err := ssh.ParsePrivateKey(data)
		if err != nil {
			// Passphrase-protected keys are left to the agent.
			continue
		}
		signers = append(signers, signer)
	}
	return signers
}

func hostKeyPolicy(strict bool) (ssh.HostKeyCallback, error) {
	if !strict {
		return ssh.InsecureIgnoreHostKey(), nil //nolint:gosec
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return knownhosts.New(filepath.Join(home, ".ssh", "known_hosts"))
}

func stderrTail(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[len(lines)-1])
}
