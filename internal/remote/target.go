package remote

import (
	"fmt"
	"net"
	"os/user"
	"strconv"
	"strings"

	"scanpi/internal/services"
)

// Target is a parsed SSH destination in [user@]host[:port] form.
type Target struct {
	User string
	Host string
	Port int
}

// ParseTarget splits an ssh_args value into user, host, and port. A missing
// user falls back to the current OS user and a missing port to 22.
func ParseTarget(value string) (Target, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Target{}, services.Wrap(services.ErrConfig, "checking", "parse target", "ssh_args is empty", nil)
	}

	target := Target{Port: 22}

	if at := strings.LastIndex(value, "@"); at >= 0 {
		target.User = value[:at]
		value = value[at+1:]
	}
	if target.User == "" {
		current, err := user.Current()
		if err != nil {
			return Target{}, services.Wrap(services.ErrConfig, "checking", "parse target", "resolve current user", err)
		}
		target.User = current.Username
	}

	if colon := strings.LastIndex(value, ":"); colon >= 0 {
		port, err := strconv.Atoi(value[colon+1:])
		if err != nil || port < 1 || port > 65535 {
			return Target{}, services.Wrap(services.ErrConfig, "checking", "parse target",
				fmt.Sprintf("invalid port %q", value[colon+1:]), nil)
		}
		target.Port = port
		value = value[:colon]
	}

	if value == "" {
		return Target{}, services.Wrap(services.ErrConfig, "checking", "parse target", "missing host", nil)
	}
	target.Host = value

	return target, nil
}

// Addr returns the host:port dial address.
func (t Target) Addr() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
}

// String renders the target in user@host:port form.
func (t Target) String() string {
	return fmt.Sprintf("%s@%s:%d", t.User, t.Host, t.Port)
}
