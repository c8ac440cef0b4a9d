// Package wg drives the external wg binary and turns its dump output into
// snapshots.
package wg

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mrincompetent/wireguard-exporter/pkg/wireguard/dump"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	name = "wg_client"

	// AllInterfaces asks wg for every interface in a single invocation.
	AllInterfaces = "all"
)

type runFunc func(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)

type Client struct {
	log     *zap.Logger
	path    string
	sudo    bool
	timeout time.Duration
	run     runFunc
}

func New(log *zap.Logger, path string, prependSudo bool, timeout time.Duration) *Client {
	return &Client{
		log:     log.Named(name),
		path:    path,
		sudo:    prependSudo,
		timeout: timeout,
		run:     runCommand,
	}
}

// BinaryCheck reports whether the wg binary can be resolved.
// Used as a readiness check on the http server.
func BinaryCheck(path string) func() error {
	return func() error {
		_, err := exec.LookPath(path)
		return err
	}
}

// Snapshot queries every requested interface sequentially and merges the
// results. An empty interface list queries all interfaces at once.
func (c *Client) Snapshot(ctx context.Context, interfaces []string) (*dump.Snapshot, error) {
	if len(interfaces) == 0 {
		interfaces = []string{AllInterfaces}
	}

	snapshot := dump.NewSnapshot()

	for _, interfaceName := range interfaces {
		output, err := c.Dump(ctx, interfaceName)
		if err != nil {
			return nil, err
		}

		parsed, err := dump.Parse(output)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to parse the dump for interface '%s'", interfaceName)
		}

		if err := snapshot.Merge(parsed); err != nil {
			return nil, err
		}
	}

	return snapshot, nil
}

// Dump runs `wg show <interface> dump` and returns its output normalized to
// the uniform layout where every line starts with the interface name.
// The dump for a single interface omits that column, so it gets injected
// here, at the boundary, to keep the parser's input single shaped.
func (c *Client) Dump(ctx context.Context, interfaceName string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	binary := c.path
	args := []string{"show", interfaceName, "dump"}
	if c.sudo {
		args = append([]string{c.path}, args...)
		binary = "sudo"
	}

	c.log.Debug("Invoking the wg binary", zap.String("interface", interfaceName))

	stdout, stderr, err := c.run(ctx, binary, args...)
	if err != nil {
		return "", ExternalToolFailureError{
			Interface: interfaceName,
			Stderr:    strings.TrimSpace(string(stderr)),
			cause:     err,
		}
	}

	if !utf8.Valid(stdout) {
		return "", ExternalToolFailureError{
			Interface: interfaceName,
			Reason:    "output is not valid UTF-8",
		}
	}

	output := string(stdout)
	if interfaceName != AllInterfaces {
		output = prependInterface(interfaceName, output)
	}

	return output, nil
}

func prependInterface(interfaceName, output string) string {
	var b strings.Builder

	for _, line := range strings.Split(output, "\n") {
		if line == "" {
			continue
		}
		b.WriteString(interfaceName)
		b.WriteByte('\t')
		b.WriteString(line)
		b.WriteByte('\n')
	}

	return b.String()
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()

	return stdout.Bytes(), stderr.Bytes(), err
}
