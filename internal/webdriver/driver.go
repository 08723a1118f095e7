// Package webdriver provisions and manages a local chromedriver server.
package webdriver

import (
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/michael-kerscher/run-evaluator/internal/logger"
)

// DefaultStartTimeout bounds how long Start waits for chromedriver to
// accept connections.
const DefaultStartTimeout = 20 * time.Second

// Driver manages a chromedriver server subprocess bound to a fixed port.
// The zero value is not usable; construct with NewDriver.
type Driver struct {
	// Port the server listens on for the lifetime of the subprocess.
	Port int
	// StartTimeout bounds the readiness probe in Start.
	StartTimeout time.Duration

	path string
	cmd  *exec.Cmd
}

// NewDriver returns a Driver that will run the chromedriver binary at path
// on the given port.
func NewDriver(path string, port int) *Driver {
	return &Driver{
		Port:         port,
		StartTimeout: DefaultStartTimeout,
		path:         path,
	}
}

// URL returns the webdriver endpoint of the running server.
func (d *Driver) URL() string {
	return fmt.Sprintf("http://localhost:%d", d.Port)
}

// Start launches the chromedriver subprocess and blocks until it accepts
// TCP connections on Port or StartTimeout elapses. The subprocess inherits
// stdout and stderr. A port that is already bound by another process is a
// hard error; there is no negotiation or retry.
func (d *Driver) Start() error {
	if d.cmd != nil {
		return errors.New("chromedriver already running")
	}
	if err := checkPortFree(d.Port); err != nil {
		return err
	}

	cmd := exec.Command(d.path, "--port="+strconv.Itoa(d.Port))
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	logger.Debug("starting chromedriver on port %d", d.Port)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start chromedriver: %w", err)
	}
	d.cmd = cmd

	if err := probePort(d.Port, d.StartTimeout); err != nil {
		d.cmd.Process.Kill()
		d.cmd.Wait()
		d.cmd = nil
		return fmt.Errorf("chromedriver not ready: %w", err)
	}
	return nil
}

// Stop interrupts the chromedriver subprocess, releasing the port.
func (d *Driver) Stop() error {
	if d.cmd == nil {
		return errors.New("chromedriver not running")
	}
	defer func() {
		d.cmd = nil
	}()
	if err := d.cmd.Process.Signal(os.Interrupt); err != nil {
		return fmt.Errorf("stop chromedriver: %w", err)
	}
	return nil
}

// checkPortFree reports an error if the port cannot be bound locally.
// A concurrent invocation that already holds the port fails here, before
// chromedriver or the evaluator is started.
func checkPortFree(port int) error {
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d already in use: %w", port, err)
	}
	listener.Close()
	return nil
}

// probePort polls the port until it accepts a connection or the timeout
// is up.
func probePort(port int, timeout time.Duration) error {
	address := fmt.Sprintf("127.0.0.1:%d", port)
	deadline := time.Now().Add(timeout)
	for {
		conn, err := net.Dial("tcp", address)
		if err == nil {
			return conn.Close()
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timeout waiting for %s", address)
		}
		time.Sleep(100 * time.Millisecond)
	}
}
