package webdriver

import (
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// freePort grabs an ephemeral port that is free at the time of the call.
func freePort(t *testing.T) int {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()
	return listener.Addr().(*net.TCPAddr).Port
}

func TestNewDriver_Defaults(t *testing.T) {
	d := NewDriver("/usr/bin/chromedriver", 4444)

	assert.Equal(t, 4444, d.Port)
	assert.Equal(t, DefaultStartTimeout, d.StartTimeout)
	assert.Equal(t, "http://localhost:4444", d.URL())
}

func TestStart_PortAlreadyInUse(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()
	port := listener.Addr().(*net.TCPAddr).Port

	d := NewDriver("true", port)
	err = d.Start()

	// A concurrent invocation holding the port fails at the bind check,
	// before any subprocess is launched.
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already in use")
}

func TestStart_DriverNeverListens(t *testing.T) {
	d := NewDriver("true", freePort(t))
	d.StartTimeout = 300 * time.Millisecond

	err := d.Start()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not ready")
	// A failed start leaves the driver stoppable-free.
	assert.Error(t, d.Stop())
}

func TestStop_NotRunning(t *testing.T) {
	d := NewDriver("true", freePort(t))
	assert.Error(t, d.Stop())
}

func TestProbePort_Ready(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()
	port := listener.Addr().(*net.TCPAddr).Port

	assert.NoError(t, probePort(port, time.Second))
}

func TestProbePort_Timeout(t *testing.T) {
	port := freePort(t)

	start := time.Now()
	err := probePort(port, 250*time.Millisecond)

	require.Error(t, err)
	assert.Contains(t, err.Error(), fmt.Sprintf("127.0.0.1:%d", port))
	assert.Less(t, time.Since(start), 5*time.Second)
}
