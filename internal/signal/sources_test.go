package signal_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmoreno/waypoint-agent/internal/signal"
)

const wirelessTable = `Inter-| sta-|   Quality        |   Discarded packets               | Missed | WE
 face | tus | link level noise |  nwid  crypt   frag  retry   misc | beacon | 22
 wlan0: 0000   54.  -62.  -256        0      0      0      0      0        0
 wlan1: 0000   32.  -81.  -256        0      0      0      0      0        0
`

func writeWireless(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wireless")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestProcSourceParsesLevel(t *testing.T) {
	src := &signal.ProcSource{Path: writeWireless(t, wirelessTable)}

	v, err := src.Query(context.Background())
	require.NoError(t, err)
	assert.Equal(t, -62, v)
}

func TestProcSourceSelectsInterface(t *testing.T) {
	src := &signal.ProcSource{Path: writeWireless(t, wirelessTable), Iface: "wlan1"}

	v, err := src.Query(context.Background())
	require.NoError(t, err)
	assert.Equal(t, -81, v)
}

func TestProcSourceMissingFileIsUnavailable(t *testing.T) {
	src := &signal.ProcSource{Path: filepath.Join(t.TempDir(), "nope")}

	_, err := src.Query(context.Background())
	assert.ErrorIs(t, err, signal.ErrUnavailable)
}

func TestProcSourceNoWirelessInterfaces(t *testing.T) {
	header := `Inter-| sta-|   Quality        |   Discarded packets               | Missed | WE
 face | tus | link level noise |  nwid  crypt   frag  retry   misc | beacon | 22
`
	src := &signal.ProcSource{Path: writeWireless(t, header)}

	_, err := src.Query(context.Background())
	assert.ErrorIs(t, err, signal.ErrUnavailable)
}
