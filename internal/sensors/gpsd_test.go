package sensors_test

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmoreno/waypoint-agent/internal/sensors"
)

// fakeGpsd accepts one connection, waits for the WATCH command and
// streams the given report lines.
func fakeGpsd(t *testing.T, lines ...string) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		bufio.NewScanner(conn).Scan() // consume ?WATCH
		for _, line := range lines {
			fmt.Fprintln(conn, line)
		}
	}()
	return ln.Addr().String()
}

func TestGpsdSourceReadsTPV(t *testing.T) {
	addr := fakeGpsd(t,
		`{"class":"VERSION","release":"3.25"}`,
		`{"class":"TPV","mode":1}`,
		`{"class":"TPV","mode":3,"lat":40.4,"lon":-3.7,"alt":620.5,"speed":1.25}`,
	)
	src := &sensors.GpsdSource{Addr: addr}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	pos, err := src.Position(ctx)
	require.NoError(t, err)
	assert.Equal(t, 40.4, pos.Latitude)
	assert.Equal(t, -3.7, pos.Longitude)
	require.NotNil(t, pos.Altitude)
	assert.Equal(t, 620.5, *pos.Altitude)
	require.NotNil(t, pos.Speed)
	assert.Equal(t, 1.25, *pos.Speed)
}

func TestGpsdSource2DFixOmitsAltitude(t *testing.T) {
	addr := fakeGpsd(t, `{"class":"TPV","mode":2,"lat":1.0,"lon":2.0,"alt":99.0}`)
	src := &sensors.GpsdSource{Addr: addr}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	pos, err := src.Position(ctx)
	require.NoError(t, err)
	assert.Nil(t, pos.Altitude)
}

func TestGpsdSourceNoFixBeforeStreamEnds(t *testing.T) {
	addr := fakeGpsd(t, `{"class":"TPV","mode":0}`)
	src := &sensors.GpsdSource{Addr: addr}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := src.Position(ctx)
	assert.ErrorIs(t, err, sensors.ErrUnavailable)
}

func TestGpsdSourceDialFailure(t *testing.T) {
	src := &sensors.GpsdSource{Addr: "127.0.0.1:1"} // nothing listens here

	_, err := src.Position(context.Background())
	assert.ErrorIs(t, err, sensors.ErrUnavailable)
}
