package sensors

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
)

// GpsdSource reads positional fixes from a local gpsd daemon. gpsd
// speaks newline-delimited JSON over TCP: after a ?WATCH command it
// streams report objects, of which TPV carries the fix.
type GpsdSource struct {
	Addr string // defaults to localhost:2947
}

const gpsdWatch = `?WATCH={"enable":true,"json":true}`

// tpvReport is the subset of a gpsd TPV object this source consumes.
// lat/lon are pointers: a TPV without a fix omits them.
type tpvReport struct {
	Class string   `json:"class"`
	Mode  int      `json:"mode"` // 0/1 no fix, 2 2D, 3 3D
	Lat   *float64 `json:"lat"`
	Lon   *float64 `json:"lon"`
	Alt   *float64 `json:"alt"`
	Speed *float64 `json:"speed"`
}

func (g *GpsdSource) Position(ctx context.Context) (Position, error) {
	addr := g.Addr
	if addr == "" {
		addr = "localhost:2947"
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return Position{}, fmt.Errorf("%w: dial gpsd %s: %v", ErrUnavailable, addr, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return Position{}, err
		}
	}

	if _, err := fmt.Fprintln(conn, gpsdWatch); err != nil {
		return Position{}, fmt.Errorf("%w: gpsd watch: %v", ErrUnavailable, err)
	}

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		var rep tpvReport
		if err := json.Unmarshal(scanner.Bytes(), &rep); err != nil {
			continue // non-JSON noise on the stream
		}
		if rep.Class != "TPV" || rep.Mode < 2 || rep.Lat == nil || rep.Lon == nil {
			continue
		}

		pos := Position{
			Latitude:  *rep.Lat,
			Longitude: *rep.Lon,
			Speed:     rep.Speed,
		}
		if rep.Mode >= 3 {
			pos.Altitude = rep.Alt
		}
		return pos, nil
	}

	if err := scanner.Err(); err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return Position{}, fmt.Errorf("%w: no fix within deadline", ErrUnavailable)
		}
		return Position{}, fmt.Errorf("%w: gpsd stream: %v", ErrUnavailable, err)
	}
	return Position{}, fmt.Errorf("%w: gpsd stream closed without a fix", ErrUnavailable)
}

var _ PositionSource = (*GpsdSource)(nil)
