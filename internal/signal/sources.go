package signal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// ProcSource reads wireless link quality from /proc/net/wireless. It is
// the primary source: cheap, no subprocess, but only present on hosts
// where the kernel exposes the wireless procfs table.
type ProcSource struct {
	Path  string // defaults to /proc/net/wireless
	Iface string // empty matches the first wireless interface listed
}

func (p *ProcSource) Query(_ context.Context) (int, error) {
	path := p.Path
	if path == "" {
		path = "/proc/net/wireless"
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, ErrUnavailable
		}
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		if line <= 2 { // two header lines
			continue
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 {
			continue
		}
		iface := strings.TrimSuffix(fields[0], ":")
		if p.Iface != "" && iface != p.Iface {
			continue
		}
		// column 3 is signal level in dBm, printed with a trailing dot
		level := strings.TrimSuffix(fields[3], ".")
		v, err := strconv.ParseFloat(level, 64)
		if err != nil {
			return 0, fmt.Errorf("parse signal level %q: %w", fields[3], err)
		}
		return int(v), nil
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}
	return 0, ErrUnavailable
}

// IWSource shells out to `iw dev <iface> link` and parses the reported
// signal. Slower than procfs but reachable from contexts where the
// procfs table is not, so it serves as the bounded-wait fallback.
type IWSource struct {
	Iface string
}

func (s *IWSource) Query(ctx context.Context) (int, error) {
	out, err := exec.CommandContext(ctx, "iw", "dev", s.Iface, "link").Output()
	if err != nil {
		return 0, fmt.Errorf("iw dev %s link: %w", s.Iface, err)
	}

	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "signal:") {
			continue
		}
		// "signal: -62 dBm"
		fields := strings.Fields(line)
		if len(fields) < 2 {
			break
		}
		v, err := strconv.Atoi(fields[1])
		if err != nil {
			return 0, fmt.Errorf("parse iw signal %q: %w", line, err)
		}
		return v, nil
	}
	return 0, fmt.Errorf("iw dev %s link: no signal line", s.Iface)
}
