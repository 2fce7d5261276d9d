package sensors

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// SysfsBattery reads the charge percentage the kernel exposes under
// /sys/class/power_supply.
type SysfsBattery struct {
	Path string // defaults to /sys/class/power_supply/BAT0/capacity
}

func (s *SysfsBattery) Level() (int, error) {
	path := s.Path
	if path == "" {
		path = "/sys/class/power_supply/BAT0/capacity"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("%w: read %s: %v", ErrUnavailable, path, err)
	}

	v, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("%w: parse capacity %q: %v", ErrUnavailable, strings.TrimSpace(string(data)), err)
	}

	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	return v, nil
}

var _ BatterySource = (*SysfsBattery)(nil)
