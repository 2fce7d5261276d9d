package probe_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lmoreno/waypoint-agent/internal/probe"
)

func TestClassifyInterface(t *testing.T) {
	cases := map[string]probe.Medium{
		"wlan0":  probe.Wifi,
		"wlp3s0": probe.Wifi,
		"wwan0":  probe.Cellular,
		"usb0":   probe.Cellular,
		"eth0":   probe.Ethernet,
		"enp5s0": probe.Ethernet,
	}
	for name, want := range cases {
		assert.Equal(t, want, probe.ClassifyInterface(name), "interface %s", name)
	}
}

func TestMediaOnline(t *testing.T) {
	assert.False(t, probe.Media{}.Online())
	assert.False(t, probe.Media{probe.None}.Online())
	assert.True(t, probe.Media{probe.Wifi}.Online())
	assert.True(t, probe.Media{probe.Ethernet, probe.Cellular}.Online())
	assert.True(t, probe.Media{probe.Wifi}.Has(probe.Wifi))
	assert.False(t, probe.Media{probe.Wifi}.Has(probe.Cellular))
}
