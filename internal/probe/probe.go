package probe

import (
	"strings"
	"time"

	"github.com/go-ping/ping"
	"github.com/rs/zerolog/log"
	"github.com/vishvananda/netlink"
)

// Medium is the kind of link the default route currently rides on.
type Medium string

const (
	Wifi     Medium = "wifi"
	Cellular Medium = "cellular"
	Ethernet Medium = "ethernet"
	None     Medium = "none"
)

// Media is the set of mediums the probe observed.
type Media []Medium

func (m Media) Has(medium Medium) bool {
	for _, v := range m {
		if v == medium {
			return true
		}
	}
	return false
}

// Online reports whether any connected medium was observed.
func (m Media) Online() bool {
	return len(m) > 0 && !m.Has(None)
}

// Probe reports current reachability. Consulted by the delivery engine,
// never owned by it.
type Probe interface {
	Check() Media
}

// NetlinkProbe classifies the default route's interface and optionally
// verifies reachability with a single ping. Any probe failure is
// reported as no connectivity: buffering a deliverable record is cheaper
// than losing one to a blind send.
type NetlinkProbe struct {
	PingHost    string // empty disables the reachability check
	PingTimeout time.Duration
}

func NewNetlinkProbe(pingHost string, pingTimeout time.Duration) *NetlinkProbe {
	if pingTimeout <= 0 {
		pingTimeout = 3 * time.Second
	}
	return &NetlinkProbe{PingHost: pingHost, PingTimeout: pingTimeout}
}

func (p *NetlinkProbe) Check() Media {
	routes, err := netlink.RouteList(nil, netlink.FAMILY_V4)
	if err != nil {
		log.Warn().Err(err).Msg("route list failed, assuming offline")
		return Media{None}
	}

	var media Media
	for _, r := range routes {
		if r.Dst != nil { // default route only: 0.0.0.0/0
			continue
		}
		link, err := netlink.LinkByIndex(r.LinkIndex)
		if err != nil {
			continue
		}
		m := ClassifyInterface(link.Attrs().Name)
		if !media.Has(m) {
			media = append(media, m)
		}
	}
	if len(media) == 0 {
		return Media{None}
	}

	if p.PingHost != "" && !p.reachable() {
		return Media{None}
	}
	return media
}

func (p *NetlinkProbe) reachable() bool {
	pinger, err := ping.NewPinger(p.PingHost)
	if err != nil {
		log.Warn().Err(err).Msg("pinger create failed")
		return false
	}
	pinger.Count = 1
	pinger.Timeout = p.PingTimeout
	pinger.SetPrivileged(true)

	if err := pinger.Run(); err != nil {
		log.Warn().Err(err).Str("host", p.PingHost).Msg("reachability ping failed")
		return false
	}
	return pinger.Statistics().PacketsRecv > 0
}

// ClassifyInterface maps a kernel interface name to its medium. wwan and
// usb-tethered modems show up as cellular; wl* is wifi; everything else
// wired counts as ethernet.
func ClassifyInterface(name string) Medium {
	switch {
	case strings.HasPrefix(name, "wl"):
		return Wifi
	case strings.HasPrefix(name, "ww"), strings.HasPrefix(name, "usb"):
		return Cellular
	default:
		return Ethernet
	}
}
