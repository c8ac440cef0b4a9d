package dump

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	fieldNone = "(none)"
	fieldOff  = "off"

	deviceFieldCount = 5
	peerFieldCount   = 9
)

// Parse converts the tab separated output of `wg show <interface> dump` into
// a Snapshot. It expects the uniform layout where every line carries the
// interface name as its first field. Callers invoking wg for a single
// interface must inject the name before handing the output to Parse.
func Parse(text string) (*Snapshot, error) {
	snapshot := NewSnapshot()

	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields := strings.Split(line, "\t")
		switch len(fields) {
		case deviceFieldCount:
			if err := parseDeviceLine(snapshot, line, fields); err != nil {
				return nil, err
			}
		case peerFieldCount:
			if err := parsePeerLine(snapshot, line, fields); err != nil {
				return nil, err
			}
		default:
			return nil, MalformedRecordError{
				Line:   line,
				Reason: fmt.Sprintf("expected %d (device) or %d (peer) fields, got %d", deviceFieldCount, peerFieldCount, len(fields)),
			}
		}
	}

	return snapshot, nil
}

// A device line is `interface private-key public-key listen-port fwmark`.
// Both keys are discarded right here so they can never end up in a metric.
func parseDeviceLine(snapshot *Snapshot, line string, fields []string) error {
	iface := snapshot.ensure(fields[0])

	if port := fields[3]; port != "" {
		listenPort, err := strconv.Atoi(port)
		if err != nil {
			return MalformedRecordError{Line: line, Reason: fmt.Sprintf("invalid listen port %q", port)}
		}
		iface.Device.ListenPort = listenPort
	}

	if fwmark := fields[4]; fwmark != fieldOff && fwmark != "" {
		// fwmarks are commonly printed as hex
		mark, err := strconv.ParseInt(fwmark, 0, 32)
		if err != nil {
			return MalformedRecordError{Line: line, Reason: fmt.Sprintf("invalid fwmark %q", fwmark)}
		}
		iface.Device.FirewallMark = int(mark)
	}

	return nil
}

// A peer line is `interface public-key preshared-key endpoint allowed-ips
// latest-handshake rx-bytes tx-bytes keepalive`.
func parsePeerLine(snapshot *Snapshot, line string, fields []string) error {
	peer := Peer{
		PublicKey:       fields[1],
		HasPresharedKey: fields[2] != fieldNone && fields[2] != "none",
	}

	if fields[3] != fieldNone {
		endpoint, err := parseEndpoint(fields[3])
		if err != nil {
			return MalformedRecordError{Line: line, Reason: err.Error()}
		}
		peer.Endpoint = endpoint
	}

	if fields[4] != fieldNone && fields[4] != "" {
		peer.AllowedIPs = strings.Split(fields[4], ",")
	}

	latestHandshake, err := strconv.ParseInt(fields[5], 10, 64)
	if err != nil {
		return MalformedRecordError{Line: line, Reason: fmt.Sprintf("invalid latest handshake %q", fields[5])}
	}
	peer.LatestHandshake = latestHandshake

	if peer.ReceiveBytes, err = strconv.ParseUint(fields[6], 10, 64); err != nil {
		return MalformedRecordError{Line: line, Reason: fmt.Sprintf("invalid receive byte count %q", fields[6])}
	}

	if peer.TransmitBytes, err = strconv.ParseUint(fields[7], 10, 64); err != nil {
		return MalformedRecordError{Line: line, Reason: fmt.Sprintf("invalid transmit byte count %q", fields[7])}
	}

	if fields[8] != fieldOff {
		keepalive, err := strconv.Atoi(fields[8])
		if err != nil || keepalive < 0 {
			return MalformedRecordError{Line: line, Reason: fmt.Sprintf("invalid persistent keepalive %q", fields[8])}
		}
		peer.PersistentKeepalive = keepalive
	}

	iface := snapshot.ensure(fields[0])
	iface.Peers = append(iface.Peers, peer)

	return nil
}

// parseEndpoint splits `host:port` on the last colon. IPv6 hosts are printed
// bracketed and get unbracketed here.
func parseEndpoint(s string) (*Endpoint, error) {
	idx := strings.LastIndex(s, ":")
	if idx < 0 {
		return nil, fmt.Errorf("endpoint %q has no port", s)
	}

	host, port := s[:idx], s[idx+1:]
	if strings.HasPrefix(host, "[") && strings.HasSuffix(host, "]") {
		host = host[1 : len(host)-1]
	}

	return &Endpoint{Host: host, Port: port}, nil
}
