package exporter

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mrincompetent/wireguard-exporter/pkg/wireguard/dump"
	"github.com/mrincompetent/wireguard-exporter/pkg/wireguard/peernames"

	dto "github.com/prometheus/client_model/go"
)

const (
	interfaceInfoName  = "wireguard_interface_info"
	peerInfoName       = "wireguard_peer_info"
	allowedIPsName     = "wireguard_peer_allowed_ips"
	sentBytesName      = "wireguard_sent_bytes_total"
	receivedBytesName  = "wireguard_received_bytes_total"
	handshakeName      = "wireguard_latest_handshake_seconds"
	handshakeDelayName = "wireguard_latest_handshake_delay_seconds"
)

// Render walks the snapshot, joins each peer against the metadata table and
// produces the metric families for one scrape. Families are sorted by name,
// interfaces by name, peers stay in discovery order. Label escaping is left
// to the exposition encoder.
func Render(snapshot *dump.Snapshot, table peernames.Table, options Options, now time.Time) []*dto.MetricFamily {
	r := renderPass{
		families: map[string]*dto.MetricFamily{},
		table:    table,
		options:  options,
		now:      now,
	}

	for _, name := range snapshot.Names() {
		iface := snapshot.Get(name)
		r.renderInterface(&iface.Device)
		for i := range iface.Peers {
			r.renderPeer(iface.Device.Name, &iface.Peers[i])
		}
	}

	families := make([]*dto.MetricFamily, 0, len(r.families))
	for _, family := range r.families {
		families = append(families, family)
	}
	sort.Slice(families, func(i, j int) bool { return families[i].GetName() < families[j].GetName() })

	return families
}

type renderPass struct {
	families map[string]*dto.MetricFamily
	table    peernames.Table
	options  Options
	now      time.Time
}

func (r *renderPass) renderInterface(device *dump.Device) {
	labels := []*dto.LabelPair{label("interface", device.Name)}
	if device.ListenPort > 0 {
		labels = append(labels, label("listen_port", strconv.Itoa(device.ListenPort)))
	}
	if device.FirewallMark > 0 {
		labels = append(labels, label("fwmark", strconv.Itoa(device.FirewallMark)))
	}

	r.append(interfaceInfoName, "Information about a WireGuard interface.", dto.MetricType_GAUGE,
		gauge(1, labels))
}

func (r *renderPass) renderPeer(interfaceName string, peer *dump.Peer) {
	base := []*dto.LabelPair{
		label("interface", interfaceName),
		label("public_key", peer.PublicKey),
	}

	info := copyPairs(base)
	if !r.options.SeparateAllowedIPs {
		info = append(info, label("allowed_ips", strings.Join(peer.AllowedIPs, ",")))
	}

	if entry, found := r.table[peer.PublicKey]; found {
		switch description := entry.Description.(type) {
		case peernames.Name:
			info = append(info, label("friendly_name", string(description)))
		case peernames.LabelSet:
			for name, value := range description {
				info = append(info, label(name, value))
			}
		}
	}

	if r.options.ExportRemoteIPAndPort && peer.Endpoint != nil {
		info = append(info,
			label("remote_ip", peer.Endpoint.Host),
			label("remote_port", peer.Endpoint.Port),
		)
	}

	r.append(peerInfoName, "Information about a WireGuard peer.", dto.MetricType_GAUGE,
		gauge(1, info))

	if r.options.SeparateAllowedIPs {
		for _, cidr := range peer.AllowedIPs {
			r.append(allowedIPsName, "A WireGuard peer's allowed CIDR, one metric per entry.", dto.MetricType_GAUGE,
				gauge(0, append(copyPairs(base), label("allowed_ip", cidr))))
		}
	}

	r.append(sentBytesName, "Bytes sent to the peer.", dto.MetricType_COUNTER,
		counter(float64(peer.TransmitBytes), copyPairs(base)))
	r.append(receivedBytesName, "Bytes received from the peer.", dto.MetricType_COUNTER,
		counter(float64(peer.ReceiveBytes), copyPairs(base)))

	// 0 means the peer never completed a handshake and is passed through as-is.
	r.append(handshakeName, "UNIX timestamp seconds of the last handshake with the peer.", dto.MetricType_GAUGE,
		gauge(float64(peer.LatestHandshake), copyPairs(base)))

	if r.options.ExportLatestHandshakeDelay && peer.LatestHandshake > 0 {
		delay := r.now.Unix() - peer.LatestHandshake
		r.append(handshakeDelayName, "Seconds since the last handshake with the peer, computed at scrape time.", dto.MetricType_GAUGE,
			gauge(float64(delay), copyPairs(base)))
	}
}

func (r *renderPass) append(name, help string, metricType dto.MetricType, metric *dto.Metric) {
	family, exists := r.families[name]
	if !exists {
		family = &dto.MetricFamily{
			Name: stringPtr(name),
			Help: stringPtr(help),
			Type: metricType.Enum(),
		}
		r.families[name] = family
	}

	family.Metric = append(family.Metric, metric)
}

func label(name, value string) *dto.LabelPair {
	return &dto.LabelPair{Name: stringPtr(name), Value: stringPtr(value)}
}

func gauge(value float64, labels []*dto.LabelPair) *dto.Metric {
	sortLabels(labels)
	return &dto.Metric{Label: labels, Gauge: &dto.Gauge{Value: float64Ptr(value)}}
}

func counter(value float64, labels []*dto.LabelPair) *dto.Metric {
	sortLabels(labels)
	return &dto.Metric{Label: labels, Counter: &dto.Counter{Value: float64Ptr(value)}}
}

func copyPairs(labels []*dto.LabelPair) []*dto.LabelPair {
	return append(make([]*dto.LabelPair, 0, len(labels)+2), labels...)
}

func sortLabels(labels []*dto.LabelPair) {
	sort.Slice(labels, func(i, j int) bool { return labels[i].GetName() < labels[j].GetName() })
}

func stringPtr(s string) *string { return &s }

func float64Ptr(f float64) *float64 { return &f }
