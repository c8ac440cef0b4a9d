package exporter

// Options is the immutable rendering configuration of a scrape.
type Options struct {
	// SeparateAllowedIPs emits one zero-value metric per allowed CIDR
	// instead of a comma joined allowed_ips label on the peer info metric.
	SeparateAllowedIPs bool
	// ExportRemoteIPAndPort adds remote_ip & remote_port labels for peers
	// with a known endpoint.
	ExportRemoteIPAndPort bool
	// ExportLatestHandshakeDelay additionally emits the seconds since the
	// last handshake, computed at render time.
	ExportLatestHandshakeDelay bool
}
