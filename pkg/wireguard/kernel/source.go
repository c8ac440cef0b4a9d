// Package kernel reads WireGuard devices through the kernel interface
// instead of shelling out to the wg binary.
package kernel

import (
	"context"
	"strconv"
	"time"

	"github.com/mrincompetent/wireguard-exporter/pkg/wireguard/dump"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.zx2c4.com/wireguard/wgctrl"
	"golang.zx2c4.com/wireguard/wgctrl/wgtypes"
)

const name = "kernel_source"

type wgClient interface {
	Device(name string) (*wgtypes.Device, error)
	Devices() ([]*wgtypes.Device, error)
	Close() error
}

type Source struct {
	log    *zap.Logger
	client wgClient
}

func New(log *zap.Logger) (*Source, error) {
	client, err := wgctrl.New()
	if err != nil {
		return nil, errors.Wrap(err, "unable to open the WireGuard control client")
	}

	return &Source{
		log:    log.Named(name),
		client: client,
	}, nil
}

func (s *Source) Close() error {
	return s.client.Close()
}

// Snapshot reads the requested devices and converts them into the same model
// the dump parser produces. An empty interface list reads all devices.
func (s *Source) Snapshot(_ context.Context, interfaces []string) (*dump.Snapshot, error) {
	var devices []*wgtypes.Device

	if len(interfaces) == 0 {
		all, err := s.client.Devices()
		if err != nil {
			return nil, errors.Wrap(err, "unable to list WireGuard devices")
		}
		devices = all
	} else {
		for _, interfaceName := range interfaces {
			device, err := s.client.Device(interfaceName)
			if err != nil {
				return nil, errors.Wrapf(err, "unable to read WireGuard device '%s'", interfaceName)
			}
			devices = append(devices, device)
		}
	}

	snapshot := dump.NewSnapshot()
	for _, device := range devices {
		if err := snapshot.Add(convertDevice(device)); err != nil {
			return nil, err
		}
	}

	return snapshot, nil
}

func convertDevice(device *wgtypes.Device) *dump.Interface {
	iface := &dump.Interface{
		Device: dump.Device{
			Name:         device.Name,
			ListenPort:   device.ListenPort,
			FirewallMark: device.FirewallMark,
		},
		Peers: make([]dump.Peer, 0, len(device.Peers)),
	}

	var emptyKey wgtypes.Key

	for _, peer := range device.Peers {
		converted := dump.Peer{
			PublicKey:           peer.PublicKey.String(),
			HasPresharedKey:     peer.PresharedKey != emptyKey,
			ReceiveBytes:        uint64(peer.ReceiveBytes),
			TransmitBytes:       uint64(peer.TransmitBytes),
			PersistentKeepalive: int(peer.PersistentKeepaliveInterval / time.Second),
		}

		if peer.Endpoint != nil {
			converted.Endpoint = &dump.Endpoint{
				Host: peer.Endpoint.IP.String(),
				Port: strconv.Itoa(peer.Endpoint.Port),
			}
		}

		for _, allowedIP := range peer.AllowedIPs {
			converted.AllowedIPs = append(converted.AllowedIPs, allowedIP.String())
		}

		if !peer.LastHandshakeTime.IsZero() {
			converted.LatestHandshake = peer.LastHandshakeTime.Unix()
		}

		iface.Peers = append(iface.Peers, converted)
	}

	return iface
}
