package kernel

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	customlog "github.com/mrincompetent/wireguard-exporter/pkg/log"
	"github.com/mrincompetent/wireguard-exporter/pkg/wireguard/dump"

	"github.com/go-test/deep"
	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"
	"golang.zx2c4.com/wireguard/wgctrl/wgtypes"
)

type fakeClient struct {
	devices map[string]*wgtypes.Device
}

func (f *fakeClient) Device(name string) (*wgtypes.Device, error) {
	device, ok := f.devices[name]
	if !ok {
		return nil, errors.Errorf("no such device: %s", name)
	}
	return device, nil
}

func (f *fakeClient) Devices() ([]*wgtypes.Device, error) {
	devices := make([]*wgtypes.Device, 0, len(f.devices))
	for _, device := range f.devices {
		devices = append(devices, device)
	}
	return devices, nil
}

func (f *fakeClient) Close() error { return nil }

func testSource(devices map[string]*wgtypes.Device) *Source {
	return &Source{
		log:    customlog.NewTestLog(zapcore.AddSync(&bytes.Buffer{})),
		client: &fakeClient{devices: devices},
	}
}

func mustParseKey(t *testing.T, s string) wgtypes.Key {
	t.Helper()

	key, err := wgtypes.ParseKey(s)
	if err != nil {
		t.Fatal(err)
	}
	return key
}

func TestSnapshotConvertsDevices(t *testing.T) {
	const testPubKey = "4Uz+l6VDzs4LCwPv4eCuPg2DTROOqjgHF/Ic3lPeYgw="
	key := mustParseKey(t, testPubKey)

	_, allowedNet, err := net.ParseCIDR("10.0.0.2/32")
	if err != nil {
		t.Fatal(err)
	}

	source := testSource(map[string]*wgtypes.Device{
		"wg0": {
			Name:       "wg0",
			ListenPort: 51820,
			Peers: []wgtypes.Peer{
				{
					PublicKey:                   key,
					Endpoint:                    &net.UDPAddr{IP: net.ParseIP("192.168.1.10"), Port: 51820},
					AllowedIPs:                  []net.IPNet{*allowedNet},
					LastHandshakeTime:           time.Unix(1000, 0),
					ReceiveBytes:                1234,
					TransmitBytes:               5678,
					PersistentKeepaliveInterval: 25 * time.Second,
				},
			},
		},
	})

	snapshot, err := source.Snapshot(context.Background(), []string{"wg0"})
	if err != nil {
		t.Fatal(err)
	}

	expected := &dump.Interface{
		Device: dump.Device{Name: "wg0", ListenPort: 51820},
		Peers: []dump.Peer{
			{
				PublicKey:           testPubKey,
				Endpoint:            &dump.Endpoint{Host: "192.168.1.10", Port: "51820"},
				AllowedIPs:          []string{"10.0.0.2/32"},
				LatestHandshake:     1000,
				ReceiveBytes:        1234,
				TransmitBytes:       5678,
				PersistentKeepalive: 25,
			},
		},
	}

	if diff := deep.Equal(expected, snapshot.Get("wg0")); diff != nil {
		t.Errorf("got interface does not match the expected interface. Diff: \n%v", diff)
	}
}

func TestSnapshotUnknownDevice(t *testing.T) {
	source := testSource(map[string]*wgtypes.Device{})

	if _, err := source.Snapshot(context.Background(), []string{"wg0"}); err == nil {
		t.Fatal("expected an error for an unknown device")
	}
}
