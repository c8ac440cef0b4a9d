package wg

import (
	"bytes"
	"context"
	"testing"
	"time"

	customlog "github.com/mrincompetent/wireguard-exporter/pkg/log"
	"github.com/mrincompetent/wireguard-exporter/pkg/wireguard/dump"

	"github.com/go-test/deep"
	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"
)

const (
	wg0Dump = "private-key\tpublic-key\t51820\toff\n" +
		"peer1-key\t(none)\t192.168.1.10:51820\t10.0.0.2/32\t1000\t1234\t5678\toff\n"

	allDump = "wg0\tprivate-key\tpublic-key\t51820\toff\n" +
		"wg0\tpeer1-key\t(none)\t192.168.1.10:51820\t10.0.0.2/32\t1000\t1234\t5678\toff\n"
)

func testClient(t *testing.T, run runFunc) *Client {
	t.Helper()

	log := customlog.NewTestLog(zapcore.AddSync(&bytes.Buffer{}))
	client := New(log, "wg", false, time.Second)
	client.run = run

	return client
}

func staticOutput(t *testing.T, outputs map[string]string) runFunc {
	t.Helper()

	return func(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
		if name != "wg" || len(args) != 3 || args[0] != "show" || args[2] != "dump" {
			t.Fatalf("unexpected invocation: %s %v", name, args)
		}

		output, ok := outputs[args[1]]
		if !ok {
			t.Fatalf("unexpected interface %q", args[1])
		}

		return []byte(output), nil, nil
	}
}

func TestDumpInjectsInterfaceName(t *testing.T) {
	client := testClient(t, staticOutput(t, map[string]string{"wg0": wg0Dump}))

	output, err := client.Dump(context.Background(), "wg0")
	if err != nil {
		t.Fatal(err)
	}

	if output != allDump {
		t.Errorf("expected the interface name to be injected into every line, got:\n%s", output)
	}
}

func TestDumpAllKeepsOutputUntouched(t *testing.T) {
	client := testClient(t, staticOutput(t, map[string]string{AllInterfaces: allDump}))

	output, err := client.Dump(context.Background(), AllInterfaces)
	if err != nil {
		t.Fatal(err)
	}

	if output != allDump {
		t.Errorf("expected the all-interface dump to pass through untouched, got:\n%s", output)
	}
}

func TestDumpFailures(t *testing.T) {
	tests := []struct {
		name string
		run  runFunc
	}{
		{
			name: "non-zero exit",
			run: func(_ context.Context, _ string, _ ...string) ([]byte, []byte, error) {
				return nil, []byte("Unable to access interface: Operation not permitted"), errors.New("exit status 1")
			},
		},
		{
			name: "non-utf8 output",
			run: func(_ context.Context, _ string, _ ...string) ([]byte, []byte, error) {
				return []byte{0xff, 0xfe, 0xfd}, nil, nil
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			client := testClient(t, test.run)

			if _, err := client.Dump(context.Background(), "wg0"); !IsExternalToolFailure(err) {
				t.Fatalf("expected an ExternalToolFailureError, got %v", err)
			}
		})
	}
}

func TestSnapshotMergesInterfaces(t *testing.T) {
	client := testClient(t, staticOutput(t, map[string]string{
		"wg0": wg0Dump,
		"wg1": "private-key\tpublic-key\t51821\toff\n",
	}))

	snapshot, err := client.Snapshot(context.Background(), []string{"wg0", "wg1"})
	if err != nil {
		t.Fatal(err)
	}

	if diff := deep.Equal([]string{"wg0", "wg1"}, snapshot.Names()); diff != nil {
		t.Errorf("got names do not match the expected names. Diff: \n%v", diff)
	}
}

func TestSnapshotDuplicateInterface(t *testing.T) {
	client := testClient(t, staticOutput(t, map[string]string{"wg0": wg0Dump}))

	_, err := client.Snapshot(context.Background(), []string{"wg0", "wg0"})
	if !dump.IsDuplicateInterface(err) {
		t.Fatalf("expected a DuplicateInterfaceError, got %v", err)
	}
}

func TestSnapshotMalformedDump(t *testing.T) {
	client := testClient(t, staticOutput(t, map[string]string{"wg0": "not\ta\tdump\n"}))

	_, err := client.Snapshot(context.Background(), []string{"wg0"})
	if !dump.IsMalformedRecord(err) {
		t.Fatalf("expected a MalformedRecordError, got %v", err)
	}
}
