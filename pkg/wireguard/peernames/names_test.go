package peernames

import (
	"testing"

	"github.com/go-test/deep"
)

func TestParseNameMapping(t *testing.T) {
	table, err := ParseNameMapping(`{"abc123": "Router", "def456": "Phone"}`)
	if err != nil {
		t.Fatal(err)
	}

	expected := Table{
		"abc123": {PublicKey: "abc123", Description: Name("Router")},
		"def456": {PublicKey: "def456", Description: Name("Phone")},
	}
	if diff := deep.Equal(expected, table); diff != nil {
		t.Errorf("got table does not match the expected table. Diff: \n%v", diff)
	}
}

func TestParseNameMappingErrors(t *testing.T) {
	tests := []struct {
		name string
		blob string
	}{
		{name: "malformed json", blob: `{"abc123": `},
		{name: "top level array", blob: `["abc123"]`},
		{name: "non-string values", blob: `{"abc123": 5}`},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := ParseNameMapping(test.blob); !IsInvalidNameMapping(err) {
				t.Fatalf("expected an InvalidNameMappingError, got %v", err)
			}
		})
	}
}

func TestMergePrecedence(t *testing.T) {
	fromConfig := Table{
		"shared-key": {PublicKey: "shared-key", AllowedIPs: "10.0.0.0/24", Description: Name("Alice")},
		"config-key": {PublicKey: "config-key", AllowedIPs: "10.0.1.0/24", Description: Name("Carol")},
	}
	fromNames := Table{
		"shared-key": {PublicKey: "shared-key", Description: Name("Bob")},
		"names-key":  {PublicKey: "names-key", Description: Name("Router")},
	}

	expected := Table{
		// the name mapping wins, the config sourced allowed IPs survive
		"shared-key": {PublicKey: "shared-key", AllowedIPs: "10.0.0.0/24", Description: Name("Bob")},
		"config-key": {PublicKey: "config-key", AllowedIPs: "10.0.1.0/24", Description: Name("Carol")},
		"names-key":  {PublicKey: "names-key", Description: Name("Router")},
	}

	if diff := deep.Equal(expected, Merge(fromConfig, fromNames)); diff != nil {
		t.Errorf("got table does not match the expected table. Diff: \n%v", diff)
	}
}

func TestMergeWithEmptySources(t *testing.T) {
	if len(Merge(nil, nil)) != 0 {
		t.Error("expected an empty table when no sources are configured")
	}

	fromNames := Table{"abc123": {PublicKey: "abc123", Description: Name("Router")}}
	merged := Merge(nil, fromNames)
	if diff := deep.Equal(fromNames, merged); diff != nil {
		t.Errorf("got table does not match the expected table. Diff: \n%v", diff)
	}
}
