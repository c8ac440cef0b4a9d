// Package peernames resolves human supplied peer metadata from WireGuard
// config files and JSON name mappings into a public key keyed table.
// Public keys are treated as opaque strings and compared byte for byte.
package peernames

// Description is the friendly metadata attached to a peer: either a plain
// display name or a structured label set. Renderers must handle both cases.
type Description interface {
	isDescription()
}

type Name string

func (Name) isDescription() {}

type LabelSet map[string]string

func (LabelSet) isDescription() {}

type Entry struct {
	PublicKey string
	// AllowedIPs as declared in the config file. Informational only,
	// the rendered allowed IPs always come from the live dump.
	AllowedIPs  string
	Description Description
}

type Table map[string]Entry

// Merge combines the config derived table with the name mapping table.
// Name mapping entries win for keys present in both sources, while allowed
// IPs gathered from a config blob are preserved underneath the new name.
func Merge(fromConfig, fromNames Table) Table {
	merged := make(Table, len(fromConfig)+len(fromNames))
	for publicKey, entry := range fromConfig {
		merged[publicKey] = entry
	}

	for publicKey, entry := range fromNames {
		if existing, exists := merged[publicKey]; exists && entry.AllowedIPs == "" {
			entry.AllowedIPs = existing.AllowedIPs
		}
		merged[publicKey] = entry
	}

	return merged
}
