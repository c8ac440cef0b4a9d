package peernames

import (
	"encoding/json"
)

// ParseNameMapping parses a JSON object mapping public keys to display
// names. Entries from a name mapping never carry allowed IPs.
func ParseNameMapping(blob string) (Table, error) {
	names := map[string]string{}
	if err := json.Unmarshal([]byte(blob), &names); err != nil {
		return nil, InvalidNameMappingError{cause: err}
	}

	table := make(Table, len(names))
	for publicKey, name := range names {
		table[publicKey] = Entry{
			PublicKey:   publicKey,
			Description: Name(name),
		}
	}

	return table, nil
}
