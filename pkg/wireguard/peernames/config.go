package peernames

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/ini.v1"
)

const peerSectionName = "Peer"

// Label names the renderer owns. A structured comment must not redefine them.
var reservedLabels = map[string]struct{}{
	"interface":     {},
	"public_key":    {},
	"friendly_name": {},
	"allowed_ips":   {},
	"allowed_ip":    {},
	"remote_ip":     {},
	"remote_port":   {},
}

// ParseConfig extracts peer metadata from one or more concatenated WireGuard
// config file contents. A [Peer] section is recorded when it carries both a
// PublicKey and AllowedIPs. The friendly description is taken from the
// comment preceding the section or, failing that, from the first commented
// key inside it: a JSON object comment becomes a label set, any other
// non-empty comment becomes a plain name.
func ParseConfig(blob string) (Table, error) {
	file, err := ini.LoadSources(ini.LoadOptions{AllowNonUniqueSections: true}, []byte(blob))
	if err != nil {
		return nil, InvalidConfigError{cause: err}
	}

	table := Table{}

	sections, err := file.SectionsByName(peerSectionName)
	if err != nil {
		// no [Peer] sections at all
		return table, nil
	}

	for _, section := range sections {
		publicKey := section.Key("PublicKey").String()
		if publicKey == "" {
			continue
		}

		allowedIPs := section.Key("AllowedIPs").String()
		if allowedIPs == "" {
			continue
		}

		if _, exists := table[publicKey]; exists {
			return nil, InvalidConfigError{
				Reason: fmt.Sprintf("public key %q appears in more than one [Peer] section", publicKey),
			}
		}

		description, err := parseComment(publicKey, sectionComment(section))
		if err != nil {
			return nil, err
		}

		table[publicKey] = Entry{
			PublicKey:   publicKey,
			AllowedIPs:  allowedIPs,
			Description: description,
		}
	}

	return table, nil
}

// parseComment turns a comment into a Description. Anything that looks like
// JSON must be a valid object of non-empty string pairs.
func parseComment(publicKey, comment string) (Description, error) {
	if comment == "" {
		return nil, nil
	}

	if !strings.HasPrefix(comment, "{") {
		return Name(comment), nil
	}

	labels := map[string]string{}
	if err := json.Unmarshal([]byte(comment), &labels); err != nil {
		return nil, InvalidPeerCommentError{PublicKey: publicKey, Comment: comment, Reason: err.Error()}
	}

	for name, value := range labels {
		if name == "" || value == "" {
			return nil, InvalidPeerCommentError{PublicKey: publicKey, Comment: comment, Reason: "label names and values must be non-empty"}
		}
		if _, reserved := reservedLabels[name]; reserved {
			return nil, InvalidPeerCommentError{
				PublicKey: publicKey,
				Comment:   comment,
				Reason:    fmt.Sprintf("label %q collides with a built-in metric label", name),
			}
		}
	}

	return LabelSet(labels), nil
}

func sectionComment(section *ini.Section) string {
	if comment := cleanComment(section.Comment); comment != "" {
		return comment
	}

	for _, key := range section.Keys() {
		if comment := cleanComment(key.Comment); comment != "" {
			return comment
		}
	}

	return ""
}

// cleanComment strips the comment markers ini keeps on every line and joins
// multi-line comments into one string.
func cleanComment(raw string) string {
	var lines []string

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "#;"))
		if line != "" {
			lines = append(lines, line)
		}
	}

	return strings.Join(lines, " ")
}
