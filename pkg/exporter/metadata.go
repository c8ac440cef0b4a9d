package exporter

import (
	"os"
	"strings"

	"github.com/mrincompetent/wireguard-exporter/pkg/wireguard/peernames"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// loadPeerTable re-reads & re-parses the metadata sources. Files are read on
// every scrape so edits become visible without a restart.
func (e *Exporter) loadPeerTable() (peernames.Table, error) {
	var fromConfig, fromNames peernames.Table

	if len(e.namesConfigFiles) > 0 {
		contents := make([]string, 0, len(e.namesConfigFiles))

		var readErr error
		for _, file := range e.namesConfigFiles {
			content, err := os.ReadFile(file)
			if err != nil {
				readErr = multierr.Append(readErr, errors.Wrapf(err, "unable to read peer config file '%s'", file))
				continue
			}
			contents = append(contents, string(content))
		}
		if readErr != nil {
			return nil, readErr
		}

		table, err := peernames.ParseConfig(strings.Join(contents, "\n"))
		if err != nil {
			return nil, errors.Wrapf(err, "unable to parse peer config files %v", e.namesConfigFiles)
		}
		fromConfig = table
	}

	if e.peerNamesFile != "" {
		content, err := os.ReadFile(e.peerNamesFile)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to read peer names file '%s'", e.peerNamesFile)
		}

		table, err := peernames.ParseNameMapping(string(content))
		if err != nil {
			return nil, errors.Wrapf(err, "unable to parse peer names file '%s'", e.peerNamesFile)
		}
		fromNames = table
	}

	return peernames.Merge(fromConfig, fromNames), nil
}
