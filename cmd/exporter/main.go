package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mrincompetent/wireguard-exporter/pkg/exporter"
	customlog "github.com/mrincompetent/wireguard-exporter/pkg/log"
	"github.com/mrincompetent/wireguard-exporter/pkg/server"
	"github.com/mrincompetent/wireguard-exporter/pkg/wireguard/kernel"
	"github.com/mrincompetent/wireguard-exporter/pkg/wireguard/wg"

	"github.com/heptiolabs/healthcheck"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/alecthomas/kingpin.v2"
)

const envPrefix = "PROMETHEUS_WIREGUARD_EXPORTER_"

const (
	sourceCommand = "command"
	sourceKernel  = "kernel"
)

var (
	app = kingpin.New("wireguard-exporter", "Prometheus exporter for WireGuard interface & peer state.")

	listenAddress = app.Flag("listen-address", "Listen address for the http server.").
			Envar(envPrefix + "ADDRESS").Default(":9586").String()
	interfaces = app.Flag("interface", "Interface to export. Repeatable. All interfaces are exported when unset.").
			Envar(envPrefix + "INTERFACES").Strings()
	deviceSource = app.Flag("device-source", "How to read device state: shell out to the wg binary or use the kernel interface directly.").
			Envar(envPrefix + "DEVICE_SOURCE").Default(sourceCommand).Enum(sourceCommand, sourceKernel)
	wgPath = app.Flag("wg-path", "Path to the wg binary.").
		Envar(envPrefix + "WG_PATH").Default("wg").String()
	prependSudo = app.Flag("prepend-sudo", "Prepend sudo to the wg show commands.").
			Envar(envPrefix + "PREPEND_SUDO_ENABLED").Bool()
	wgTimeout = app.Flag("wg-timeout", "Timeout for a single wg show invocation.").
			Envar(envPrefix + "WG_TIMEOUT").Default("5s").Duration()
	namesConfigFiles = app.Flag("extract-names-config-file", "WireGuard config file to read peer names from ([Peer] section comments). Repeatable.").
				Envar(envPrefix + "CONFIG_FILE_NAMES").Strings()
	peerNamesFile = app.Flag("peer-names-file", "JSON file mapping peer public keys to friendly names.").
			Envar(envPrefix + "PEER_NAMES_CONFIG_FILE").String()
	separateAllowedIPs = app.Flag("separate-allowed-ips", "Export one metric per allowed CIDR instead of a joined label.").
				Envar(envPrefix + "SEPARATE_ALLOWED_IPS_ENABLED").Bool()
	exportRemoteIPAndPort = app.Flag("export-remote-ip-and-port", "Export a peer's remote ip and port as labels (if available).").
				Envar(envPrefix + "EXPORT_REMOTE_IP_AND_PORT_ENABLED").Bool()
	exportLatestHandshakeDelay = app.Flag("export-latest-handshake-delay", "Additionally export the seconds since the last handshake.").
					Envar(envPrefix + "EXPORT_LATEST_HANDSHAKE_DELAY_ENABLED").Bool()
	logLevel    = customlog.LevelFlag(app.Flag("log-level", "Log level.").Envar(envPrefix+"LOG_LEVEL").Default("info"), zapcore.InfoLevel)
	logEncoding = customlog.EncodingFlag(app.Flag("log-encoding", "Log encoding (json or console).").Envar(envPrefix+"LOG_ENCODING").Default(customlog.EncodingJSON.String()), customlog.EncodingJSON)
)

func main() {
	kingpin.MustParse(app.Parse(os.Args[1:]))

	log, err := customlog.New(*logLevel, *logEncoding)
	if err != nil {
		kingpin.Fatalf("unable to create the logger: %v", err)
	}
	defer log.Sync()

	options := exporter.Options{
		SeparateAllowedIPs:         *separateAllowedIPs,
		ExportRemoteIPAndPort:      *exportRemoteIPAndPort,
		ExportLatestHandshakeDelay: *exportLatestHandshakeDelay,
	}

	var source exporter.DeviceSource
	readinessChecks := map[string]healthcheck.Check{}

	switch *deviceSource {
	case sourceKernel:
		kernelSource, err := kernel.New(log)
		if err != nil {
			log.Panic("Unable to open the WireGuard control client", zap.Error(err))
		}
		defer kernelSource.Close()
		source = kernelSource
	default:
		source = wg.New(log, *wgPath, *prependSudo, *wgTimeout)
		readinessChecks["wg-binary"] = wg.BinaryCheck(*wgPath)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	exp := exporter.New(log, source, *interfaces, *namesConfigFiles, *peerNamesFile, options)
	if err := exp.Register(registry); err != nil {
		log.Panic("Unable to register the exporter metrics", zap.Error(err))
	}

	srv := server.New(log, *listenAddress, registry, exp, readinessChecks)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("Starting the exporter",
		zap.String("listen-address", *listenAddress),
		zap.String("device-source", *deviceSource),
		zap.Strings("interfaces", *interfaces),
	)

	if err := srv.Run(ctx); err != nil {
		log.Panic("Problem running the http server", zap.Error(err))
	}
}
