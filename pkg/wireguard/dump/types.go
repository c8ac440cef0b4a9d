package dump

import (
	"sort"
)

// Device holds the per-interface attributes of a dump.
// The private & public device keys are dropped during parsing and never stored.
type Device struct {
	Name         string
	ListenPort   int
	FirewallMark int
}

// Endpoint is the last known remote address of a peer.
// The port is kept verbatim as it appears in the dump.
type Endpoint struct {
	Host string
	Port string
}

type Peer struct {
	PublicKey           string
	HasPresharedKey     bool
	Endpoint            *Endpoint
	AllowedIPs          []string
	LatestHandshake     int64
	ReceiveBytes        uint64
	TransmitBytes       uint64
	PersistentKeepalive int
}

// Interface combines a device with its peers. Peer order is the order in
// which the peers appeared in the dump.
type Interface struct {
	Device Device
	Peers  []Peer
}

// Snapshot maps interface names to their state. Interface names are unique -
// adding an interface twice is an error.
type Snapshot struct {
	interfaces map[string]*Interface
}

func NewSnapshot() *Snapshot {
	return &Snapshot{
		interfaces: map[string]*Interface{},
	}
}

func (s *Snapshot) Add(iface *Interface) error {
	if _, exists := s.interfaces[iface.Device.Name]; exists {
		return DuplicateInterfaceError{Interface: iface.Device.Name}
	}

	s.interfaces[iface.Device.Name] = iface

	return nil
}

// Merge inserts every interface of other into s.
// s is left untouched when the merge fails.
func (s *Snapshot) Merge(other *Snapshot) error {
	for name := range other.interfaces {
		if _, exists := s.interfaces[name]; exists {
			return DuplicateInterfaceError{Interface: name}
		}
	}

	for name, iface := range other.interfaces {
		s.interfaces[name] = iface
	}

	return nil
}

// Names returns the interface names in lexicographic order.
func (s *Snapshot) Names() []string {
	names := make([]string, 0, len(s.interfaces))
	for name := range s.interfaces {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

func (s *Snapshot) Get(name string) *Interface {
	return s.interfaces[name]
}

func (s *Snapshot) Len() int {
	return len(s.interfaces)
}

func (s *Snapshot) ensure(name string) *Interface {
	if iface, exists := s.interfaces[name]; exists {
		return iface
	}

	iface := &Interface{Device: Device{Name: name}}
	s.interfaces[name] = iface

	return iface
}
