package codec

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"

	nmap "github.com/Ullaakut/nmap/v3"

	"netcanvas/internal/domain"
)

// NmapImporter seeds a topology from an nmap XML report. The gateway becomes
// a router at Center and every other host that is up becomes a PC on a ring
// around it, connected to the router.
type NmapImporter struct {
	Center        domain.Point
	MinSeparation float64

	log *slog.Logger
}

// NewNmapImporter creates an importer that keeps placed nodes at least
// minSeparation apart
func NewNmapImporter(center domain.Point, minSeparation float64, log *slog.Logger) *NmapImporter {
	return &NmapImporter{
		Center:        center,
		MinSeparation: minSeparation,
		log:           loggerOrDefault(log),
	}
}

// Format returns the codec format identifier
func (n *NmapImporter) Format() string {
	return "nmap-xml"
}

// Decode replaces the contents of g with the hosts of an nmap XML report
func (n *NmapImporter) Decode(r io.Reader, g *domain.Graph) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read scan: %w", err)
	}

	var run nmap.Run
	if err := xml.Unmarshal(data, &run); err != nil {
		return &domain.MalformedDataError{Err: fmt.Errorf("failed to parse nmap XML: %w", err)}
	}

	return n.Import(&run, g)
}

// Import replaces the contents of g with the hosts of a completed scan
func (n *NmapImporter) Import(run *nmap.Run, g *domain.Graph) error {
	if run == nil {
		return &domain.MalformedDataError{Err: errors.New("nil scan result")}
	}

	records, err := n.records(run)
	if err != nil {
		return err
	}

	build(records, g, n.log)
	return nil
}

// FromRun returns a Decoder that imports run and ignores its reader, so a
// live scan can go through the same load path as a report file
func (n *NmapImporter) FromRun(run *nmap.Run) Decoder {
	return runDecoder{importer: n, run: run}
}

type runDecoder struct {
	importer *NmapImporter
	run      *nmap.Run
}

func (d runDecoder) Format() string {
	return "nmap-scan"
}

func (d runDecoder) Decode(_ io.Reader, g *domain.Graph) error {
	return d.importer.Import(d.run, g)
}

// records converts scan results into node records
func (n *NmapImporter) records(run *nmap.Run) ([]NodeRecord, error) {
	var hosts []string
	for _, host := range run.Hosts {
		if host.Status.State != "up" || len(host.Addresses) == 0 {
			continue
		}
		hosts = append(hosts, primaryAddress(host))
	}
	if len(hosts) == 0 {
		return nil, &domain.MalformedDataError{Err: errors.New("scan has no hosts up")}
	}

	gateway := 0
	for i, ip := range hosts {
		if strings.HasSuffix(ip, ".1") {
			gateway = i
			break
		}
	}
	n.log.Info("importing nmap scan", "hosts", len(hosts), "gateway", hosts[gateway])

	pcs := len(hosts) - 1
	radius := n.ringRadius(pcs)

	routerID := 1
	router := NodeRecord{
		ID:          routerID,
		X:           n.Center.X,
		Y:           n.Center.Y,
		Status:      domain.DefaultStatus,
		ConnectedTo: make([]int, 0, pcs),
		Type:        string(domain.KindRouter),
	}
	records := []NodeRecord{router}

	slot := 0
	for i, ip := range hosts {
		if i == gateway {
			continue
		}
		angle := 2 * math.Pi * float64(slot) / float64(pcs)
		id := slot + 2
		slot++

		records = append(records, NodeRecord{
			ID:          id,
			X:           n.Center.X + radius*math.Cos(angle),
			Y:           n.Center.Y + radius*math.Sin(angle),
			Status:      domain.DefaultStatus,
			Connections: 1,
			ConnectedTo: []int{routerID},
			Type:        string(domain.KindPC),
		})
		records[0].ConnectedTo = append(records[0].ConnectedTo, id)
		n.log.Debug("placed scanned host", "ip", ip, "id", id)
	}
	records[0].Connections = pcs

	return records, nil
}

// ringRadius keeps every PC at least two separations from the router and
// adjacent PCs at least one separation apart
func (n *NmapImporter) ringRadius(pcs int) float64 {
	radius := 2 * n.MinSeparation
	if pcs > 1 {
		chord := n.MinSeparation / (2 * math.Sin(math.Pi/float64(pcs)))
		radius = math.Max(radius, chord*1.1)
	}
	return radius
}

func primaryAddress(host nmap.Host) string {
	for _, addr := range host.Addresses {
		if addr.AddrType == "ipv4" {
			return addr.Addr
		}
	}
	return host.Addresses[0].Addr
}
