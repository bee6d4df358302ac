package codec

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"netcanvas/internal/domain"
)

// AnsibleCodec handles Ansible inventory import/export. Routers and PCs are
// written to the "routers" and "pcs" groups; canvas state travels as host vars.
type AnsibleCodec struct {
	log *slog.Logger
}

// NewAnsibleCodec creates a new Ansible codec
func NewAnsibleCodec(log *slog.Logger) *AnsibleCodec {
	return &AnsibleCodec{log: loggerOrDefault(log)}
}

// Format returns the codec format identifier
func (c *AnsibleCodec) Format() string {
	return "ansible-inventory"
}

const (
	groupRouters = "routers"
	groupPCs     = "pcs"
)

// ansibleInventory represents the Ansible inventory structure
type ansibleInventory struct {
	All ansibleGroup `yaml:"all"`
}

type ansibleGroup struct {
	Children map[string]ansibleGroupDef `yaml:"children,omitempty"`
}

type ansibleGroupDef struct {
	Hosts map[string]ansibleHost `yaml:"hosts,omitempty"`
}

type ansibleHost struct {
	NodeID      *int     `yaml:"canvas_id"`
	X           *float64 `yaml:"canvas_x"`
	Y           *float64 `yaml:"canvas_y"`
	Status      *string  `yaml:"status"`
	ConnectedTo []int    `yaml:"connected_to,flow"`
}

// Encode exports g to Ansible inventory format
func (c *AnsibleCodec) Encode(w io.Writer, g *domain.Graph) error {
	groups := map[string]ansibleGroupDef{
		groupRouters: {Hosts: make(map[string]ansibleHost)},
		groupPCs:     {Hosts: make(map[string]ansibleHost)},
	}

	for _, rec := range Records(g) {
		group := groupPCs
		if rec.Type == string(domain.KindRouter) {
			group = groupRouters
		}
		groups[group].Hosts[hostName(rec.Type, rec.ID)] = ansibleHost{
			NodeID:      &rec.ID,
			X:           &rec.X,
			Y:           &rec.Y,
			Status:      &rec.Status,
			ConnectedTo: rec.ConnectedTo,
		}
	}

	inv := ansibleInventory{All: ansibleGroup{Children: groups}}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(&inv); err != nil {
		return fmt.Errorf("failed to encode Ansible inventory: %w", err)
	}

	return nil
}

// Decode imports a topology from an inventory written by Encode. Hosts
// outside the routers and pcs groups are ignored.
func (c *AnsibleCodec) Decode(r io.Reader, g *domain.Graph) error {
	var inv ansibleInventory
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&inv); err != nil {
		if errors.Is(err, io.EOF) {
			err = errors.New("empty document")
		}
		return &domain.MalformedDataError{Err: fmt.Errorf("failed to parse Ansible inventory: %w", err)}
	}

	raw := make([]rawRecord, 0)
	for _, group := range []string{groupRouters, groupPCs} {
		def, ok := inv.All.Children[group]
		if !ok {
			continue
		}
		kind := string(domain.KindPC)
		if group == groupRouters {
			kind = string(domain.KindRouter)
		}

		names := make([]string, 0, len(def.Hosts))
		for name := range def.Hosts {
			names = append(names, name)
		}
		// map order is random; keep the document order stable by canvas id
		slices.SortFunc(names, func(a, b string) int {
			return hostOrder(def.Hosts[a]) - hostOrder(def.Hosts[b])
		})

		for _, name := range names {
			h := def.Hosts[name]
			connectedTo := h.ConnectedTo
			if connectedTo == nil {
				connectedTo = []int{}
			}
			count := len(connectedTo)
			raw = append(raw, rawRecord{
				ID:          h.NodeID,
				X:           h.X,
				Y:           h.Y,
				Status:      h.Status,
				Connections: &count,
				ConnectedTo: connectedTo,
				Type:        &kind,
			})
		}
	}

	slices.SortStableFunc(raw, func(a, b rawRecord) int {
		return idOrZero(a.ID) - idOrZero(b.ID)
	})

	records, err := validateRecords(raw)
	if err != nil {
		return err
	}

	build(records, g, c.log)
	return nil
}

func hostName(kind string, id int) string {
	return strings.ToLower(kind) + "-" + strconv.Itoa(id)
}

func hostOrder(h ansibleHost) int {
	return idOrZero(h.NodeID)
}

func idOrZero(id *int) int {
	if id == nil {
		return 0
	}
	return *id
}
