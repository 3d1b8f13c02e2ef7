package server

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/jrsteele09/ums-portal/apiclient"
	"github.com/jrsteele09/ums-portal/users"
	"gopkg.in/yaml.v3"
)

//go:embed menus.yaml
var menusYAML []byte

type MenuItem struct {
	Label string `yaml:"label"`
	Path  string `yaml:"path"`
	Icon  string `yaml:"icon"`
}

// CardDef describes one dashboard counter. Format is "", "percent" or "currency".
type CardDef struct {
	Key    string `yaml:"key"`
	Label  string `yaml:"label"`
	Format string `yaml:"format"`
}

type RoleMenu struct {
	Heading string     `yaml:"heading"`
	Menu    []MenuItem `yaml:"menu"`
	Cards   []CardDef  `yaml:"cards"`
}

type Menus struct {
	Default RoleMenu                    `yaml:"default"`
	Roles   map[users.RoleType]RoleMenu `yaml:"roles"`
}

// StatCard is a rendered dashboard counter.
type StatCard struct {
	Label string
	Value string
}

func LoadMenus() (*Menus, error) {
	return ParseMenus(menusYAML)
}

func ParseMenus(data []byte) (*Menus, error) {
	var m Menus
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("[ParseMenus] %w", err)
	}
	for role := range m.Roles {
		if !role.Valid() {
			return nil, fmt.Errorf("[ParseMenus] unknown role %q", role)
		}
	}
	return &m, nil
}

// For returns the menu of role. Missing fields fall back to the default entry.
func (m *Menus) For(role users.RoleType) RoleMenu {
	rm := m.Roles[role]
	if rm.Heading == "" {
		rm.Heading = m.Default.Heading
	}
	if len(rm.Menu) == 0 {
		rm.Menu = m.Default.Menu
	}
	return rm
}

// Cards pairs the role's card definitions with the values in stats. Counters
// the API did not return are shown as "-".
func (m *Menus) Cards(role users.RoleType, stats apiclient.Stats) []StatCard {
	defs := m.For(role).Cards
	cards := make([]StatCard, 0, len(defs))
	for _, def := range defs {
		cards = append(cards, StatCard{Label: def.Label, Value: formatStat(stats[def.Key], def.Format)})
	}
	return cards
}

func formatStat(v any, format string) string {
	if v == nil {
		return "-"
	}

	var f float64
	switch n := v.(type) {
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return n.String()
		}
		f = parsed
	case float64:
		f = n
	case int:
		f = float64(n)
	case string:
		// DRF serialises decimals as strings
		parsed, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return n
		}
		f = parsed
	default:
		return fmt.Sprint(v)
	}

	switch format {
	case "percent":
		return strconv.FormatFloat(f, 'f', 1, 64) + "%"
	case "currency":
		return strconv.FormatFloat(f, 'f', 2, 64)
	default:
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
}
