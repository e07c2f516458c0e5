// Package site carries the per-site receiver defaults: the first and second
// local oscillator frequencies of each KST radar. The table ships embedded
// so reconstruction works offline.
package site

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed sites.yaml
var sitesYAML []byte

// Site is one radar site. LO frequencies are in MHz, one entry per
// receiver path.
type Site struct {
	Name    string    `yaml:"name"`
	LO1     []float64 `yaml:"lo1"`
	LO2     []float64 `yaml:"lo2"`
	Remarks string    `yaml:"remarks,omitempty"`
}

var table map[string]Site

func init() {
	var sites []Site
	if err := yaml.Unmarshal(sitesYAML, &sites); err != nil {
		panic(fmt.Sprintf("site: bad embedded table: %v", err))
	}
	table = make(map[string]Site, len(sites))
	for _, s := range sites {
		table[s.Name] = s
	}
}

// Lookup returns the site with the given name.
func Lookup(name string) (Site, error) {
	s, ok := table[name]
	if !ok {
		return Site{}, fmt.Errorf("site: unknown radar %q", name)
	}
	return s, nil
}

// Names lists the known sites in sorted order.
func Names() []string {
	names := make([]string, 0, len(table))
	for n := range table {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Known reports whether name is a known site.
func Known(name string) bool {
	_, ok := table[name]
	return ok
}
