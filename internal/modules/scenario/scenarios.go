// Package scenario evaluates user-specified asset shocks and predefined
// historical stress scenarios against a portfolio.
//
// Known gap: stress tests always apply the scenario's "default" sector
// multiplier because holdings carry no sector classification; the named
// sector multipliers are reference data only.
package scenario

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/quantfolio/riskd/internal/domain"
)

//go:embed scenarios.yaml
var scenariosYAML []byte

type scenarioFile struct {
	Scenarios []domain.StressScenario `yaml:"scenarios"`
}

// Registry holds the configured stress scenarios, static after load.
type Registry struct {
	byKey map[string]domain.StressScenario
	keys  []string
}

// LoadRegistry parses the embedded scenario table.
func LoadRegistry() (*Registry, error) {
	var file scenarioFile
	if err := yaml.Unmarshal(scenariosYAML, &file); err != nil {
		return nil, fmt.Errorf("failed to parse embedded scenarios: %w", err)
	}

	reg := &Registry{byKey: make(map[string]domain.StressScenario, len(file.Scenarios))}
	for _, sc := range file.Scenarios {
		if _, ok := sc.SectorMultipliers["default"]; !ok {
			return nil, fmt.Errorf("scenario %q is missing the mandatory default sector multiplier", sc.Key)
		}
		reg.byKey[sc.Key] = sc
		reg.keys = append(reg.keys, sc.Key)
	}
	sort.Strings(reg.keys)
	return reg, nil
}

// Get looks up a scenario by key. An unknown key yields a ValidationError
// enumerating every configured key.
func (r *Registry) Get(key string) (domain.StressScenario, error) {
	sc, ok := r.byKey[key]
	if !ok {
		return domain.StressScenario{}, &domain.ValidationError{
			Message:   fmt.Sprintf("unknown scenario %q", key),
			ValidKeys: r.Keys(),
		}
	}
	return sc, nil
}

// Keys returns all configured scenario keys, sorted.
func (r *Registry) Keys() []string {
	return append([]string{}, r.keys...)
}

// All returns every configured scenario in key order.
func (r *Registry) All() []domain.StressScenario {
	out := make([]domain.StressScenario, 0, len(r.keys))
	for _, k := range r.keys {
		out = append(out, r.byKey[k])
	}
	return out
}
