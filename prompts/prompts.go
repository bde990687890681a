package prompts

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var catalog []byte

// Prompts is the parsed prompt catalog
type Prompts struct {
	CoderSystem        string `yaml:"coder_system"`
	AuditorSystem      string `yaml:"auditor_system"`
	SecurityCorrection string `yaml:"security_correction"`
	RuntimeCorrection  string `yaml:"runtime_correction"`
}

// Load parses the embedded prompt catalog
func Load() (*Prompts, error) {
	return Parse(catalog)
}

// Parse parses a prompt catalog and checks that every prompt is present
func Parse(data []byte) (*Prompts, error) {
	var p Prompts
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal prompt catalog: %w", err)
	}

	required := map[string]string{
		"coder_system":        p.CoderSystem,
		"auditor_system":      p.AuditorSystem,
		"security_correction": p.SecurityCorrection,
		"runtime_correction":  p.RuntimeCorrection,
	}
	for name, text := range required {
		if strings.TrimSpace(text) == "" {
			return nil, fmt.Errorf("prompt catalog is missing %s", name)
		}
	}

	for name, text := range map[string]string{
		"security_correction": p.SecurityCorrection,
		"runtime_correction":  p.RuntimeCorrection,
	} {
		if strings.Count(text, "%s") != 1 {
			return nil, fmt.Errorf("%s must contain exactly one %%s placeholder", name)
		}
	}

	return &p, nil
}

// Coder renders the coder system prompt for the given execution bound
func (p *Prompts) Coder(timeoutSec int) string {
	if strings.Contains(p.CoderSystem, "%d") {
		return fmt.Sprintf(p.CoderSystem, timeoutSec)
	}
	return p.CoderSystem
}
