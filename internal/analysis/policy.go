package analysis

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Policy is a project's classification guidance, loaded from a YAML file:
//
//	instructions: |
//	  Changes under api/ are always user-facing.
//	docsRoot: docs/
//	knownDocs:
//	  - docs/cli.md
//	userFacingPaths:
//	  - cmd/**
//	internalPaths:
//	  - internal/testutil/**
type Policy struct {
	Instructions    string   `yaml:"instructions"`
	DocsRoot        string   `yaml:"docsRoot"`
	KnownDocs       []string `yaml:"knownDocs"`
	UserFacingPaths []string `yaml:"userFacingPaths"`
	InternalPaths   []string `yaml:"internalPaths"`
}

// LoadPolicy reads a policy file. Returns nil Policy and nil error if path is empty.
func LoadPolicy(path string) (*Policy, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading policy file: %w", err)
	}
	var p Policy
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing policy file %s: %w", path, err)
	}
	return &p, nil
}

// PromptSection renders the policy as classifier instructions.
func (p *Policy) PromptSection() string {
	if p == nil {
		return ""
	}
	var b strings.Builder
	if s := strings.TrimSpace(p.Instructions); s != "" {
		b.WriteString(s)
		b.WriteString("\n")
	}
	if p.DocsRoot != "" {
		fmt.Fprintf(&b, "User documentation lives under %s. Name documents relative to the repository root.\n", p.DocsRoot)
	}
	if len(p.KnownDocs) > 0 {
		b.WriteString("Existing user documents:\n")
		for _, d := range p.KnownDocs {
			fmt.Fprintf(&b, "- %s\n", d)
		}
	}
	if len(p.UserFacingPaths) > 0 {
		fmt.Fprintf(&b, "Changes to these paths are user-facing: %s\n", strings.Join(p.UserFacingPaths, ", "))
	}
	if len(p.InternalPaths) > 0 {
		fmt.Fprintf(&b, "Changes limited to these paths are not user-facing: %s\n", strings.Join(p.InternalPaths, ", "))
	}
	return strings.TrimRight(b.String(), "\n")
}
