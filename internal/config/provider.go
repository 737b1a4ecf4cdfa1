package config

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// ErrNotConfigured is returned by providers that have nothing to offer.
var ErrNotConfigured = errors.New("no configuration provided")

// Provider supplies a configuration document.
type Provider interface {
	Name() string
	Load(ctx context.Context) (*Document, error)
}

// StaticProvider returns a fixed document.
type StaticProvider struct {
	Doc *Document
	Err error
}

func (p StaticProvider) Name() string { return "static" }

func (p StaticProvider) Load(_ context.Context) (*Document, error) {
	if p.Err != nil {
		return nil, p.Err
	}
	return p.Doc, nil
}

// BuiltinProvider loads an embedded profile by name.
type BuiltinProvider struct {
	Profile string
}

func (p BuiltinProvider) Name() string { return "builtin:" + p.Profile }

func (p BuiltinProvider) Load(_ context.Context) (*Document, error) {
	return LoadBuiltin(p.Profile)
}

// LoadBuiltin parses the embedded profile with the given name.
func LoadBuiltin(name string) (*Document, error) {
	data, err := builtinFS.ReadFile("builtin/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("config.LoadBuiltin: unknown profile %q: %w", name, err)
	}
	return Parse("builtin/"+name+".yaml", data)
}

// Profiles returns the names of the embedded profiles.
func Profiles() ([]string, error) {
	entries, err := builtinFS.ReadDir("builtin")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names, nil
}

// FileProvider reads a weights document and an optional level-descriptions
// document from disk. When WeightsPath is empty the weights come from Base.
type FileProvider struct {
	WeightsPath      string
	DescriptionsPath string
	Base             Provider
}

func (p FileProvider) Name() string {
	parts := []string{}
	if p.WeightsPath != "" {
		parts = append(parts, p.WeightsPath)
	} else if p.Base != nil {
		parts = append(parts, p.Base.Name())
	}
	if p.DescriptionsPath != "" {
		parts = append(parts, p.DescriptionsPath)
	}
	return "file:" + strings.Join(parts, "+")
}

func (p FileProvider) Load(ctx context.Context) (*Document, error) {
	var doc *Document
	switch {
	case p.WeightsPath != "":
		data, err := os.ReadFile(p.WeightsPath)
		if err != nil {
			return nil, fmt.Errorf("config.FileProvider: %w", err)
		}
		if doc, err = Parse(p.WeightsPath, data); err != nil {
			return nil, err
		}
	case p.Base != nil:
		base, err := p.Base.Load(ctx)
		if err != nil {
			return nil, err
		}
		doc = base.clone()
	case p.DescriptionsPath == "":
		return nil, ErrNotConfigured
	default:
		doc = &Document{}
	}

	if p.DescriptionsPath != "" {
		data, err := os.ReadFile(p.DescriptionsPath)
		if err != nil {
			return nil, fmt.Errorf("config.FileProvider: %w", err)
		}
		ld, err := ParseDescriptions(p.DescriptionsPath, data)
		if err != nil {
			return nil, err
		}
		doc.LevelDescriptions = ld
	}
	return doc, nil
}

// clone copies the top level so callers can replace sections without
// touching a shared document.
func (d *Document) clone() *Document {
	if d == nil {
		return &Document{}
	}
	c := *d
	return &c
}
