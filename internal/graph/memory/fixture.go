package memory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/reachout/internal/domain/network"
	"github.com/kailas-cloud/reachout/internal/domain/profile"
)

// Fixture is the YAML document describing a network snapshot.
type Fixture struct {
	Profiles    []profile.Profile  `yaml:"profiles"`
	Connections [][2]string        `yaml:"connections"`
	Companies   []network.Company  `yaml:"companies"`
	Activities  []network.Activity `yaml:"activities"`
}

// Network bundles the stores built from a fixture.
type Network struct {
	Graph      *Graph
	Directory  *Directory
	Activities *Activities
}

// LoadFile reads a fixture from path and builds its stores.
func LoadFile(path string, maxHops int) (*Network, error) {
	fx, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return fx.Build(maxHops)
}

// Load decodes a fixture and builds its stores. An empty document yields empty stores.
func Load(r io.Reader, maxHops int) (*Network, error) {
	fx, err := Decode(r)
	if err != nil {
		return nil, err
	}
	return fx.Build(maxHops)
}

// ReadFile decodes the fixture at path without building stores.
func ReadFile(path string) (*Fixture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixture: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses a fixture document.
func Decode(r io.Reader) (*Fixture, error) {
	var fx Fixture
	if err := yaml.NewDecoder(r).Decode(&fx); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return &fx, nil
}

// Build materializes the fixture into fresh stores.
func (fx *Fixture) Build(maxHops int) (*Network, error) {
	n := &Network{
		Graph:      NewGraph().WithMaxHops(maxHops),
		Directory:  NewDirectory(),
		Activities: NewActivities(),
	}
	for i, p := range fx.Profiles {
		if err := n.Graph.AddProfile(p); err != nil {
			return nil, fmt.Errorf("profile %d: %w", i, err)
		}
	}
	for _, c := range fx.Connections {
		if err := n.Graph.Connect(c[0], c[1]); err != nil {
			return nil, err
		}
	}
	for _, c := range fx.Companies {
		n.Directory.Put(c)
	}
	for i, a := range fx.Activities {
		if err := n.Activities.Record(context.Background(), a); err != nil {
			return nil, fmt.Errorf("activity %d: %w", i, err)
		}
	}
	return n, nil
}
