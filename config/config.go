// Package config parses and defaults the run configuration this module's
// CLI needs: problem dimension and order, refinement depth, the
// distributed load-balance flexibility distTreeSort is parameterized by,
// and METIS partitioning options. Structurally this follows
// InputParameters.InputParameters2D's ghodss/yaml Parse/Print shape,
// generalized from a CFD run's parameters to this domain's.
package config

import (
	"fmt"

	"github.com/ghodss/yaml"
)

// Config is the parameter set cmd/run.go binds from a config file and/or
// CLI flags.
type Config struct {
	Dim   int `yaml:"Dim"`   // spatial dimension, in [2,4]
	Order int `yaml:"Order"` // polynomial order, >= 1

	// Depth is the uniform refinement depth of the regular grid cmd/run.go
	// builds: 2^Depth leaves per axis.
	Depth int `yaml:"Depth"`

	// LoadFlexibility is distTreeSort's splitter-search tolerance,
	// loadFlexibility in (0,1] per spec.md §6.
	LoadFlexibility float64 `yaml:"LoadFlexibility"`

	// NumRanks is the number of simulated comm.Local ranks to partition
	// across.
	NumRanks int `yaml:"NumRanks"`

	// ImbalanceFactor is forwarded to partition.PartitionLeaves' METIS
	// call, matching DG3D/mesh/mesh_partitioner.go's PartitionConfig
	// field of the same name (1.05 = 5% allowed imbalance).
	ImbalanceFactor float32 `yaml:"ImbalanceFactor"`

	// Strategy selects how cmd/run.go assigns leaves to ranks: "sfc"
	// (sfc.DistTreeSort, SFC-contiguous per-rank ranges) or "metis"
	// (partition.PartitionLeaves, minimum-cut/volume graph partitioning,
	// ignorant of SFC contiguity).
	Strategy string `yaml:"Strategy"`
}

// Default returns the configuration cmd/run.go falls back to when no
// config file or flag overrides it.
func Default() *Config {
	return &Config{
		Dim:             3,
		Order:           2,
		Depth:           1,
		LoadFlexibility: 0.2,
		NumRanks:        1,
		ImbalanceFactor: 1.05,
		Strategy:        "sfc",
	}
}

// Parse unmarshals YAML data onto c, leaving fields the document omits at
// their current value.
func (c *Config) Parse(data []byte) error {
	return yaml.Unmarshal(data, c)
}

// Validate checks the invariants NewDA/partition.PartitionLeaves assume.
func (c *Config) Validate() error {
	if c.Dim < 2 {
		return fmt.Errorf("config: Dim must be >= 2 (hcurve has no 1D SFC table), got %d", c.Dim)
	}
	if c.Order < 1 {
		return fmt.Errorf("config: Order must be >= 1, got %d", c.Order)
	}
	if c.Depth < 0 {
		return fmt.Errorf("config: Depth must be >= 0, got %d", c.Depth)
	}
	if c.LoadFlexibility <= 0 || c.LoadFlexibility > 1 {
		return fmt.Errorf("config: LoadFlexibility must be in (0,1], got %v", c.LoadFlexibility)
	}
	if c.NumRanks < 1 {
		return fmt.Errorf("config: NumRanks must be >= 1, got %d", c.NumRanks)
	}
	if c.Strategy != "sfc" && c.Strategy != "metis" {
		return fmt.Errorf("config: Strategy must be \"sfc\" or \"metis\", got %q", c.Strategy)
	}
	return nil
}

// Print writes a human-readable dump of c, mirroring
// InputParameters2D.Print's plain Printf-based listing.
func (c *Config) Print() {
	fmt.Printf("%d\t\t= Dim\n", c.Dim)
	fmt.Printf("%d\t\t= Order\n", c.Order)
	fmt.Printf("%d\t\t= Depth\n", c.Depth)
	fmt.Printf("%8.5f\t= LoadFlexibility\n", c.LoadFlexibility)
	fmt.Printf("%d\t\t= NumRanks\n", c.NumRanks)
	fmt.Printf("%8.5f\t= ImbalanceFactor\n", c.ImbalanceFactor)
	fmt.Printf("%s\t\t= Strategy\n", c.Strategy)
}
