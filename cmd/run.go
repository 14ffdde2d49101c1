/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"sort"
	"sync"

	"github.com/spf13/cobra"

	"github.com/notargets/adaptoct/comm"
	"github.com/notargets/adaptoct/config"
	"github.com/notargets/adaptoct/da"
	"github.com/notargets/adaptoct/hcurve"
	"github.com/notargets/adaptoct/octree"
	"github.com/notargets/adaptoct/partition"
	"github.com/notargets/adaptoct/sfc"
)

// RunCmd builds a uniform regular octree grid, distributes its leaves
// across a set of simulated ranks, and runs the node-sort/DA pipeline
// over each, mirroring cmd/1D.go/cmd/2D.go's flag/init() registration
// shape.
var RunCmd = &cobra.Command{
	Use:   "run",
	Short: "Build a regular grid and run the node-discovery/distribution pipeline",
	Long: `
run constructs a uniform, regular octree grid at the configured depth,
scatters its leaves round-robin across the configured number of simulated
ranks, rebalances them (via sfc.DistTreeSort or partition.PartitionLeaves,
per --strategy), and drives the distributed continuous-Galerkin node-sort
(dist_countCGNodes) and DA layer over the result, reporting global and
per-rank node counts.

adaptoct run`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Default()
		cfg.Dim, _ = cmd.Flags().GetInt("dim")
		cfg.Order, _ = cmd.Flags().GetInt("order")
		cfg.Depth, _ = cmd.Flags().GetInt("depth")
		cfg.NumRanks, _ = cmd.Flags().GetInt("ranks")
		imbalance, _ := cmd.Flags().GetFloat32("imbalance")
		cfg.ImbalanceFactor = imbalance
		loadFlex, _ := cmd.Flags().GetFloat64("load-flexibility")
		cfg.LoadFlexibility = loadFlex
		cfg.Strategy, _ = cmd.Flags().GetString("strategy")
		return Run(cfg)
	},
}

func init() {
	rootCmd.AddCommand(RunCmd)
	d := config.Default()
	RunCmd.Flags().Int("dim", d.Dim, "spatial dimension, in [2,4]")
	RunCmd.Flags().Int("order", d.Order, "polynomial order (nodes per element axis = order+1)")
	RunCmd.Flags().Int("depth", d.Depth, "uniform refinement depth (2^depth leaves per axis)")
	RunCmd.Flags().Int("ranks", d.NumRanks, "number of simulated ranks to partition across")
	RunCmd.Flags().Float32("imbalance", d.ImbalanceFactor, "METIS allowed partition imbalance factor (e.g. 1.05 for 5%), used when --strategy=metis")
	RunCmd.Flags().Float64("load-flexibility", d.LoadFlexibility, "distTreeSort splitter-search tolerance in (0,1], used when --strategy=sfc")
	RunCmd.Flags().String("strategy", d.Strategy, `leaf-to-rank distribution strategy: "sfc" or "metis"`)
}

// Run executes one end-to-end pass: grid, initial scatter, rebalance,
// DA construction per rank, and a report of the resulting node counts.
func Run(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	leaves := uniformGrid(cfg.Dim, cfg.Depth)
	fmt.Printf("built %d leaves at depth %d, dim %d\n", len(leaves), cfg.Depth, cfg.Dim)

	ranks := comm.NewLocalWorld(cfg.NumRanks)

	byRank, treePartStart, err := distribute(cfg, leaves, ranks)
	if err != nil {
		return err
	}

	// comm.Local's collectives (Allreduce, Alltoall, ...) rendezvous
	// across every rank before any one call returns, so every rank's
	// pipeline must run concurrently, each in its own goroutine — driving
	// them one at a time in this goroutine would deadlock at the first
	// collective as soon as NumRanks > 1.
	reports := make([]string, cfg.NumRanks)
	errs := make([]error, cfg.NumRanks)
	var wg sync.WaitGroup
	for r := 0; r < cfg.NumRanks; r++ {
		wg.Add(1)
		go func(r int) {
			defer wg.Done()
			d, err := da.NewDA(cfg.Dim, cfg.Order, ranks[r], byRank[r], treePartStart)
			if err != nil {
				errs[r] = fmt.Errorf("rank %d: building DA: %w", r, err)
				return
			}
			reports[r] = fmt.Sprintf("rank %d: %d local elements, %d local DOFs, %d global DOFs, %d boundary DOFs",
				r, d.NumElements(), d.GetLocalNodalSz(), d.GetGlobalNodeSz(), len(d.GetBoundaryNodeIndices()))
		}(r)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	for _, line := range reports {
		fmt.Println(line)
	}
	return nil
}

// distribute assigns leaves to ranks and returns each rank's local,
// SFC-ordered share together with the shared treePartStart splitters
// dist_countCGNodes' boundary exchange needs.
//
// leaves starts out scattered round-robin across ranks — an arbitrary
// bootstrap distribution, deliberately not already SFC-contiguous, so
// that --strategy=sfc's rebalance is doing real work rather than passing
// through an already-sorted input.
func distribute(cfg *config.Config, leaves []octree.TreeNode, ranks []comm.Comm) ([][]octree.TreeNode, []octree.TreeNode, error) {
	switch cfg.Strategy {
	case "sfc":
		return distributeSFC(cfg, leaves, ranks)
	case "metis":
		return distributeMetis(cfg, leaves, ranks)
	default:
		return nil, nil, fmt.Errorf("run: unknown strategy %q", cfg.Strategy)
	}
}

// distributeSFC scatters leaves round-robin, then calls sfc.DistTreeSort
// concurrently on every rank to rebalance into SFC-contiguous per-rank
// ranges — the mechanism dist_countCGNodes' boundary exchange is
// specified against.
func distributeSFC(cfg *config.Config, leaves []octree.TreeNode, ranks []comm.Comm) ([][]octree.TreeNode, []octree.TreeNode, error) {
	if err := hcurve.InitHcurve(cfg.Dim); err != nil {
		return nil, nil, fmt.Errorf("run: InitHcurve: %w", err)
	}

	scattered := make([][]octree.TreeNode, cfg.NumRanks)
	for i, leaf := range leaves {
		r := i % cfg.NumRanks
		scattered[r] = append(scattered[r], leaf)
	}

	sorted := make([][]octree.TreeNode, cfg.NumRanks)
	starts := make([][]octree.TreeNode, cfg.NumRanks)
	var wg sync.WaitGroup
	for r := 0; r < cfg.NumRanks; r++ {
		wg.Add(1)
		go func(r int) {
			defer wg.Done()
			sorted[r], starts[r] = sfc.DistTreeSort(ranks[r], scattered[r], cfg.LoadFlexibility)
		}(r)
	}
	wg.Wait()

	return sorted, starts[0], nil
}

// distributeMetis partitions leaves via partition.PartitionLeaves' METIS
// graph partitioning, then derives treePartStart by sorting each rank's
// share lexicographically. METIS's assignment need not form a
// contiguous SFC range per rank, so this treePartStart is an
// approximation, not the guarantee dist_countCGNodes' boundary exchange
// is specified against (see DESIGN.md's "Known gaps"); --strategy=sfc
// does not carry that caveat.
func distributeMetis(cfg *config.Config, leaves []octree.TreeNode, ranks []comm.Comm) ([][]octree.TreeNode, []octree.TreeNode, error) {
	if err := hcurve.InitHcurve(cfg.Dim); err != nil {
		return nil, nil, fmt.Errorf("run: InitHcurve: %w", err)
	}

	var assignment []int
	if cfg.NumRanks > 1 {
		pcfg := partition.DefaultConfig(int32(cfg.NumRanks))
		pcfg.ImbalanceFactor = cfg.ImbalanceFactor
		var err error
		assignment, err = partition.PartitionLeaves(leaves, pcfg)
		if err != nil {
			return nil, nil, fmt.Errorf("partitioning leaves: %w", err)
		}
	} else {
		assignment = make([]int, len(leaves))
	}

	byRank := make([][]octree.TreeNode, cfg.NumRanks)
	for i, r := range assignment {
		byRank[r] = append(byRank[r], leaves[i])
	}
	for r := range byRank {
		sort.Slice(byRank[r], func(i, j int) bool {
			return lexicographicLess(byRank[r][i], byRank[r][j])
		})
	}

	treePartStart := make([]octree.TreeNode, cfg.NumRanks)
	for r, rl := range byRank {
		if len(rl) > 0 {
			treePartStart[r] = rl[0]
		}
	}
	return byRank, treePartStart, nil
}

// uniformGrid expands the root octant dim-dimensionally down to depth,
// returning every leaf at that level.
func uniformGrid(dim, depth int) []octree.TreeNode {
	leaves := []octree.TreeNode{octree.NewTreeNode(dim, make([]octree.Coord, dim), 0)}
	for lev := 0; lev < depth; lev++ {
		next := make([]octree.TreeNode, 0, len(leaves)*leaves[0].NumChildren())
		for _, n := range leaves {
			for c := 0; c < n.NumChildren(); c++ {
				next = append(next, n.GetChildMorton(c))
			}
		}
		leaves = next
	}
	return leaves
}

// lexicographicLess orders TreeNodes by (coords, level), the same
// adjacency-grouping stand-in da.NewDA uses ahead of dist_countCGNodes.
func lexicographicLess(a, b octree.TreeNode) bool {
	for d := 0; d < a.Dim; d++ {
		if a.Coords[d] != b.Coords[d] {
			return a.Coords[d] < b.Coords[d]
		}
	}
	return a.Lev < b.Lev
}
