package main

import (
	"context"
	"fmt"

	"github.com/scttfrdmn/tilecache/pkg/areader/htsbam"
	"github.com/scttfrdmn/tilecache/pkg/cache"
	"github.com/scttfrdmn/tilecache/pkg/config"
	"github.com/scttfrdmn/tilecache/pkg/pestats"
	"github.com/spf13/cobra"
)

var (
	watchSteps    int
	watchStepKB   float64
	watchRangeKB  float64
)

var watchCmd = &cobra.Command{
	Use:   "watch <reads.bam> <region>",
	Short: "Simulate a panning viewer walking across a region through the cache",
	Long: `watch repeatedly queries shifting windows through one cache, the
way an interactive viewer pans left-to-right, and reports how many
reads each step returned. The walk starts at the region's start and
runs for --steps steps; the region's end is not used. It does not
report which tiles came from the LRU store and which were loaded.

Example:
  tilecache watch sample.bam chr1:1000000-2000000 --steps 20 --step-kb 8`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		bamPath := args[0]
		region, err := cache.ParseRegion(args[1])
		if err != nil {
			return fmt.Errorf("invalid region: %w", err)
		}

		reader, err := htsbam.Open(context.Background(), bamPath)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", bamPath, err)
		}
		defer reader.Close()

		coordinator := cache.NewCoordinator(nil)
		cfg := config.Default()
		cfg.MaxVisibleRangeKB = watchRangeKB

		c, err := cache.New(reader, coordinator, cfg, cache.Options{})
		if err != nil {
			return fmt.Errorf("failed to open cache: %w", err)
		}
		defer c.Close()

		peStats := make(map[string]*pestats.Stats)
		windowBases := int(watchRangeKB * 1000)
		stepBases := int(watchStepKB * 1000)

		fmt.Printf("Panning %s from %d, window %dbp, step %dbp, %d steps\n",
			region.Sequence, region.Start, windowBases, stepBases, watchSteps)
		fmt.Println()
		fmt.Printf("%6s %12s %12s %10s\n", "step", "start", "end", "reads")
		fmt.Println("------------------------------------------------")

		pos := region.Start
		for i := 0; i < watchSteps; i++ {
			end := pos + windowBases
			it, err := c.Query(region.Sequence, pos, end, 500, cfg, peStats)
			if err != nil {
				return fmt.Errorf("query failed at step %d: %w", i, err)
			}
			count := 0
			for it.Next() {
				count++
			}
			it.Close()

			fmt.Printf("%6d %12d %12d %10d\n", i, pos, end, count)
			pos += stepBases
		}

		return nil
	},
}

func init() {
	watchCmd.Flags().IntVar(&watchSteps, "steps", 10, "Number of panning steps to simulate")
	watchCmd.Flags().Float64Var(&watchStepKB, "step-kb", 4, "Pan distance per step, in kilobases")
	watchCmd.Flags().Float64Var(&watchRangeKB, "visible-range-kb", 16, "Visibility window in kilobases")
}
