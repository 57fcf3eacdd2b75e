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
	showReads      int
	countOnly      bool
	maxDepth       int
	visibleRangeKB float64
)

var queryCmd = &cobra.Command{
	Use:   "query <reads.bam> <region>",
	Short: "Query reads from an indexed BAM file through the tile cache",
	Long: `Query reads from a specific genomic region, routed through the
tiled cache rather than a raw index lookup. Repeated queries into the
same tile range hit the cache's LRU store instead of re-reading the
file.

The region format is: chr:start-end (e.g., chr1:1000000-2000000)

Examples:
  tilecache query sample.bam chr1:1000000-2000000
  tilecache query sample.bam chr1:1000000-2000000 --count
  tilecache query sample.bam chr1:1000000-2000000 --show 5 --max-depth 50`,
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
		cfg.MaxVisibleRangeKB = visibleRangeKB

		c, err := cache.New(reader, coordinator, cfg, cache.Options{})
		if err != nil {
			return fmt.Errorf("failed to open cache: %w", err)
		}
		defer c.Close()

		peStats := make(map[string]*pestats.Stats)

		fmt.Printf("Query: %s:%d-%d\n", region.Sequence, region.Start, region.End)

		it, err := c.Query(region.Sequence, region.Start, region.End, maxDepth, cfg, peStats)
		if err != nil {
			return fmt.Errorf("query failed: %w", err)
		}
		defer it.Close()

		var reads []string
		count := 0
		for it.Next() {
			count++
			if len(reads) < showReads || showReads == 0 {
				r := it.Record()
				reads = append(reads, fmt.Sprintf("%-20s %12d %6d", r.ReadName(), r.Start(), r.MappingQuality()))
			}
		}

		fmt.Printf("Found %d reads in region\n", count)

		if countOnly {
			return nil
		}

		if len(reads) > 0 {
			fmt.Println()
			fmt.Printf("%-20s %12s %6s\n", "Read Name", "Position", "MapQ")
			fmt.Println("------------------------------------------------------------")
			for _, line := range reads {
				fmt.Println(line)
			}
		}

		return nil
	},
}

func init() {
	queryCmd.Flags().BoolVar(&countOnly, "count", false,
		"Only show read count, don't display reads")
	queryCmd.Flags().IntVar(&showReads, "show", 10,
		"Number of reads to display (default 10, 0 for all)")
	queryCmd.Flags().IntVar(&maxDepth, "max-depth", 500,
		"Target display depth passed to the tile sampler")
	queryCmd.Flags().Float64Var(&visibleRangeKB, "visible-range-kb", 16,
		"Visibility window in kilobases, controls tile size")
}
