package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tilecache",
	Short: "tilecache - a tiled, depth-limited alignment cache",
	Long: `tilecache sits between an indexed BAM file and a viewer that
repeatedly queries overlapping genomic intervals. It partitions each
reference sequence into fixed-size tiles, lazily loads them on demand,
downsamples deep-coverage regions while keeping per-base counts exact,
and evicts tiles under an LRU policy.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("tilecache version 0.1.0")
		fmt.Println("Tiled alignment cache for indexed BAM sources")
	},
}
