package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/telhawk-systems/tribalkb/internal/entitymap"
	"github.com/telhawk-systems/tribalkb/internal/logging"
	"github.com/telhawk-systems/tribalkb/internal/relevance"
	"github.com/telhawk-systems/tribalkb/pkg/output"
)

var (
	relevanceSignals    string
	relevanceHistorical string
	relevanceEntityMap  string
	relevanceOutput     string
	relevanceChunkSize  int
)

var relevanceCmd = &cobra.Command{
	Use:   "relevance",
	Short: "Match current signals against historical user activity",
	Long: `Join a current-period signal CSV against a historical user-activity
dump on the derived user key and keep pairings whose MITRE tactics form
a meaningful progression (or repeat) over time.

Example:
  tribalkb relevance --signals current_signals.csv \
    --historical user_last_180_days.csv \
    --entity-map entity_primary_identifiers.json \
    --output relevant_matches.csv`,
	RunE: runRelevance,
}

func init() {
	relevanceCmd.Flags().StringVar(&relevanceSignals, "signals", "", "current-period signal CSV")
	relevanceCmd.Flags().StringVar(&relevanceHistorical, "historical", "", "historical user-activity CSV")
	relevanceCmd.Flags().StringVar(&relevanceEntityMap, "entity-map", "", "entity-type mapping JSON file")
	relevanceCmd.Flags().StringVar(&relevanceOutput, "output", "", "matches CSV destination")
	relevanceCmd.Flags().IntVar(&relevanceChunkSize, "chunk-size", 0, "current rows joined per batch")

	rootCmd.AddCommand(relevanceCmd)
}

func runRelevance(cmd *cobra.Command, args []string) error {
	start := time.Now()

	signalsPath := cfg.Relevance.Signals
	if relevanceSignals != "" {
		signalsPath = relevanceSignals
	}
	historicalPath := cfg.Relevance.Historical
	if relevanceHistorical != "" {
		historicalPath = relevanceHistorical
	}
	entityMapPath := cfg.EntityMap
	if relevanceEntityMap != "" {
		entityMapPath = relevanceEntityMap
	}
	outPath := cfg.Relevance.Output
	if relevanceOutput != "" {
		outPath = relevanceOutput
	}
	chunkSize := cfg.Relevance.ChunkSize
	if relevanceChunkSize > 0 {
		chunkSize = relevanceChunkSize
	}

	if signalsPath == "" || historicalPath == "" {
		return fmt.Errorf("both --signals and --historical are required")
	}

	resolver, err := entitymap.Load(entityMapPath)
	if err != nil {
		return err
	}

	job := &relevance.Job{Resolver: resolver, ChunkSize: chunkSize}
	n, err := job.Run(signalsPath, historicalPath, outPath)
	if err != nil {
		return err
	}

	logger.Info("relevance analysis complete",
		logging.Matches(n),
		logging.Output(outPath),
		logging.Duration(time.Since(start).Milliseconds()))

	output.Success("Wrote %d relevant pairings to %s", n, outPath)
	return nil
}
