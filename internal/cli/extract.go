package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/telhawk-systems/tribalkb/internal/casefile"
	"github.com/telhawk-systems/tribalkb/internal/entitymap"
	"github.com/telhawk-systems/tribalkb/internal/logging"
	"github.com/telhawk-systems/tribalkb/internal/tribal"
	"github.com/telhawk-systems/tribalkb/pkg/output"
)

var (
	extractEntityMap      string
	extractCases          []string
	extractOutput         string
	extractFromOpenSearch bool
	extractIndex          string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Build the entity knowledge base from case records",
	Long: `Fold one or more case-record files (or an OpenSearch case index) into
the per-entity knowledge base and write it as YAML.

Input loading is all-or-nothing: any unreadable or malformed source
aborts the run. Malformed fields inside individual records degrade to
safe defaults and are absorbed.

Examples:
  # Extract from local case files
  tribalkb extract --entity-map entity_primary_identifiers.json \
    --cases cases_part_1.json --cases cases_part_2.json \
    --output entity_tribal_knowledge.yaml

  # Extract from an OpenSearch case index
  tribalkb extract --from-opensearch --index tribalkb-cases`,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVar(&extractEntityMap, "entity-map", "", "entity-type mapping JSON file")
	extractCmd.Flags().StringSliceVar(&extractCases, "cases", nil, "case-record JSON file (repeatable, concatenated in order)")
	extractCmd.Flags().StringVar(&extractOutput, "output", "", "knowledge-base YAML destination")
	extractCmd.Flags().BoolVar(&extractFromOpenSearch, "from-opensearch", false, "load cases from OpenSearch instead of files")
	extractCmd.Flags().StringVar(&extractIndex, "index", "", "OpenSearch case index (overrides config)")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	start := time.Now()

	entityMapPath := cfg.EntityMap
	if extractEntityMap != "" {
		entityMapPath = extractEntityMap
	}
	casePaths := cfg.CaseFiles
	if len(extractCases) > 0 {
		casePaths = extractCases
	}
	outPath := cfg.Output
	if extractOutput != "" {
		outPath = extractOutput
	}

	resolver, err := entitymap.Load(entityMapPath)
	if err != nil {
		return err
	}

	var cases []casefile.CaseRecord
	if extractFromOpenSearch {
		osCfg := cfg.OpenSearch
		if extractIndex != "" {
			osCfg.Index = extractIndex
		}
		source, err := casefile.NewOpenSearchSource(osCfg)
		if err != nil {
			return err
		}
		if cases, err = source.Load(context.Background()); err != nil {
			return err
		}
		logger.Info("loaded cases from opensearch",
			logging.Source(osCfg.Index), logging.Cases(len(cases)))
	} else {
		if len(casePaths) == 0 {
			return fmt.Errorf("no case files configured; pass --cases or set case_files")
		}
		if cases, err = casefile.LoadFiles(casePaths...); err != nil {
			return err
		}
		logger.Info("loaded case files",
			logging.Source(fmt.Sprintf("%d files", len(casePaths))), logging.Cases(len(cases)))
	}

	acc := tribal.NewAccumulator(resolver)
	acc.AddCases(cases)

	docs := acc.Finalize()
	if err := tribal.WriteFile(outPath, docs); err != nil {
		return err
	}

	logger.Info("knowledge base written",
		logging.Cases(acc.CasesSeen()),
		logging.Signals(acc.SignalsSeen()),
		logging.Entities(acc.EntityCount()),
		logging.Output(outPath),
		logging.Duration(time.Since(start).Milliseconds()))

	output.Success("Wrote %d entity profiles to %s (%d cases, %d signals)",
		len(docs), outPath, acc.CasesSeen(), acc.SignalsSeen())
	return nil
}
