package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/telhawk-systems/tribalkb/internal/entitymap"
	"github.com/telhawk-systems/tribalkb/pkg/output"
)

var entitymapPath string

var entitymapCmd = &cobra.Command{
	Use:   "entitymap",
	Short: "Entity-type mapping inspection",
}

var entitymapShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the field-to-type mapping",
	Long:  "Display the entity types and the association fields registered under each",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.EntityMap
		if entitymapPath != "" {
			path = entitymapPath
		}

		resolver, err := entitymap.Load(path)
		if err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("output-format")
		if format == "json" {
			doc := make(map[string][]string)
			for _, t := range resolver.Types() {
				doc[t] = resolver.FieldsFor(t)
			}
			return output.JSON(doc)
		}

		table := output.NewTable([]string{"Type", "Fields", "Count"})
		for _, t := range resolver.Types() {
			fields := resolver.FieldsFor(t)
			table.AddRow([]string{t, strings.Join(fields, ", "), strconv.Itoa(len(fields))})
		}
		table.Render()
		return nil
	},
}

func init() {
	entitymapShowCmd.Flags().StringVar(&entitymapPath, "entity-map", "", "entity-type mapping JSON file")

	entitymapCmd.AddCommand(entitymapShowCmd)
	rootCmd.AddCommand(entitymapCmd)
}
