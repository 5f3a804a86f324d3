package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/robyistrate/hsc-to-lci/internal/apperr"
	"github.com/robyistrate/hsc-to-lci/internal/classify"
	"github.com/robyistrate/hsc-to-lci/internal/config"
	"github.com/robyistrate/hsc-to-lci/internal/pipeline"
	"github.com/robyistrate/hsc-to-lci/internal/simulation"
	"github.com/robyistrate/hsc-to-lci/internal/ui"
)

var (
	inspectMetadata string
	inspectPolicy   string
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Extract and classify streams without writing anything",
	Long: "Run the read-only half of the pipeline: extract stream records, convert units and " +
		"classify each stream as technosphere or biosphere. Useful for checking the mapping " +
		"file before a full conversion.",
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().StringVarP(&inspectMetadata, "metadata", "m", "", "project metadata YAML file (required)")
	inspectCmd.Flags().StringVar(&inspectPolicy, "output-policy", "emissions+waste", "output-stream derivation policy (emissions|emissions+waste)")

	_ = viper.BindPFlag("inspect.metadata", inspectCmd.Flags().Lookup("metadata"))
	_ = viper.BindPFlag("inspect.output-policy", inspectCmd.Flags().Lookup("output-policy"))
}

func runInspect(cmd *cobra.Command, args []string) error {
	metadataPath := strings.TrimSpace(viper.GetString("inspect.metadata"))
	if metadataPath == "" {
		return apperr.User("missing --metadata: a project metadata file is required")
	}

	policy, err := simulation.ParseOutputPolicy(viper.GetString("inspect.output-policy"))
	if err != nil {
		return apperr.User(err.Error())
	}

	meta, err := config.Load(metadataPath)
	if err != nil {
		return err
	}

	p, err := pipeline.New(pipeline.Options{Metadata: meta, Policy: policy})
	if err != nil {
		return err
	}
	streams, err := p.ExtractClassified()
	if err != nil {
		return err
	}

	printStreamReport(cmd, streams)
	return nil
}

func printStreamReport(cmd *cobra.Command, streams []classify.ClassifiedStream) {
	out := cmd.OutOrStdout()

	byUnit := map[string][]classify.ClassifiedStream{}
	for _, s := range streams {
		byUnit[s.UnitProcess] = append(byUnit[s.UnitProcess], s)
	}

	for _, up := range classify.UnitProcesses(streams) {
		fmt.Fprintln(out, ui.SectionHeader.Render(up))
		for _, s := range byUnit[up] {
			var mark, detail string
			switch s.LCI {
			case classify.Technosphere:
				mark = ui.GetCheckMark()
				detail = "technosphere → " + s.Entry.MatchedName
			case classify.Biosphere:
				mark = ui.GetCheckMark()
				detail = fmt.Sprintf("biosphere → %s %v", s.Entry.MatchedName, s.Categories)
			default:
				mark = ui.GetWarnMark()
				detail = ui.Warning.Render("unmapped, no exchange will be generated")
			}
			fmt.Fprintf(out, "  %s %s  %g %s  %s\n", mark, s.StreamName, s.Amount, s.Unit, ui.Dim.Render(detail))
		}
	}

	var unmapped int
	for _, s := range streams {
		if s.LCI == classify.None {
			unmapped++
		}
	}
	fmt.Fprintf(out, "\n%s %d stream records, %d unmapped\n", ui.GetBullet(), len(streams), unmapped)
}
