package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/robyistrate/hsc-to-lci/internal/apperr"
	"github.com/robyistrate/hsc-to-lci/internal/config"
	"github.com/robyistrate/hsc-to-lci/internal/export"
	"github.com/robyistrate/hsc-to-lci/internal/logging"
	"github.com/robyistrate/hsc-to-lci/internal/pipeline"
	"github.com/robyistrate/hsc-to-lci/internal/simulation"
	"github.com/robyistrate/hsc-to-lci/internal/ui"
)

var (
	convertMetadata  string
	convertExportDir string
	convertPolicy    string
	convertLogLevel  string
	convertForce     bool
)

// convertCmd represents the convert command
var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Run the full conversion and export the linked inventory",
	Long: "Run the full pipeline on a simulation results file: extract streams, convert units, " +
		"resolve technosphere flows against the background database, link every exchange and " +
		"export the inventory to a timestamped Excel file.",
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVarP(&convertMetadata, "metadata", "m", "", "project metadata YAML file (required)")
	convertCmd.Flags().StringVar(&convertExportDir, "export-dir", "", "export directory (default: current working directory)")
	convertCmd.Flags().StringVar(&convertPolicy, "output-policy", "emissions+waste", "output-stream derivation policy (emissions|emissions+waste)")
	convertCmd.Flags().StringVar(&convertLogLevel, "log-level", "standard", "log verbosity (quiet|standard|debug)")
	convertCmd.Flags().BoolVar(&convertForce, "force", false, "overwrite an existing export file without asking")

	_ = viper.BindPFlag("convert.metadata", convertCmd.Flags().Lookup("metadata"))
	_ = viper.BindPFlag("convert.export-dir", convertCmd.Flags().Lookup("export-dir"))
	_ = viper.BindPFlag("convert.output-policy", convertCmd.Flags().Lookup("output-policy"))
	_ = viper.BindPFlag("convert.log-level", convertCmd.Flags().Lookup("log-level"))
	_ = viper.BindPFlag("convert.force", convertCmd.Flags().Lookup("force"))
}

func runConvert(cmd *cobra.Command, args []string) error {
	metadataPath := strings.TrimSpace(viper.GetString("convert.metadata"))
	if metadataPath == "" {
		return apperr.User("missing --metadata: a project metadata file is required")
	}

	log, err := resolveLogger(viper.GetString("convert.log-level"), cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	policy, err := simulation.ParseOutputPolicy(viper.GetString("convert.output-policy"))
	if err != nil {
		return apperr.User(err.Error())
	}

	meta, err := config.Load(metadataPath)
	if err != nil {
		return err
	}

	exportDir := strings.TrimSpace(viper.GetString("convert.export-dir"))
	if exportDir == "" {
		exportDir, err = os.Getwd()
		if err != nil {
			return fmt.Errorf("resolving working directory: %w", err)
		}
	}

	p, err := pipeline.New(pipeline.Options{Metadata: meta, Policy: policy, Log: log})
	if err != nil {
		return err
	}
	datasets, err := p.Run()
	if err != nil {
		return err
	}

	target := filepath.Join(exportDir, export.Filename(meta.System.Database, time.Now()))
	if !viper.GetBool("convert.force") {
		if err := confirmOverwrite(target); err != nil {
			return err
		}
	}

	path, err := export.Write(datasets, meta.System.Database, exportDir, time.Now())
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), ui.GetCheckMark()+" "+
		ui.Bold.Render(fmt.Sprintf("Database created: %d datasets", len(datasets))))
	fmt.Fprintln(cmd.OutOrStdout(), ui.FormatKeyValue("Inventories exported to", path))
	return nil
}

// confirmOverwrite asks before replacing an existing export file. A declined
// prompt cancels the run cleanly.
func confirmOverwrite(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}

	var overwrite bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(fmt.Sprintf("Export file %s already exists. Overwrite?", filepath.Base(path))).
			Value(&overwrite),
	))
	if err := form.Run(); err != nil {
		return apperr.ErrCancelled
	}
	if !overwrite {
		return apperr.ErrCancelled
	}
	return nil
}

// resolveLogger maps the log-level flag onto a pipeline logger. Quiet
// disables logging entirely; debug adds the unit-process field.
func resolveLogger(level string, w io.Writer) (*logging.Logger, error) {
	l := strings.ToLower(strings.TrimSpace(level))
	if l == "" {
		l = "standard"
	}
	switch l {
	case "quiet", "standard", "debug":
		// ok
	default:
		return nil, apperr.Userf("invalid --log-level %q (expected quiet|standard|debug)", level)
	}

	log := &logging.Logger{PrefixText: "convert:", PrefixColor: ui.FgGreen, OmitUnit: l != "debug"}
	if l != "quiet" {
		log.SetWriter(w)
	}
	return log, nil
}
