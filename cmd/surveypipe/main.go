// Command surveypipe prepares international assessment survey data:
// it extracts one country's rows from SAS containers, labels and
// cleans them, then merges and levels the results.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"surveypipe/adapters/csvio"
	"surveypipe/adapters/excel"
	"surveypipe/adapters/sav"
	"surveypipe/internal/config"
	"surveypipe/internal/pipeline"
	"surveypipe/internal/profiling"
	"surveypipe/ports"
)

type cliOptions struct {
	input       string
	output      string
	country     string
	scoreColumn string
	missing     float64
	uniformity  float64
	correlation float64
	workers     int
	dropColumns []string
	asExcel     bool
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("[Main] No .env file found, using environment defaults")
	}

	opts := &cliOptions{}

	root := &cobra.Command{
		Use:          "surveypipe",
		Short:        "Survey assessment data preparation pipeline",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&opts.input, "input", "i", "", "input file or directory")
	root.PersistentFlags().StringVarP(&opts.output, "out", "o", "", "output directory")
	root.PersistentFlags().StringVarP(&opts.country, "country", "c", "", "country code to extract")
	root.PersistentFlags().StringVar(&opts.scoreColumn, "score", "", "score column (auto-detected when empty)")
	root.PersistentFlags().Float64Var(&opts.missing, "missing", -1, "missingness drop threshold")
	root.PersistentFlags().Float64Var(&opts.uniformity, "uniform", -1, "uniformity drop threshold")
	root.PersistentFlags().Float64Var(&opts.correlation, "correlation", -1, "correlation drop threshold")
	root.PersistentFlags().IntVar(&opts.workers, "workers", 0, "parallel file workers for run")
	root.PersistentFlags().BoolVar(&opts.asExcel, "excel", false, "also export transform outputs as xlsx")

	label := &cobra.Command{
		Use:   "label",
		Short: "Extract the configured country's rows and apply labels",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cfg, err := buildService(opts)
			if err != nil {
				return err
			}
			return forEachInput(cfg.InputDir, func(path string) error {
				_, err := svc.LabelFile(path)
				return err
			})
		},
	}

	clean := &cobra.Command{
		Use:   "clean",
		Short: "Run the column-elimination pipeline over labeled files",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cfg, err := buildService(opts)
			if err != nil {
				return err
			}
			return forEachInput(cfg.InputDir, func(path string) error {
				_, _, err := svc.CleanFile(path)
				return err
			})
		},
	}

	transform := &cobra.Command{
		Use:   "transform",
		Short: "Merge cleaned tables and assign proficiency levels",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cfg, err := buildService(opts)
			if err != nil {
				return err
			}
			written, err := svc.Transform(cfg.InputDir, opts.dropColumns)
			if err != nil {
				return err
			}
			log.Printf("[Main] Wrote %d tables", len(written))
			return exportExcel(written, opts)
		},
	}
	transform.Flags().StringSliceVar(&opts.dropColumns, "drop", nil, "extra columns to drop before merging")

	run := &cobra.Command{
		Use:   "run",
		Short: "Label and clean every input file, then transform",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, cfg, err := buildService(opts)
			if err != nil {
				return err
			}
			return runAll(svc, cfg, opts)
		},
	}
	run.Flags().StringSliceVar(&opts.dropColumns, "drop", nil, "extra columns to drop before merging")

	profile := &cobra.Command{
		Use:   "profile",
		Short: "Print a per-column summary of a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := csvio.NewReader().Read(args[0])
			if err != nil {
				return err
			}
			fmt.Print(profiling.Render(filepath.Base(args[0]), profiling.Profile(t)))
			return nil
		},
	}

	root.AddCommand(label, clean, transform, run, profile)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildService resolves configuration from the environment, applies
// flag overrides and wires the pipeline service
func buildService(opts *cliOptions) (*pipeline.Service, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if opts.input != "" {
		cfg.InputDir = opts.input
	}
	if opts.output != "" {
		cfg.OutputDir = opts.output
	}
	if opts.country != "" {
		cfg.CountryCode = opts.country
	}
	if opts.scoreColumn != "" {
		cfg.ScoreColumn = opts.scoreColumn
	}
	if opts.missing >= 0 {
		cfg.MissingnessCutoff = opts.missing
	}
	if opts.uniformity >= 0 {
		cfg.UniformityCutoff = opts.uniformity
	}
	if opts.correlation >= 0 {
		cfg.CorrelationCutoff = opts.correlation
	}
	if opts.workers > 0 {
		cfg.Workers = opts.workers
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	svc := pipeline.NewService(cfg, sav.NewSource(), csvio.NewReader(), csvio.NewWriter())
	return svc, cfg, nil
}

// exportExcel writes an xlsx copy next to each produced CSV when the
// excel flag is set
func exportExcel(paths []string, opts *cliOptions) error {
	if !opts.asExcel {
		return nil
	}
	reader := csvio.NewReader()
	var writer ports.TableWriter = excel.NewWriter()
	for _, path := range paths {
		t, err := reader.Read(path)
		if err != nil {
			return err
		}
		target := path[:len(path)-len(filepath.Ext(path))] + ".xlsx"
		if err := writer.Write(t, target); err != nil {
			return err
		}
		log.Printf("[Main] Exported %s", target)
	}
	return nil
}

// runAll labels and cleans the input files on a bounded worker pool,
// then transforms the cleaned outputs sequentially
func runAll(svc *pipeline.Service, cfg *config.Config, opts *cliOptions) error {
	files, err := pipeline.ScanFiles(cfg.InputDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no supported files under %s", cfg.InputDir)
	}

	var g errgroup.Group
	g.SetLimit(cfg.Workers)
	for _, file := range files {
		g.Go(func() error {
			if err := svc.RunFile(file); err != nil {
				log.Printf("[Main] Skipping %s: %v", file, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	written, err := svc.Transform(filepath.Join(cfg.OutputDir, pipeline.CleanedDir), opts.dropColumns)
	if err != nil {
		return err
	}
	log.Printf("[Main] Wrote %d tables", len(written))
	return exportExcel(written, opts)
}

// forEachInput applies fn to every supported file under the input
// path, skipping files that fail
func forEachInput(input string, fn func(path string) error) error {
	files, err := pipeline.ScanFiles(input)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no supported files under %s", input)
	}
	for _, file := range files {
		if err := fn(file); err != nil {
			log.Printf("[Main] Skipping %s: %v", file, err)
		}
	}
	return nil
}
