package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	internal "dcimsort/dcim"
	"dcimsort/dcim/config"
	"dcimsort/dcim/media"
	"dcimsort/dcim/pipeline"
	"dcimsort/dcim/sorting"
)

func newRootCommand() *cobra.Command {
	var (
		configFlag   string
		modeFlag     string
		maxDepthFlag int
		workersFlag  int
		hiddenFlag   bool
		verboseFlag  bool
	)

	rootCmd := &cobra.Command{
		Use:           "dcimsort <source> <target>",
		Short:         "Sort media files out of DCIM trees by their metadata",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := internal.GetLogger()
			if verboseFlag {
				log = log.Level(zerolog.DebugLevel)
			} else {
				log = log.Level(zerolog.InfoLevel)
			}

			op, ok := sorting.ParseOperation(modeFlag)
			if !ok {
				return fmt.Errorf("unknown mode %q (want move, copy or simulate)", modeFlag)
			}

			cfg, err := config.Load(configFlag)
			if err != nil {
				return err
			}
			router, err := cfg.Sorter.BuildRouter()
			if err != nil {
				return err
			}
			policy, err := cfg.Sorter.BuildPolicy()
			if err != nil {
				return err
			}

			source, target := args[0], args[1]

			extractor := media.NewExtractor(log)
			scanner, err := media.NewScanner(source, media.ScanOptions{
				MaxDepth:      maxDepthFlag,
				IncludeHidden: hiddenFlag,
				WorkerCount:   workersFlag,
				IgnoreFile:    internal.DefaultIgnoreFile,
			}, extractor, log)
			if err != nil {
				return err
			}

			files, err := scanner.Scan(cmd.Context())
			if err != nil {
				return err
			}

			ops := sorting.NewFileOps(target, op, log)
			run := pipeline.New(router, policy, ops, workersFlag, log)
			report, err := run.Run(cmd.Context(), files)
			if err != nil {
				return err
			}

			if op == sorting.OpSimulate {
				for _, dir := range ops.Dirs() {
					fmt.Fprintf(cmd.OutOrStdout(), "mkdir: %s\n", dir)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), report.String())
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.Flags().StringVarP(&modeFlag, "mode", "m", "simulate", "Sort operation: move, copy or simulate")
	rootCmd.Flags().IntVar(&maxDepthFlag, "max-depth", internal.DefaultMaxScanDepth, "Maximum scan depth (0 = unlimited)")
	rootCmd.Flags().IntVar(&workersFlag, "workers", internal.DefaultWorkerCount, "Concurrent worker count")
	rootCmd.Flags().BoolVar(&hiddenFlag, "hidden", false, "Include hidden files and directories")
	rootCmd.Flags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable debug logging")

	return rootCmd
}
