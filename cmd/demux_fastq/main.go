package main

import (
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cpuprofile, memprofile, configFile string
	var verbose int

	cmd := &cobra.Command{
		Use:          "demux_fastq",
		Short:        "Split FASTQ files into per-barcode outputs",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			commonlog.Configure(verbose, nil)
			log := commonlog.GetLogger("demux")

			if cpuprofile != "" {
				f, err := os.Create(cpuprofile)
				if err != nil {
					return fmt.Errorf("could not create CPU profile: %w", err)
				}
				defer f.Close()
				if err := pprof.StartCPUProfile(f); err != nil {
					return fmt.Errorf("could not start CPU profile: %w", err)
				}
				defer pprof.StopCPUProfile()
			}

			log.Info("Reading configuration")
			config, err := readConfigFile(configFile)
			if err != nil {
				return fmt.Errorf("could not read config file: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			log.Info("Starting demux")
			stats, err := demux(ctx, config, log)
			if err != nil {
				log.Errorf("demux: %s", err)
				return err
			}
			log.Noticef("done: %d records, %d matched, %d unmatched",
				stats.Read.Load(), stats.Matched.Load(), stats.Unmatched.Load())

			if memprofile != "" {
				f, err := os.Create(memprofile)
				if err != nil {
					return fmt.Errorf("could not create memory profile: %w", err)
				}
				defer f.Close()
				runtime.GC() // get up-to-date statistics
				if err := pprof.WriteHeapProfile(f); err != nil {
					return fmt.Errorf("could not write memory profile: %w", err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&cpuprofile, "cpuprofile", "", "write cpu profile to `file`")
	cmd.Flags().StringVar(&memprofile, "memprofile", "", "write memory profile to `file`")
	cmd.Flags().StringVar(&configFile, "configfile", "", "read configuration from `file`")
	cmd.Flags().CountVarP(&verbose, "verbose", "v", "log more (repeatable)")
	cmd.MarkFlagRequired("configfile")
	return cmd
}
