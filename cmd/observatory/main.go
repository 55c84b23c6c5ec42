package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hamed0406/observatorycheck/internal/check"
	"github.com/hamed0406/observatorycheck/internal/config"
	"github.com/hamed0406/observatorycheck/internal/domain"
	"github.com/hamed0406/observatorycheck/internal/logging"
	"github.com/hamed0406/observatorycheck/internal/metrics"
	"github.com/hamed0406/observatorycheck/internal/observatory"
)

type options struct {
	configPath string
	host       string
	hidden     bool
	timeout    time.Duration
	apiURL     string
	tags       []string
	logLevel   string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var o options
	cmd := &cobra.Command{
		Use:   "observatory",
		Short: "Run the HTTP Observatory check once and print the emitted metrics",
		Long: "Triggers a Mozilla HTTP Observatory scan for each instance and, when the scan\n" +
			"is finished, prints the gauges the check would report.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, o)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.configPath, "config", "c", "", "checks file (init_config + instances)")
	f.StringVar(&o.host, "host", "", "single host to scan, instead of --config")
	f.BoolVar(&o.hidden, "hidden", false, "hide the scan from the public Observatory listing")
	f.DurationVar(&o.timeout, "timeout", 5*time.Second, "request timeout for --host")
	f.StringVar(&o.apiURL, "api-url", observatory.DefaultAPIURL, "Observatory API base URL for --host")
	f.StringSliceVar(&o.tags, "tag", nil, "extra tag for --host, may be repeated")
	f.StringVar(&o.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	cmd.MarkFlagsMutuallyExclusive("config", "host")
	cmd.MarkFlagsOneRequired("config", "host")
	return cmd
}

func run(cmd *cobra.Command, o options) error {
	logger, err := logging.NewConsole(o.logLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	instances, err := o.instances()
	if err != nil {
		return err
	}

	c := check.New(logger, observatory.NewClient(logger))
	out := cmd.OutOrStdout()
	for _, inst := range instances {
		fmt.Fprintf(out, "Running the check against host: %s\n", inst.Host)
		batch := metrics.NewBatch(inst.Host)
		if err := c.Run(cmd.Context(), inst, batch); err != nil {
			return fmt.Errorf("check %s: %w", inst.Host, err)
		}
		for _, ob := range batch.Observations() {
			fmt.Fprintf(out, "  %s %g %v\n", ob.Name, ob.Value, ob.Tags)
		}
	}
	return nil
}

func (o options) instances() ([]domain.Instance, error) {
	if o.configPath == "" && o.timeout <= 0 {
		return nil, fmt.Errorf("--timeout must be positive, got %v", o.timeout)
	}
	if o.configPath != "" {
		f, err := config.LoadChecks(o.configPath)
		if err != nil {
			return nil, err
		}
		return f.ResolveInstances(), nil
	}
	return []domain.Instance{{
		Host:    o.host,
		Timeout: o.timeout,
		Tags:    o.tags,
		Hidden:  o.hidden,
		APIURL:  o.apiURL,
	}}, nil
}
