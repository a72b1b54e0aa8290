package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/go-logr/logr"
	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/yuriy-kovalchuk/yk-ddns/internal/address"
	"github.com/yuriy-kovalchuk/yk-ddns/internal/config"
	"github.com/yuriy-kovalchuk/yk-ddns/internal/controller"
	"github.com/yuriy-kovalchuk/yk-ddns/internal/dns"
	_ "github.com/yuriy-kovalchuk/yk-ddns/internal/dns/providers"
	"github.com/yuriy-kovalchuk/yk-ddns/internal/metrics"
)

var Version = "dev"

const (
	defaultConfigPath = "yk-ddns.yaml"
	configPathEnv     = "YK_DDNS_CONFIG"
)

type options struct {
	configPath      string
	check           bool
	lockFile        string
	metricsTextfile string
	zap             zap.Options
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := options{
		zap: zap.Options{Development: true},
	}

	cmd := &cobra.Command{
		Use:           "yk-ddns",
		Short:         "Keep A/AAAA records in sync with the public address of this host",
		Version:       Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := zap.New(zap.UseFlagOptions(&opts.zap), zap.WriteTo(cmd.ErrOrStderr()))
			if err := run(cmd, log, opts); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
				return err
			}
			return nil
		},
	}

	configPath := os.Getenv(configPathEnv)
	if configPath == "" {
		configPath = defaultConfigPath
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "f", configPath, "Path to the configuration file (env "+configPathEnv+")")
	cmd.Flags().BoolVarP(&opts.check, "check", "c", false, "Validate the configuration file and exit")
	cmd.Flags().StringVar(&opts.lockFile, "lock-file", "", "Skip the run when another process holds this lock")
	cmd.Flags().StringVar(&opts.metricsTextfile, "metrics-textfile", "", "Write run metrics to this file in the Prometheus text format")

	zapFlags := flag.NewFlagSet("zap", flag.ContinueOnError)
	opts.zap.BindFlags(zapFlags)
	cmd.Flags().AddGoFlagSet(zapFlags)

	return cmd
}

// run performs one complete pass. Once records are being reconciled the run
// is never cancelled: every configured record gets a terminal status.
func run(cmd *cobra.Command, log logr.Logger, opts options) error {
	ctx := context.Background()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("unable to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration %s: %w", opts.configPath, err)
	}

	provider, err := dns.NewProvider(cfg.Provider, log.WithName(cfg.Provider), cfg.Settings)
	if err != nil {
		return fmt.Errorf("unable to create DNS provider: %w", err)
	}

	if opts.check {
		fmt.Fprintf(cmd.OutOrStdout(), "%s configuration file is valid\n", opts.configPath)
		return nil
	}

	log = log.WithValues("run", uuid.NewString())

	if opts.lockFile != "" {
		lock := flock.New(opts.lockFile)
		locked, err := lock.TryLock()
		if err != nil {
			return fmt.Errorf("unable to acquire lock %s: %w", opts.lockFile, err)
		}
		if !locked {
			log.Info("another run holds the lock, nothing to do", "lock", opts.lockFile)
			return nil
		}
		defer lock.Unlock()
	}

	resolver, err := address.NewResolver(cfg.Resolver)
	if err != nil {
		return fmt.Errorf("unable to create address resolver: %w", err)
	}

	start := time.Now()
	log.Info("starting yk-ddns", "version", Version, "config", opts.configPath,
		"domains", len(cfg.Domains), "records", cfg.RecordCount())

	addrs := address.Resolve(ctx, log.WithName("address"), resolver, address.FamiliesFor(cfg.RecordTypes()))

	recorder := metrics.NewRecorder()
	recorder.ObserveAddresses(addrs)

	reconciler := &controller.RecordReconciler{
		DNS:     provider,
		Log:     log.WithName("reconciler"),
		Domains: cfg.Domains,
		Reporter: controller.Reporters{
			controller.LogReporter{Log: log.WithName("reconciler")},
			recorder,
		},
	}
	summary := reconciler.Run(ctx, addrs)
	recorder.ObserveRun(start, time.Now())

	log.Info("run finished", "summary", controller.FormatSummary(summary), "failed", summary.Failed())

	if opts.metricsTextfile != "" {
		if err := recorder.WriteTextfile(opts.metricsTextfile); err != nil {
			log.Error(err, "unable to write metrics", "path", opts.metricsTextfile)
		}
	}
	return nil
}
