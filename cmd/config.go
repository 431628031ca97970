package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	consts "github.com/khanhnv2901/sanscout/internal/shared/constants"
)

const (
	defaultScanTimeoutSeconds = 5
	defaultScanConcurrency    = 8
	defaultScanRateLimit      = 16
)

// CLIConfig captures runtime configuration shared across commands.
type CLIConfig struct {
	Scan ScanRuntimeConfig
}

// ScanRuntimeConfig consolidates flag-driven settings for the scan command.
type ScanRuntimeConfig struct {
	Concurrency     int
	RateLimit       int
	TimeoutSecs     int
	Port            int
	Nameservers     []string
	ProgressEnabled bool
}

type defaultOverrides struct {
	TimeoutSecs *int
	Concurrency *int
	RateLimit   *int
	Port        *int
	Nameservers []string
	Progress    *bool
}

var cliConfig = newCLIConfig()

func newCLIConfig() *CLIConfig {
	return &CLIConfig{
		Scan: ScanRuntimeConfig{
			Concurrency:     defaultScanConcurrency,
			RateLimit:       defaultScanRateLimit,
			TimeoutSecs:     defaultScanTimeoutSeconds,
			Port:            consts.DefaultTLSPort,
			Nameservers:     []string{},
			ProgressEnabled: true,
		},
	}
}

func loadDefaultOverrides() defaultOverrides {
	overrides := defaultOverrides{}

	if viper.IsSet("defaults.timeout_secs") {
		val := viper.GetInt("defaults.timeout_secs")
		overrides.TimeoutSecs = &val
	}

	if viper.IsSet("defaults.concurrency") {
		val := viper.GetInt("defaults.concurrency")
		overrides.Concurrency = &val
	}

	if viper.IsSet("defaults.rate") {
		val := viper.GetInt("defaults.rate")
		overrides.RateLimit = &val
	}

	if viper.IsSet("defaults.port") {
		val := viper.GetInt("defaults.port")
		overrides.Port = &val
	}

	if viper.IsSet("defaults.nameservers") {
		overrides.Nameservers = viper.GetStringSlice("defaults.nameservers")
	}

	if viper.IsSet("defaults.progress") {
		val := viper.GetBool("defaults.progress")
		overrides.Progress = &val
	}

	return overrides
}

// applyConfigDefaults merges config file defaults into the runtime config when
// the user did not explicitly override the corresponding flag.
func applyConfigDefaults(cmd *cobra.Command) {
	overrides := loadDefaultOverrides()

	if overrides.TimeoutSecs != nil {
		applyIntDefault(scanCmd.Flags(), "timeout", *overrides.TimeoutSecs, func(v int) {
			cliConfig.Scan.TimeoutSecs = v
		})
	}

	if overrides.Concurrency != nil {
		applyIntDefault(scanCmd.Flags(), "concurrency", *overrides.Concurrency, func(v int) {
			cliConfig.Scan.Concurrency = v
		})
	}

	if overrides.RateLimit != nil {
		applyIntDefault(scanCmd.Flags(), "rate", *overrides.RateLimit, func(v int) {
			cliConfig.Scan.RateLimit = v
		})
	}

	if overrides.Port != nil {
		applyIntDefault(scanCmd.Flags(), "port", *overrides.Port, func(v int) {
			cliConfig.Scan.Port = v
		})
	}

	if len(overrides.Nameservers) > 0 {
		flag := scanCmd.Flags().Lookup("nameservers")
		if flag == nil || !flag.Changed {
			cliConfig.Scan.Nameservers = overrides.Nameservers
		}
	}

	if overrides.Progress != nil {
		applyBoolDefault(scanCmd.Flags(), "progress", *overrides.Progress, func(v bool) {
			cliConfig.Scan.ProgressEnabled = v
		})
	}
}

func applyIntDefault(flags *pflag.FlagSet, name string, value int, setter func(int)) {
	if flags == nil || setter == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag != nil && flag.Changed {
		return
	}
	setter(value)
}

func applyBoolDefault(flags *pflag.FlagSet, name string, value bool, setter func(bool)) {
	if flags == nil || setter == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag != nil && flag.Changed {
		return
	}
	setter(value)
}
