package cmd

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/khanhnv2901/sanscout/internal/discovery"
	consts "github.com/khanhnv2901/sanscout/internal/shared/constants"
	"github.com/khanhnv2901/sanscout/internal/targets"
)

const (
	jsonPrefix = ""
	jsonIndent = "  "
)

// RunMetadata describes one scan run. It travels with the records so the
// report command can render a self-contained summary.
type RunMetadata struct {
	StartAt        time.Time `json:"started_at"`
	CompleteAt     time.Time `json:"completed_at"`
	Port           int       `json:"port"`
	TimeoutSecs    int       `json:"timeout_secs"`
	TotalTargets   int       `json:"total_targets"`
	TargetsWithSAN int       `json:"targets_with_san"`
	TotalRecords   int       `json:"total_records"`
	NewHosts       int       `json:"new_hosts"`
}

// RunOutput is the serialized form of a scan run.
type RunOutput struct {
	Metadata RunMetadata          `json:"metadata"`
	Results  discovery.ScanResult `json:"results"`
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan a target set and flag SAN entries that resolve outside of it",
	Long: `Retrieve the TLS certificate of every target, extract its subjectAltName
(SAN) entries, resolve each entry, and flag resolved addresses that are not
part of the original target set as newly discovered hosts.

Targets come from exactly one of:
  -r  an IP range in CIDR format
  -f  a file with one target per line

Wildcard SAN entries and names that fail to resolve are recorded with the
0.0.0.0 placeholder address and never flagged as discoveries.`,
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	ipRange, _ := cmd.Flags().GetString("range")
	ipFile, _ := cmd.Flags().GetString("file")
	outPath, _ := cmd.Flags().GetString("out")
	csvPath, _ := cmd.Flags().GetString("csv")

	targetList, err := targets.Load(ipRange, ipFile)
	if err != nil {
		return err
	}

	runtimeCfg := cliConfig.Scan
	fmt.Printf("%s %d address(es) to process.\n", colorInfo("[*]"), len(targetList))

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			fmt.Printf("\n%s Received %s, finalizing partial results...\n", colorWarn("!"), sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	timeout := time.Duration(runtimeCfg.TimeoutSecs) * time.Second
	scanner := &discovery.Scanner{
		Fetcher:     &discovery.CertFetcher{Timeout: timeout, Port: runtimeCfg.Port},
		Cache:       discovery.NewResolverCache(timeout, runtimeCfg.Nameservers),
		Concurrency: runtimeCfg.Concurrency,
		RateLimit:   runtimeCfg.RateLimit,
		Port:        runtimeCfg.Port,
		Logger:      logger,
	}

	var progress *progressPrinter
	if runtimeCfg.ProgressEnabled {
		progress = newProgressPrinter(len(targetList), "scan")
		progress.Start()
		scanner.Progress = func(target string, records int, found bool, duration float64) {
			progress.Increment(found, duration)
		}
	}

	start := time.Now()
	result := scanner.Run(ctx, targetList)

	if progress != nil {
		progress.Stop()
	}
	if ctx.Err() != nil {
		fmt.Printf("%s Run cancelled. Writing partial results...\n", colorWarn("!"))
	}

	out := RunOutput{
		Metadata: RunMetadata{
			StartAt:        start.UTC(),
			CompleteAt:     time.Now().UTC(),
			Port:           runtimeCfg.Port,
			TimeoutSecs:    runtimeCfg.TimeoutSecs,
			TotalTargets:   len(targetList),
			TargetsWithSAN: len(result),
			TotalRecords:   result.RecordCount(),
			NewHosts:       len(result.NewHosts()),
		},
		Results: result,
	}

	if err := writeResultsJSON(outPath, out); err != nil {
		return err
	}
	if csvPath != "" {
		if err := writeResultsCSV(csvPath, result); err != nil {
			return err
		}
	}

	fmt.Println(colorSuccess("Scan complete."))
	fmt.Printf("%s %s\n", colorInfo("Results:"), outPath)
	if csvPath != "" {
		fmt.Printf("%s %s\n", colorInfo("CSV:"), csvPath)
	}
	fmt.Printf("Summary: %d target(s), %d with SAN entries, %d record(s), %d new host(s)\n",
		out.Metadata.TotalTargets, out.Metadata.TargetsWithSAN, out.Metadata.TotalRecords, out.Metadata.NewHosts)

	return nil
}

func writeResultsJSON(path string, out RunOutput) error {
	b, err := json.MarshalIndent(out, jsonPrefix, jsonIndent)
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	if err := os.WriteFile(path, b, consts.DefaultFilePerm); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	return nil
}

// writeResultsCSV exports the records with one row per (target, SAN) pair.
// Rows are grouped by target in lexical key order; within a target they keep
// SAN extension order.
func writeResultsCSV(path string, result discovery.ScanResult) error {
	f, err := os.Create(path) // #nosec G304 -- operator-chosen output path.
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Source", "SAN", "Resolved IP", "Newly Discovered"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, key := range sortedResultKeys(result) {
		for _, rec := range result[key] {
			flag := "no"
			if rec.NewHost {
				flag = "yes"
			}
			if err := w.Write([]string{rec.Source, rec.SAN, rec.ResolvedIP, flag}); err != nil {
				return fmt.Errorf("failed to write CSV row: %w", err)
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

func sortedResultKeys(result discovery.ScanResult) []string {
	keys := make([]string, 0, len(result))
	for key := range result {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func init() {
	scanCmd.Flags().StringP("range", "r", "", "IP range to analyze, in CIDR format")
	scanCmd.Flags().StringP("file", "f", "", "file with one target (IP or hostname) per line")
	scanCmd.Flags().StringP("out", "o", "scan_results.json", "output file for scan results (JSON)")
	scanCmd.Flags().String("csv", "", "also export records to a CSV file")
	scanCmd.Flags().IntVarP(&cliConfig.Scan.Concurrency, "concurrency", "c", cliConfig.Scan.Concurrency, "max concurrent targets")
	scanCmd.Flags().IntVar(&cliConfig.Scan.RateLimit, "rate", cliConfig.Scan.RateLimit, "handshake attempts per second (global)")
	scanCmd.Flags().IntVarP(&cliConfig.Scan.TimeoutSecs, "timeout", "t", cliConfig.Scan.TimeoutSecs, "connect/handshake/DNS timeout in seconds")
	scanCmd.Flags().IntVar(&cliConfig.Scan.Port, "port", cliConfig.Scan.Port, "TLS port to probe on each target")
	scanCmd.Flags().StringSliceVar(&cliConfig.Scan.Nameservers, "nameservers", cliConfig.Scan.Nameservers, "custom DNS nameservers (e.g., 8.8.8.8:53,1.1.1.1:53)")
	scanCmd.Flags().BoolVar(&cliConfig.Scan.ProgressEnabled, "progress", cliConfig.Scan.ProgressEnabled, "display live progress")
}
