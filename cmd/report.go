package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/jung-kurt/gofpdf"
	"github.com/spf13/cobra"

	"github.com/khanhnv2901/sanscout/internal/discovery"
	sharederrors "github.com/khanhnv2901/sanscout/internal/shared/errors"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render scan results as a terminal table or PDF",
	Long: `Read a results file produced by the scan command and render it as a
terminal table. Newly discovered hosts are highlighted. With --pdf, the same
rows are also exported as a PDF document.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		inPath, _ := cmd.Flags().GetString("in")
		pdfPath, _ := cmd.Flags().GetString("pdf")
		newOnly, _ := cmd.Flags().GetBool("new-only")

		out, err := loadRunOutput(inPath)
		if err != nil {
			return err
		}

		rows := flattenRecords(out.Results, newOnly)
		if len(rows) == 0 {
			fmt.Println(colorWarn("No records to report."))
			return nil
		}

		printRecordTable(os.Stdout, rows)
		fmt.Printf("Summary: %d target(s) scanned, %d with SAN entries, %d new host(s)\n",
			out.Metadata.TotalTargets, out.Metadata.TargetsWithSAN, out.Metadata.NewHosts)

		if pdfPath != "" {
			if err := writePDFReport(pdfPath, out.Metadata, rows); err != nil {
				return fmt.Errorf("write PDF report: %w", err)
			}
			fmt.Printf("%s %s\n", colorInfo("PDF:"), pdfPath)
		}
		return nil
	},
}

func loadRunOutput(path string) (*RunOutput, error) {
	b, err := os.ReadFile(path) // #nosec G304 -- operator-chosen results path.
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", sharederrors.ErrResultsNotFound, path)
		}
		return nil, fmt.Errorf("read results file: %w", err)
	}

	var out RunOutput
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("%w: %s", sharederrors.ErrMalformedResults, path)
	}
	return &out, nil
}

// flattenRecords turns the result mapping into a stable row list: targets in
// lexical key order, records in SAN extension order within each target.
func flattenRecords(results discovery.ScanResult, newOnly bool) []discovery.DiscoveryRecord {
	var rows []discovery.DiscoveryRecord
	for _, key := range sortedResultKeys(results) {
		for _, rec := range results[key] {
			if newOnly && !rec.NewHost {
				continue
			}
			rows = append(rows, rec)
		}
	}
	return rows
}

func printRecordTable(w io.Writer, rows []discovery.DiscoveryRecord) {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "SOURCE\tSAN\tRESOLVED IP\tNEW HOST")
	for _, rec := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", rec.Source, rec.SAN, rec.ResolvedIP, formatNewHostFlag(rec.NewHost))
	}
	tw.Flush()
}

func writePDFReport(path string, meta RunMetadata, rows []discovery.DiscoveryRecord) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 10, "SAN host discovery report")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 9)
	pdf.Cell(0, 6, fmt.Sprintf("%d target(s) scanned on port %d, %d with SAN entries, %d new host(s)",
		meta.TotalTargets, meta.Port, meta.TargetsWithSAN, meta.NewHosts))
	pdf.Ln(10)

	widths := []float64{75, 95, 55, 30}
	headers := []string{"Source", "SAN", "Resolved IP", "New host"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, rec := range rows {
		fill := false
		flag := "no"
		if rec.NewHost {
			// Green rows mark discovered hosts.
			pdf.SetFillColor(198, 239, 206)
			fill = true
			flag = "yes"
		}
		pdf.CellFormat(widths[0], 6, rec.Source, "1", 0, "L", fill, 0, "")
		pdf.CellFormat(widths[1], 6, rec.SAN, "1", 0, "L", fill, 0, "")
		pdf.CellFormat(widths[2], 6, rec.ResolvedIP, "1", 0, "L", fill, 0, "")
		pdf.CellFormat(widths[3], 6, flag, "1", 0, "R", fill, 0, "")
		pdf.Ln(-1)
	}

	return pdf.OutputFileAndClose(path)
}

func init() {
	reportCmd.Flags().String("in", "scan_results.json", "results file produced by the scan command")
	reportCmd.Flags().String("pdf", "", "also export the report as a PDF file")
	reportCmd.Flags().Bool("new-only", false, "only show newly discovered hosts")
}
