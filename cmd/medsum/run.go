package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/medreport-summarizer/internal/entity"
	"github.com/joseph-ayodele/medreport-summarizer/internal/export"
	"github.com/joseph-ayodele/medreport-summarizer/internal/ingest"
)

func runCmd() *cobra.Command {
	var (
		format  string
		outPath string
		maxSize int64
	)
	cmd := &cobra.Command{
		Use:   "run <file|->",
		Short: "Summarize one report file, or stdin with -",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "text" && format != "xlsx" {
				return fmt.Errorf("--format must be json, text or xlsx")
			}
			report, err := readInput(cmd.InOrStdin(), args[0], maxSize)
			if err != nil {
				return err
			}

			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.close()

			res, err := a.processor.Process(cmd.Context(), "cli", report)
			if err != nil {
				return err
			}
			out, err := render(a, res.Record, format)
			if err != nil {
				return err
			}
			if outPath == "" {
				_, err = cmd.OutOrStdout().Write(out)
				return err
			}
			return os.WriteFile(outPath, out, 0o644)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format: json, text or xlsx")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write output to this file instead of stdout")
	cmd.Flags().Int64Var(&maxSize, "max-bytes", 1<<20, "largest report accepted")
	return cmd
}

func readInput(stdin io.Reader, arg string, maxSize int64) (string, error) {
	if arg != "-" {
		return ingest.ReadReport(arg, maxSize)
	}
	data, err := io.ReadAll(io.LimitReader(stdin, maxSize+1))
	if err != nil {
		return "", err
	}
	if int64(len(data)) > maxSize {
		return "", ingest.ErrTooLarge
	}
	return string(data), nil
}

func render(a *app, rec *entity.SummaryRecord, format string) ([]byte, error) {
	switch format {
	case "text":
		return []byte(export.FormatText(rec, time.Now()) + "\n"), nil
	case "xlsx":
		return export.NewService(a.logger).ReportXLSX(rec)
	}
	out, err := json.MarshalIndent(entity.Normalize(rec), "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}
