package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nmrs/sotd-pipeline-sub007/pkg/store"
	"github.com/nmrs/sotd-pipeline-sub007/pkg/types"
)

var (
	batchInput  string
	batchOutput string
	batchStore  string
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Match a file of records",
	Long: `Match every record of a JSON array or JSON Lines file. Each record is
an object {id, razor, blade, brush, soap}; records without an id are
numbered from 1.

Results are written as JSON Lines in input order. With a result store
configured (--store or SOTD_STORE_PATH) the run is also persisted and can
be summarized with 'sotd-match report'.`,
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&batchInput, "input", "i", "-", "Input file, - for stdin")
	batchCmd.Flags().StringVarP(&batchOutput, "output", "o", "-", "Output file, - for stdout")
	batchCmd.Flags().StringVar(&batchStore, "store", "", "Result store path (default from config)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	e, logger, err := newEngine()
	if err != nil {
		return err
	}

	in, source, err := openInput(cmd, batchInput)
	if err != nil {
		return err
	}
	defer in.Close()

	records, err := readRecords(in)
	if err != nil {
		return fmt.Errorf("reading %s: %w", source, err)
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	results, err := e.MatchBatch(ctx, records)
	if err != nil {
		return err
	}
	if err := writeResults(cmd, batchOutput, results); err != nil {
		return err
	}

	summary := store.Summarize("", results)
	storePath := batchStore
	if storePath == "" {
		storePath = e.Config().Store.Path
	}
	if storePath != "" {
		run, err := persistRun(storePath, source, results)
		if err != nil {
			return err
		}
		summary.RunID = run.ID
		logger.Info("stored batch run", "run_id", run.ID, "store", storePath)
	}

	writeBatchSummary(cmd.ErrOrStderr(), summary)
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func openInput(cmd *cobra.Command, path string) (io.ReadCloser, string, error) {
	if path == "" || path == "-" {
		return io.NopCloser(cmd.InOrStdin()), "stdin", nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("opening input: %w", err)
	}
	return f, path, nil
}

// readRecords decodes a JSON array of records or a stream of JSON objects.
func readRecords(r io.Reader) ([]types.Record, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var records []types.Record
	dec := json.NewDecoder(br)
	if first == '[' {
		if err := dec.Decode(&records); err != nil {
			return nil, err
		}
	} else {
		for {
			var rec types.Record
			err := dec.Decode(&rec)
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return nil, fmt.Errorf("record %d: %w", len(records)+1, err)
			}
			records = append(records, rec)
		}
	}

	for i := range records {
		if records[i].ID == "" {
			records[i].ID = strconv.Itoa(i + 1)
		}
	}
	return records, nil
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.Peek(1)
		if err != nil {
			return 0, err
		}
		if !bytes.ContainsAny(b, " \t\r\n") {
			return b[0], nil
		}
		if _, err := br.ReadByte(); err != nil {
			return 0, err
		}
	}
}

func writeResults(cmd *cobra.Command, path string, results []*types.RecordResult) error {
	out := cmd.OutOrStdout()
	if path != "" && path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer f.Close()
		out = f
	}

	w := bufio.NewWriter(out)
	enc := json.NewEncoder(w)
	for _, r := range results {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("writing result %s: %w", r.ID, err)
		}
	}
	return w.Flush()
}

func persistRun(path, source string, results []*types.RecordResult) (*store.Run, error) {
	s, err := store.New(store.Config{Path: path})
	if err != nil {
		return nil, fmt.Errorf("opening result store: %w", err)
	}
	defer s.Close()

	run := store.NewRun(source)
	if err := s.CreateRun(run); err != nil {
		return nil, fmt.Errorf("creating run: %w", err)
	}
	if err := s.AddResults(run.ID, results); err != nil {
		return nil, fmt.Errorf("storing results: %w", err)
	}
	return run, nil
}

func writeBatchSummary(out io.Writer, summary *store.Summary) {
	fmt.Fprintf(out, "Matched %d records\n", summary.Records)
	if summary.RunID != "" {
		fmt.Fprintf(out, "  Run: %s\n", summary.RunID)
	}
	for _, fs := range summary.Fields {
		fmt.Fprintf(out, "  %-6s %d/%d matched", fs.Field, fs.Matched, fs.Total)
		if fs.Filtered > 0 {
			fmt.Fprintf(out, ", %d filtered", fs.Filtered)
		}
		if fs.Errors > 0 {
			fmt.Fprintf(out, ", %d errors", fs.Errors)
		}
		fmt.Fprintln(out)
	}
}
