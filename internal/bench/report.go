package bench

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// Header is the CSV column order written by WriteCSV.
var Header = []string{
	"queue_kind",
	"producers",
	"consumers",
	"total_elements",
	"elapsed_ms",
	"enqueued",
	"dequeued",
	"elements_per_sec",
	"pinned",
	"run_id",
}

// Record formats r as one CSV row in Header order.
func (r Result) Record() []string {
	return []string{
		r.Kind.String(),
		strconv.Itoa(r.Producers),
		strconv.Itoa(r.Consumers),
		strconv.Itoa(r.Elements),
		strconv.FormatFloat(r.ElapsedMillis(), 'f', 3, 64),
		strconv.FormatInt(r.Enqueued, 10),
		strconv.FormatInt(r.Dequeued, 10),
		strconv.FormatFloat(r.Throughput(), 'f', 0, 64),
		strconv.FormatBool(r.Pinned),
		r.RunID.String(),
	}
}

// WriteCSV writes results to w, preceded by the header row if header is set.
func WriteCSV(w io.Writer, header bool, results ...Result) error {
	cw := csv.NewWriter(w)
	if header {
		if err := cw.Write(Header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	for _, r := range results {
		if err := cw.Write(r.Record()); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// AppendCSV appends results to the file at path, creating it if needed.
// The header is written only when the file is empty.
func AppendCSV(path string, results ...Result) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open results file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close results file: %w", cerr)
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat results file: %w", err)
	}
	return WriteCSV(f, info.Size() == 0, results...)
}
