// Package exporter writes feed payloads onto the wire in their bulk
// formats. CSV output is emitted row by row so arbitrarily large feeds
// never buffer the full payload in memory.
package exporter

import (
	"fmt"
	"io"
	"iter"
	"net/http"
)

// flushEvery bounds how many CSV rows are written between flushes, keeping
// backpressure from a slow consumer close to row production.
const flushEvery = 256

// StreamCSV writes the row sequence as an unquoted CSV attachment. Rows use
// CRLF terminators; each row holds exactly one field, so no quoting is ever
// required.
func StreamCSV(w http.ResponseWriter, rows iter.Seq[string]) error {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="feeds.csv"`)
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	written := 0
	for row := range rows {
		if _, err := io.WriteString(w, row+"\r\n"); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
		written++
		if flusher != nil && written%flushEvery == 0 {
			flusher.Flush()
		}
	}
	if flusher != nil {
		flusher.Flush()
	}
	return nil
}

// WriteTXT writes the row sequence as plain text, one value per line with
// no trailing newline.
func WriteTXT(w http.ResponseWriter, rows iter.Seq[string]) error {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)

	first := true
	for row := range rows {
		if !first {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return fmt.Errorf("writing txt line: %w", err)
			}
		}
		first = false
		if _, err := io.WriteString(w, row); err != nil {
			return fmt.Errorf("writing txt line: %w", err)
		}
	}
	return nil
}
