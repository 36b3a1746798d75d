/*
Copyright 2025 David Arnold
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at
    http://www.apache.org/licenses/LICENSE-2.0
Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package core

import (
	"encoding/csv"
	"io"
)

// ReportWriter writes report rows as CSV with CRLF line endings.
type ReportWriter struct {
	w *csv.Writer
}

// NewReportWriter writes Header to w and returns a writer for the data rows.
func NewReportWriter(w io.Writer) (*ReportWriter, error) {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	if err := cw.Write(Header); err != nil {
		return nil, err
	}
	return &ReportWriter{w: cw}, nil
}

// Write appends one row.
func (rw *ReportWriter) Write(row ReportRow) error {
	return rw.w.Write(row.Record())
}

// Flush writes buffered rows to the underlying writer.
func (rw *ReportWriter) Flush() error {
	rw.w.Flush()
	return rw.w.Error()
}

// WriteReport writes the header and rows to w.
func WriteReport(w io.Writer, rows []ReportRow) error {
	rw, err := NewReportWriter(w)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if err := rw.Write(row); err != nil {
			return err
		}
	}
	return rw.Flush()
}
