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

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

const partialSuffix = ".partial"

// reportFile is a report being written. Rows go to <name>.partial, which is
// renamed to <name> by Commit or removed by Abort.
type reportFile struct {
	f     *os.File
	final string
}

func createReportFile(dir, name string) (*reportFile, error) {
	final := filepath.Join(dir, name)
	// #nosec G304 - path is built from the configured output directory
	f, err := os.Create(final + partialSuffix)
	if err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}
	return &reportFile{f: f, final: final}, nil
}

func (r *reportFile) Write(p []byte) (int, error) {
	return r.f.Write(p)
}

// Name returns the final path of the report.
func (r *reportFile) Name() string {
	return r.final
}

// Commit closes the file and moves it to its final name, replacing any
// existing report of the same name.
func (r *reportFile) Commit() error {
	if err := r.f.Close(); err != nil {
		return fmt.Errorf("close report: %w", err)
	}
	if err := os.Rename(r.f.Name(), r.final); err != nil {
		return fmt.Errorf("finalize report: %w", err)
	}
	return nil
}

// Abort closes and deletes the partial file.
func (r *reportFile) Abort() {
	_ = r.f.Close()
	if err := os.Remove(r.f.Name()); err != nil && !os.IsNotExist(err) {
		log.Debugf("failed to remove partial report %s: %v", r.f.Name(), err)
	}
}
