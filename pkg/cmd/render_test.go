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
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gitlab.com/davidxarnold/eksinv/pkg/core"
)

func testSummary() *core.Summary {
	return &core.Summary{
		AccountID: "123456789012",
		Clusters: []core.ClusterSummary{
			{Region: "us-east-2", Cluster: "alpha", Instances: 0},
			{Region: "us-east-1", Cluster: "demo", Instances: 3},
		},
		Rows: 3,
	}
}

func TestRenderFormats(t *testing.T) {
	for _, format := range []string{"txt", "pretty", "json", ""} {
		t.Run(format, func(t *testing.T) {
			var out bytes.Buffer
			if err := render(&out, format, testSummary()); err != nil {
				t.Fatalf("render(%q) returned error: %v", format, err)
			}
			for _, want := range []string{"alpha", "demo", "us-east-1"} {
				if !strings.Contains(out.String(), want) {
					t.Errorf("render(%q) output lacks %q:\n%s", format, want, out.String())
				}
			}
		})
	}
}

func TestIsTerminal(t *testing.T) {
	if isTerminal(&bytes.Buffer{}) {
		t.Errorf("bytes.Buffer reported as terminal")
	}

	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()
	if isTerminal(f) {
		t.Errorf("regular file reported as terminal")
	}
}

func TestReportFileAbortRemovesPartial(t *testing.T) {
	dir := t.TempDir()
	rf, err := createReportFile(dir, "eks-node-20250101-000000.csv")
	if err != nil {
		t.Fatalf("createReportFile returned error: %v", err)
	}
	if _, err := rf.Write([]byte("AccountId\r\n")); err != nil {
		t.Fatal(err)
	}

	rf.Abort()

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("expected empty dir after Abort, found %d entries", len(entries))
	}
}

func TestCreateReportFileMissingDir(t *testing.T) {
	if _, err := createReportFile(filepath.Join(t.TempDir(), "missing"), "r.csv"); err == nil {
		t.Errorf("expected error for missing output directory")
	}
}
