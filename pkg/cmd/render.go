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
	"encoding/json"
	"fmt"
	"io"
	"os"

	pt "github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/term"

	"gitlab.com/davidxarnold/eksinv/pkg/core"
)

func render(out io.Writer, format string, s *core.Summary) error {
	switch format {
	case "json":
		return renderJSON(out, s)
	case "pretty":
		renderPretty(out, s)
	default:
		table(out, s)
	}
	return nil
}

func renderJSON(out io.Writer, s *core.Summary) error {
	g, err := json.MarshalIndent(s, "", "\t")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(g))
	return err
}

// isTerminal reports whether out is an interactive terminal.
func isTerminal(out io.Writer) bool {
	f, ok := out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func renderPretty(out io.Writer, s *core.Summary) {
	t := pt.NewWriter()
	if isTerminal(out) {
		t.SetStyle(pt.StyleColoredBright)
	} else {
		t.SetStyle(pt.StyleLight)
	}
	t.SetOutputMirror(out)
	t.SetTitle("Account " + s.AccountID)
	t.AppendHeader(pt.Row{"Region", "Cluster", "Instances"})

	for _, c := range s.Clusters {
		t.AppendRow(pt.Row{c.Region, c.Cluster, c.Instances})
	}

	t.AppendSeparator()
	t.AppendFooter(pt.Row{"TOTAL", len(s.Clusters), s.Rows})

	t.Render()
}

func table(out io.Writer, s *core.Summary) {
	t := pt.NewWriter()
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateColumns = false
	t.Style().Options.SeparateFooter = false
	t.Style().Options.SeparateHeader = false
	t.Style().Options.SeparateRows = false
	t.SetOutputMirror(out)
	t.AppendHeader(pt.Row{"Account", "Region", "Cluster", "Instances"})

	for _, c := range s.Clusters {
		t.AppendRow([]interface{}{s.AccountID, c.Region, c.Cluster, c.Instances})
	}

	t.AppendFooter(pt.Row{"Totals", "", len(s.Clusters), s.Rows})

	t.Render()
}
