package core

import (
	"bytes"
	"strings"
	"testing"
)

func TestWriteReport_QuotesFields(t *testing.T) {
	rows := []ReportRow{{
		AccountID:    "123456789012",
		ClusterName:  "demo,blue",
		InstanceID:   "i-abc",
		InstanceType: "t3.medium",
		Region:       "us-east-1",
	}}

	var buf bytes.Buffer
	if err := WriteReport(&buf, rows); err != nil {
		t.Fatalf("WriteReport returned error: %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\r\n"), "\r\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %q", lines)
	}
	if lines[1] != `123456789012,"demo,blue",i-abc,t3.medium,us-east-1` {
		t.Errorf("row = %q", lines[1])
	}
}

func TestReportWriter_StreamsRows(t *testing.T) {
	var buf bytes.Buffer
	rw, err := NewReportWriter(&buf)
	if err != nil {
		t.Fatalf("NewReportWriter returned error: %v", err)
	}

	for _, id := range []string{"i-1", "i-2"} {
		if err := rw.Write(ReportRow{AccountID: "1", ClusterName: "c", InstanceID: id, InstanceType: "t", Region: "r"}); err != nil {
			t.Fatalf("Write returned error: %v", err)
		}
	}
	if err := rw.Flush(); err != nil {
		t.Fatalf("Flush returned error: %v", err)
	}

	want := "AccountId,ClusterName,InstanceID,InstanceTypes,Region\r\n1,c,i-1,t,r\r\n1,c,i-2,t,r\r\n"
	if buf.String() != want {
		t.Errorf("report = %q, want %q", buf.String(), want)
	}
}

func TestReportRowRecordMatchesHeader(t *testing.T) {
	rec := ReportRow{}.Record()
	if len(rec) != len(Header) {
		t.Fatalf("Record has %d fields, Header has %d", len(rec), len(Header))
	}
}
