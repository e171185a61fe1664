package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/tliron/commonlog"

	"github.com/Altius/stampipes/programs/demux_fastq/fastq"
)

func StringSlicesDiffer(expected []string, actual []string) (differ bool) {

	if len(expected) != len(actual) {
		return true
	}
	for i := range expected {
		if expected[i] != actual[i] {
			return true
		}
	}
	return false
}

func TestMismatches(t *testing.T) {

	type test struct {
		input    string
		distance int
		want     []string
	}

	tests := []test{
		{"A", 0, []string{"A"}},
		{"A", 1, []string{"A", "C", "G", "T", "N"}},
		{"A", 2, []string{"A", "C", "G", "T", "N"}},
		{"AT", 0, []string{"AT"}},
		{"AT", 1, []string{"AT", "CT", "GT", "TT", "NT", "AA", "AC", "AG", "AN"}},
		{"AT", 2, []string{"AT",
			"CT", "GT", "TT", "NT",
			"AA", "AC", "AG", "AN",
			"CA", "CC", "CG", "CN",
			"GA", "GC", "GG", "GN",
			"TA", "TC", "TG", "TN",
			"NA", "NC", "NG", "NN",
		}},
	}

	for _, test := range tests {
		actual := mismatches(test.input, test.distance)

		sort.Strings(actual)
		sort.Strings(test.want)
		if StringSlicesDiffer(test.want, actual) {
			t.Errorf("Test: %#v, received: %#v", test, actual)
		}
	}
}

func BenchmarkMismatches(b *testing.B) {
	b.ReportAllocs()
	for mm := 0; mm <= 4; mm++ {
		b.Run(fmt.Sprintf("Mismatches%d", mm),
			func(b *testing.B) {
				for n := 0; n < b.N; n++ {
					mismatches("ACGTACGT+GATCGATC", mm)
				}
			})
	}
}

func TestApplyMismatches(t *testing.T) {
	c := Config{
		Destinations: map[string]string{
			"AA": "one.fq",
			"AC": "two.fq",
			"GG": "one.fq",
		},
		Mismatches: 1,
	}
	conflicts := c.applyMismatches()

	// reachable from barcodes with different outputs
	for _, bc := range []string{"AA", "AC", "AG", "AT", "AN", "GC"} {
		if _, ok := c.Destinations[bc]; ok {
			t.Errorf("ambiguous barcode %s kept", bc)
		}
	}
	if len(conflicts) == 0 {
		t.Errorf("expected conflicts")
	}
	for bc, want := range map[string]string{"GG": "one.fq", "GT": "one.fq", "GA": "one.fq", "CA": "one.fq", "TC": "two.fq", "CC": "two.fq"} {
		if got := c.Destinations[bc]; got != want {
			t.Errorf("Destinations[%s] = %q, want %q", bc, got, want)
		}
	}
	if c.Mismatches != 0 {
		t.Errorf("Mismatches not reset: %d", c.Mismatches)
	}
}

func TestBarcode(t *testing.T) {
	tests := map[string]string{
		"@A00123:8:H5:1:1101:1000:2000 1:N:0:ACGTACGT+TTGGCCAA": "ACGTACGT+TTGGCCAA",
		"@read1 1:N:0:":  "",
		"@no-colon-here": "",
	}
	for header, want := range tests {
		if got := string(barcode([]byte(header))); got != want {
			t.Errorf("barcode(%q) = %q, want %q", header, got, want)
		}
	}
}

func writeInput(t *testing.T, path string, barcodes ...string) {
	t.Helper()
	var b strings.Builder
	for i, bc := range barcodes {
		fmt.Fprintf(&b, "@read%d 1:N:0:%s\nACGTACGTAC\n+\nIIIIIIII##\n", i, bc)
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatal(err)
	}
}

func countRecords(t *testing.T, path string) int {
	t.Helper()
	fq, err := fastq.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer fq.Close()
	var rec fastq.Record
	for {
		err := fq.Read(&rec)
		if err == io.EOF {
			return fq.Records()
		}
		if err != nil {
			t.Fatal(err)
		}
		if string(rec.Seq) != "ACGTACGTAC" || string(rec.Qual) != "IIIIIIII##" {
			t.Fatalf("%s: unexpected record %q %q", path, rec.Seq, rec.Qual)
		}
	}
}

func TestDemux(t *testing.T) {
	dir := t.TempDir()
	in1 := filepath.Join(dir, "in1.fq")
	in2 := filepath.Join(dir, "in2.fq")
	writeInput(t, in1, "AAAA", "CCCC", "AAAA", "GGGG", "AAAT")
	writeInput(t, in2, "CCCC", "TTTT", "AAAA")

	outA := filepath.Join(dir, "a.fq.gz")
	outC := filepath.Join(dir, "c.fq")
	for _, unbuffered := range []bool{false, true} {
		config := &Config{
			Inputs: []string{in1, in2},
			Destinations: map[string]string{
				"AAAA": outA,
				"CCCC": outC,
			},
			Threads:    2,
			BufferSize: 50,
			Unbuffered: unbuffered,
		}

		stats, err := demux(context.Background(), config, commonlog.GetLogger("test"))
		if err != nil {
			t.Fatal(err)
		}
		if got := stats.Read.Load(); got != 8 {
			t.Errorf("read %d records, want 8", got)
		}
		if got := stats.Matched.Load(); got != 5 {
			t.Errorf("matched %d records, want 5", got)
		}
		if got := stats.Unmatched.Load(); got != 3 {
			t.Errorf("unmatched %d records, want 3", got)
		}
		if n := countRecords(t, outA); n != 3 {
			t.Errorf("%s has %d records, want 3", outA, n)
		}
		if n := countRecords(t, outC); n != 2 {
			t.Errorf("%s has %d records, want 2", outC, n)
		}
	}
}

func TestDemuxBadInput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.fa")
	if err := os.WriteFile(in, []byte(">chr1\nACGT\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	config := &Config{
		Inputs:       []string{in},
		Destinations: map[string]string{"AAAA": filepath.Join(dir, "a.fq")},
	}
	if _, err := demux(context.Background(), config, commonlog.GetLogger("test")); err == nil {
		t.Fatal("expected an error for FASTA input")
	}
}
