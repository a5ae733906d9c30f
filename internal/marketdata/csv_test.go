package marketdata

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempCSV(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "candles.csv")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write temp csv: %v", err)
	}
	return path
}

func TestLoadCSVSortsAscending(t *testing.T) {
	path := writeTempCSV(t, "timestamp_ms,open,high,low,close,volume\n"+
		"2000,101,102,100,101,5\n"+
		"1000,100,101,99,100,4\n")

	got, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].OpenTime != 1000 || got[1].OpenTime != 2000 {
		t.Fatalf("not sorted ascending: %+v", got)
	}
}

func TestLoadCSVSkipsIncompleteRows(t *testing.T) {
	path := writeTempCSV(t, "timestamp_ms,open,high,low,close,volume\n"+
		"1000,100,101,99,100,4\n"+
		",,,,,\n")

	got, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1 (incomplete row skipped)", len(got))
	}
}

func TestLoadCSVCaseInsensitiveHeaders(t *testing.T) {
	path := writeTempCSV(t, "Timestamp_MS,Open,High,Low,Close,Volume\n1000,1,2,0.5,1.5,3\n")
	got, err := LoadCSV(path)
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	if len(got) != 1 || got[0].Close != 1.5 {
		t.Fatalf("got = %+v", got)
	}
}
