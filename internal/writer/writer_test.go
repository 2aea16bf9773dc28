package writer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"casm/internal/diag"
	"casm/internal/firstpass"
	"casm/internal/secondpass"
)

func check(t *testing.T, a1 any, a2 any) {
	if a1 != a2 {
		t.Errorf("%[1]v (a %[1]T) != %[2]v (a %[2]T)", a1, a2)
	}
}

func makeLines(src string) []firstpass.Line {
	var out []firstpass.Line
	for i, l := range strings.Split(strings.TrimRight(src, "\n"), "\n") {
		out = append(out, firstpass.Line{File: "t.as", Number: i + 1, Content: l})
	}
	return out
}

func TestWriteObjectFile(t *testing.T) {
	lines := makeLines("LOOP: mov r1, r2\n\t.entry LOOP\n\tstop\n")
	var buf strings.Builder
	r := diag.NewTo(&buf)
	res := firstpass.Run(lines, r)
	secondpass.Run(lines, res, r)
	check(t, r.Failed(), false)

	dir := t.TempDir()
	base := filepath.Join(dir, "prog")
	err := Write(base, res)
	check(t, err, nil)

	ob, err := os.ReadFile(base + ".ob")
	check(t, err, nil)
	lines2 := strings.Split(strings.TrimRight(string(ob), "\n"), "\n")
	if len(lines2) < 1 {
		t.Fatalf("empty .ob file")
	}

	ent, err := os.ReadFile(base + ".ent")
	check(t, err, nil)
	if !strings.Contains(string(ent), "LOOP") {
		t.Errorf(".ent file missing LOOP entry: %q", string(ent))
	}

	if _, err := os.Stat(base + ".ext"); !os.IsNotExist(err) {
		t.Errorf("expected no .ext file when there are no external references")
	}
}

func TestWriteObjectFileDataOnly(t *testing.T) {
	lines := makeLines(".data 1, 2, 3\n")
	var buf strings.Builder
	r := diag.NewTo(&buf)
	res := firstpass.Run(lines, r)
	secondpass.Run(lines, res, r)
	check(t, r.Failed(), false)

	dir := t.TempDir()
	base := filepath.Join(dir, "prog")
	err := Write(base, res)
	check(t, err, nil)

	ob, err := os.ReadFile(base + ".ob")
	check(t, err, nil)
	got := strings.Split(strings.TrimRight(string(ob), "\n"), "\n")
	want := []string{
		"0 3",
		"0000100 000001",
		"0000101 000002",
		"0000102 000003",
	}
	if len(got) != len(want) {
		t.Fatalf(".ob lines = %q, want %q", got, want)
	}
	for i := range want {
		check(t, got[i], want[i])
	}
}

func TestWriteObjectFileExternal(t *testing.T) {
	lines := makeLines(".extern K\n\tjmp K\n\tstop\n")
	var buf strings.Builder
	r := diag.NewTo(&buf)
	res := firstpass.Run(lines, r)
	secondpass.Run(lines, res, r)
	check(t, r.Failed(), false)

	dir := t.TempDir()
	base := filepath.Join(dir, "prog")
	err := Write(base, res)
	check(t, err, nil)

	ext, err := os.ReadFile(base + ".ext")
	check(t, err, nil)
	check(t, strings.TrimRight(string(ext), "\n"), "K 0000101")

	ob, err := os.ReadFile(base + ".ob")
	check(t, err, nil)
	got := strings.Split(strings.TrimRight(string(ob), "\n"), "\n")
	var patched string
	for _, l := range got {
		if strings.HasPrefix(l, "0000101 ") {
			patched = l
		}
	}
	check(t, patched, "0000101 000001")
}
