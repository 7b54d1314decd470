// internal/integration/integration_test.go
package integration

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sketchtree/internal/app"
)

func write(t *testing.T, dir, name, data string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(data), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func writeGzip(t *testing.T, dir, name, data string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	fh, err := os.Create(p)
	if err != nil {
		t.Fatal(err)
	}
	zw := gzip.NewWriter(fh)
	if _, err := zw.Write([]byte(data)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := fh.Close(); err != nil {
		t.Fatal(err)
	}
	return p
}

// testSet writes four related genomes (one gzipped) plus a genome list
// file, and returns the list path and the genome basenames.
func testSet(t *testing.T) (string, []string) {
	t.Helper()
	dir := t.TempDir()
	rng := rand.New(rand.NewSource(11))
	const bases = "ACGT"
	root := make([]byte, 3000)
	for i := range root {
		root[i] = bases[rng.Intn(4)]
	}
	mutate := func(rate float64) string {
		g := append([]byte(nil), root...)
		for i := range g {
			if rng.Float64() < rate {
				g[i] = bases[rng.Intn(4)]
			}
		}
		return string(g)
	}

	paths := []string{
		write(t, dir, "ref.fa", ">chr\n"+string(root)+"\n"),
		write(t, dir, "near.fa", ">chr\n"+mutate(0.01)+"\n"),
		write(t, dir, "mid.fa", ">chr\n"+mutate(0.04)+"\n"),
		writeGzip(t, dir, "far.fa.gz", ">chr\n"+mutate(0.08)+"\n"),
	}
	list := write(t, dir, "genomes.txt", strings.Join(paths, "\n")+"\n")
	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = filepath.Base(p)
	}
	return list, names
}

func TestEndToEnd(t *testing.T) {
	list, names := testSet(t)
	dir := filepath.Dir(list)
	matrixOut := filepath.Join(dir, "dist.phy")
	treeOut := filepath.Join(dir, "tree.nwk")

	var out, errBuf bytes.Buffer
	code := app.Run([]string{
		"--input", list,
		"--kmer-size", "12",
		"--sketch-size", "256",
		"--output-matrix", matrixOut,
		"--output-tree", treeOut,
		"--quiet",
	}, &out, &errBuf)
	if code != 0 {
		t.Fatalf("run exit %d, err=%s", code, errBuf.String())
	}

	matrix, err := os.ReadFile(matrixOut)
	if err != nil {
		t.Fatalf("matrix not written: %v", err)
	}
	if !bytes.HasPrefix(matrix, []byte("4\n")) {
		t.Fatalf("matrix does not open with taxon count 4: %q", matrix)
	}
	tree, err := os.ReadFile(treeOut)
	if err != nil {
		t.Fatalf("tree not written: %v", err)
	}
	for _, name := range names {
		if !bytes.Contains(tree, []byte(name)) {
			t.Errorf("tip %q missing from tree %s", name, tree)
		}
		if !bytes.Contains(matrix, []byte(name)) {
			t.Errorf("taxon %q missing from matrix", name)
		}
	}
	if !bytes.Contains(tree, []byte(";")) {
		t.Errorf("tree %q lacks terminating ';'", tree)
	}
}

func TestTreeToStdoutByDefault(t *testing.T) {
	list, names := testSet(t)

	var out, errBuf bytes.Buffer
	code := app.Run([]string{
		"--input", list,
		"--kmer-size", "12",
		"--sketch-size", "256",
		"--quiet",
	}, &out, &errBuf)
	if code != 0 {
		t.Fatalf("run exit %d, err=%s", code, errBuf.String())
	}
	for _, name := range names {
		if !strings.Contains(out.String(), name) {
			t.Errorf("stdout tree missing tip %q: %s", name, out.String())
		}
	}
}

func TestParallelRunMatchesSerial(t *testing.T) {
	list, _ := testSet(t)
	run := func(threads int) string {
		var out, errBuf bytes.Buffer
		code := app.Run([]string{
			"--input", list,
			"--kmer-size", "12",
			"--sketch-size", "256",
			"--threads", fmt.Sprint(threads),
			"--quiet",
		}, &out, &errBuf)
		if code != 0 {
			t.Fatalf("threads=%d exit %d, err=%s", threads, code, errBuf.String())
		}
		return out.String()
	}
	if serial, parallel := run(1), run(4); serial != parallel {
		t.Fatalf("parallel output differs from serial:\n%s\n%s", serial, parallel)
	}
}

func TestBadKmerSizeExit2(t *testing.T) {
	list, _ := testSet(t)
	treeOut := filepath.Join(filepath.Dir(list), "never.nwk")

	var out, errBuf bytes.Buffer
	code := app.Run([]string{
		"--input", list,
		"--kmer-size", "15",
		"--output-tree", treeOut,
	}, &out, &errBuf)
	if code != 2 {
		t.Fatalf("exit %d, want 2 for invalid k", code)
	}
	if _, err := os.Stat(treeOut); !os.IsNotExist(err) {
		t.Fatal("tree file written despite config error")
	}
}

func TestMissingManifestExit2(t *testing.T) {
	var out, errBuf bytes.Buffer
	code := app.Run([]string{
		"--input", filepath.Join(t.TempDir(), "absent.txt"),
	}, &out, &errBuf)
	if code != 2 {
		t.Fatalf("exit %d, want 2 for missing genome list", code)
	}
}

func TestUnreadableGenomeExit3(t *testing.T) {
	dir := t.TempDir()
	list := write(t, dir, "genomes.txt", filepath.Join(dir, "absent.fa")+"\n")
	treeOut := filepath.Join(dir, "never.nwk")

	var out, errBuf bytes.Buffer
	code := app.Run([]string{
		"--input", list,
		"--output-tree", treeOut,
		"--quiet",
	}, &out, &errBuf)
	if code != 3 {
		t.Fatalf("exit %d, want 3 for unreadable genome", code)
	}
	if _, err := os.Stat(treeOut); !os.IsNotExist(err) {
		t.Fatal("tree file written despite runtime error")
	}
}

func TestVersionFlag(t *testing.T) {
	var out, errBuf bytes.Buffer
	if code := app.Run([]string{"-v"}, &out, &errBuf); code != 0 {
		t.Fatalf("exit %d, want 0", code)
	}
	if !strings.Contains(out.String(), "sketchtree version") {
		t.Fatalf("unexpected version output %q", out.String())
	}
}

func TestNoArgsPrintsUsage(t *testing.T) {
	var out, errBuf bytes.Buffer
	if code := app.Run(nil, &out, &errBuf); code != 0 {
		t.Fatalf("exit %d, want 0", code)
	}
	if !strings.Contains(out.String(), "Usage") {
		t.Fatalf("expected usage text, got %q", out.String())
	}
}
