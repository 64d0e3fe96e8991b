package scanner

import (
	"archive/tar"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

func TestFindFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a", "cuda-repo-10.1.rpm"), []byte("x"))
	writeFile(t, filepath.Join(dir, "b", "c", "cuda-repo-10.2.rpm"), []byte("x"))
	writeFile(t, filepath.Join(dir, "readme.txt"), []byte("x"))

	found, err := FindFiles(context.Background(), dir, "cuda-repo-*.rpm")
	if err != nil {
		t.Fatalf("FindFiles failed: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("Expected 2 matches, got %d: %v", len(found), found)
	}

	first, err := FindFirstFile(context.Background(), dir, "*.txt")
	if err != nil {
		t.Fatalf("FindFirstFile failed: %v", err)
	}
	if first != filepath.Join(dir, "readme.txt") {
		t.Errorf("Unexpected first match %s", first)
	}
}

func TestFindMissingDir(t *testing.T) {
	found, err := FindFiles(context.Background(), filepath.Join(t.TempDir(), "nope"), "*")
	if err != nil {
		t.Fatalf("Missing dir should not fail: %v", err)
	}
	if len(found) != 0 {
		t.Errorf("Expected no matches, got %v", found)
	}
}

func TestFindFirstDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "opt", "repo", "repodata"), 0755); err != nil {
		t.Fatal(err)
	}

	found, err := FindFirstDir(context.Background(), dir, "repodata")
	if err != nil {
		t.Fatalf("FindFirstDir failed: %v", err)
	}
	if found != filepath.Join(dir, "opt", "repo", "repodata") {
		t.Errorf("Unexpected match %q", found)
	}
}

func TestDetectArchiveType(t *testing.T) {
	dir := t.TempDir()

	rpmPath := filepath.Join(dir, "pkg.bin")
	writeFile(t, rpmPath, []byte{0xED, 0xAB, 0xEE, 0xDB, 0x03, 0x00})

	var tarBuf bytes.Buffer
	tw := tar.NewWriter(&tarBuf)
	if err := tw.WriteHeader(&tar.Header{Name: "a", Mode: 0644, Size: 1}); err != nil {
		t.Fatal(err)
	}
	tw.Write([]byte("a"))
	tw.Close()

	var gzBuf bytes.Buffer
	gw := gzip.NewWriter(&gzBuf)
	gw.Write(tarBuf.Bytes())
	gw.Close()

	tgzPath := filepath.Join(dir, "bundle.tar.gz")
	writeFile(t, tgzPath, gzBuf.Bytes())

	tarPath := filepath.Join(dir, "bundle.tar")
	writeFile(t, tarPath, tarBuf.Bytes())

	txtPath := filepath.Join(dir, "notes.txt")
	writeFile(t, txtPath, []byte("hello"))

	cases := map[string]ArchiveType{
		rpmPath: TypeRpm,
		tgzPath: TypeTarGz,
		tarPath: TypeTar,
		txtPath: TypeUnknown,
	}
	for path, want := range cases {
		got, err := DetectArchiveType(path)
		if err != nil {
			t.Fatalf("DetectArchiveType(%s) failed: %v", path, err)
		}
		if got != want {
			t.Errorf("DetectArchiveType(%s) = %s, want %s", filepath.Base(path), got, want)
		}
	}
}
