package manifest

import (
	"encoding/hex"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/cespare/xxhash/v2"

	"ritobin-go/internal/convert"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}
}

func TestHashFile_SmallFile(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.py")
	writeFile(t, testFile, "Hello, World!")

	hash, size, err := HashFile(testFile)
	if err != nil {
		t.Fatalf("HashFile failed: %v", err)
	}

	h := xxhash.New()
	h.Write([]byte("Hello, World!"))
	expected := hex.EncodeToString(h.Sum(nil))

	if hash != expected {
		t.Errorf("Hash mismatch: expected %s, got %s", expected, hash)
	}
	if size != 13 {
		t.Errorf("Expected size 13, got %d", size)
	}
}

func TestHashFile_LargeFile(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "large.bin")

	// Spans several read buffers
	content := make([]byte, 1024*1024)
	for i := range content {
		content[i] = byte(i % 251)
	}
	if err := os.WriteFile(testFile, content, 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	hash, _, err := HashFile(testFile)
	if err != nil {
		t.Fatalf("HashFile failed: %v", err)
	}
	h := xxhash.New()
	h.Write(content)
	if hash != hex.EncodeToString(h.Sum(nil)) {
		t.Error("Streaming hash should match hashing the whole content")
	}
}

func TestHashFile_NonExistent(t *testing.T) {
	if _, _, err := HashFile("/nonexistent/file.bin"); err == nil {
		t.Error("HashFile should return error for nonexistent file")
	}
}

func TestRootDigest_Empty(t *testing.T) {
	root, err := RootDigest(nil)
	if err != nil {
		t.Fatalf("RootDigest failed: %v", err)
	}
	if root == "" {
		t.Error("Root digest should not be empty even for no files")
	}
}

func TestRootDigest_SingleLeaf(t *testing.T) {
	root, err := RootDigest([]string{"00000000000000ab"})
	if err != nil {
		t.Fatalf("RootDigest failed: %v", err)
	}
	if root != "00000000000000ab" {
		t.Errorf("Single leaf should be the root, got %s", root)
	}
}

func TestRootDigest_OrderMatters(t *testing.T) {
	a, _ := RootDigest([]string{"0000000000000001", "0000000000000002", "0000000000000003"})
	b, _ := RootDigest([]string{"0000000000000002", "0000000000000001", "0000000000000003"})
	if a == b {
		t.Error("Different leaf orders should give different roots")
	}
	again, _ := RootDigest([]string{"0000000000000001", "0000000000000002", "0000000000000003"})
	if a != again {
		t.Error("Root digest should be deterministic")
	}
}

func TestRootDigest_InvalidLeaf(t *testing.T) {
	if _, err := RootDigest([]string{"not-hex"}); err == nil {
		t.Error("RootDigest should reject non-hex digests")
	}
}

func TestBuild_SkipsFailuresAndSorts(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "b.py"), "bbb")
	writeFile(t, filepath.Join(tmpDir, "sub", "a.bin"), "a")

	outcomes := []convert.Outcome{
		{Source: filepath.Join(tmpDir, "b.bin"), Dest: filepath.Join(tmpDir, "b.py")},
		{Source: filepath.Join(tmpDir, "broken.bin"), Err: os.ErrInvalid},
		{Source: filepath.Join(tmpDir, "sub", "a.py"), Dest: filepath.Join(tmpDir, "sub", "a.bin")},
	}

	m, err := Build(tmpDir, outcomes)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(m.Entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(m.Entries))
	}
	var outputs []string
	for _, e := range m.Entries {
		outputs = append(outputs, e.Output)
	}
	if !slices.Equal(outputs, []string{"b.py", "sub/a.bin"}) {
		t.Errorf("Unexpected outputs %v", outputs)
	}
	if m.Entries[1].Source != "sub/a.py" || m.Entries[1].Size != 1 {
		t.Errorf("Unexpected entry %+v", m.Entries[1])
	}
	if m.Size != "4 B" {
		t.Errorf("Expected size 4 B, got %q", m.Size)
	}
}

func TestSaveLoadVerify(t *testing.T) {
	tmpDir := t.TempDir()
	out := filepath.Join(tmpDir, "x.py")
	writeFile(t, out, "content")

	m, err := Build(tmpDir, []convert.Outcome{{Source: filepath.Join(tmpDir, "x.bin"), Dest: out}})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	manifestPath := filepath.Join(tmpDir, "reports", "manifest.yaml")
	if err := Save(m, manifestPath); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(manifestPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.RootDigest != m.RootDigest || loaded.Generator != Generator {
		t.Errorf("Loaded manifest differs: %+v", loaded)
	}

	changed, err := loaded.Verify()
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if len(changed) != 0 {
		t.Errorf("Expected no changes, got %v", changed)
	}

	writeFile(t, out, "modified")
	changed, _ = loaded.Verify()
	if !slices.Equal(changed, []string{"x.py"}) {
		t.Errorf("Expected x.py to be reported, got %v", changed)
	}

	os.Remove(out)
	changed, err = loaded.Verify()
	if err != nil {
		t.Fatalf("Verify should report missing files, not fail: %v", err)
	}
	if !slices.Equal(changed, []string{"x.py"}) {
		t.Errorf("Expected missing x.py to be reported, got %v", changed)
	}
}

func TestVerify_FromAnotherDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "x.py"), "content")
	t.Chdir(tmpDir)

	m, err := Build(".", []convert.Outcome{{Source: "x.bin", Dest: "x.py"}})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if !filepath.IsAbs(filepath.FromSlash(m.Root)) {
		t.Errorf("Expected an absolute root, got %q", m.Root)
	}
	if len(m.Entries) != 1 || m.Entries[0].Output != "x.py" || m.Entries[0].Source != "x.bin" {
		t.Fatalf("Unexpected entries %+v", m.Entries)
	}

	t.Chdir(t.TempDir())
	changed, err := m.Verify()
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if len(changed) != 0 {
		t.Errorf("Expected no changes, got %v", changed)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	writeFile(t, path, "entries: [unterminated")
	if _, err := Load(path); err == nil {
		t.Error("Load should fail on invalid YAML")
	}
}
