package highlight

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"znkr.io/conflicts/diff"
)

func TestDiff(t *testing.T) {
	got, err := Diff("a\nb\n<c>\n", "a\nx\n<c>\n")
	if err != nil {
		t.Fatalf("Diff(...) failed: %v", err)
	}
	want := []Edit{
		{diff.Unchanged, 1, 1, "a"},
		{diff.Removed, 2, -1, "b"},
		{diff.Added, -1, 2, "x"},
		{diff.Unchanged, 3, 3, "&lt;c&gt;"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Diff result is different (-want, +got):\n%s", diff)
	}
}

func TestDiffAbandoned(t *testing.T) {
	if _, err := Diff("a\n", "b\n", DiffOptions(diff.MaxEditLength(0))); err == nil {
		t.Errorf("Diff(...) with MaxEditLength(0) succeeded, want error")
	}
}

func TestHighlight(t *testing.T) {
	got, err := Highlight("package main\n\nfunc main() {}\n", Lang("go"))
	if err != nil {
		t.Fatalf("Highlight(...) failed: %v", err)
	}
	if len(got) == 0 {
		t.Fatalf("Highlight(...) returned no lines")
	}
	if !strings.Contains(string(got[0].Content), `<span class="hl-b">package</span>`) {
		t.Errorf("first line %q doesn't highlight the package keyword", got[0].Content)
	}
}

func TestParsePatch(t *testing.T) {
	in := `Index: f
===================================================================
--- f
+++ f
@@ -1,3 +1,3 @@
 a
-b
+x
 c
@@ -10,0 +11,1 @@
+<y>
\ No newline at end of file
`
	got, err := ParsePatch(in)
	if err != nil {
		t.Fatalf("ParsePatch(...) failed: %v", err)
	}

	want := []PatchLine{
		{FileHeader, 0, 0, "", "Index: f"},
		{FileHeader, 0, 0, "", "==================================================================="},
		{FileHeader, 0, 0, "", "--- f"},
		{FileHeader, 0, 0, "", "+++ f"},
		{HunkHeader, 0, 0, "", "@@ -1,3 +1,3 @@"},
		{Context, 1, 1, " ", "a"},
		{Removed, 2, 0, "-", "b"},
		{Added, 0, 2, "+", "x"},
		{Context, 3, 3, " ", "c"},
		{HunkHeader, 0, 0, "", "@@ -10,0 +11,1 @@"},
		{Added, 0, 11, "+", "&lt;y&gt;"},
		{NoNewline, 0, 0, "", `\ No newline at end of file`},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParsePatch result is different (-want, +got):\n%s", diff)
	}
}

func TestParsePatchMultipleFiles(t *testing.T) {
	in := "--- a.go\n+++ a.go\n@@ -1,1 +1,1 @@\n-package a\n+package b\n\n--- b.txt\n+++ b.txt\n@@ -1,1 +1,1 @@\n-x\n+y\n"
	got, err := ParsePatch(in)
	if err != nil {
		t.Fatalf("ParsePatch(...) failed: %v", err)
	}
	var types []LineType
	for _, l := range got {
		types = append(types, l.Type)
	}
	want := []LineType{
		FileHeader, FileHeader, HunkHeader, Removed, Added,
		FileHeader,
		FileHeader, FileHeader, HunkHeader, Removed, Added,
	}
	if diff := cmp.Diff(want, types); diff != "" {
		t.Errorf("ParsePatch line types are different (-want, +got):\n%s", diff)
	}
	if !strings.Contains(string(got[3].Content), "hl-b") {
		t.Errorf("Go line %q isn't highlighted", got[3].Content)
	}
	if strings.Contains(string(got[9].Content), "<span") {
		t.Errorf("plain text line %q is highlighted", got[9].Content)
	}
}
