package storage

import (
	"io"
	"strings"
	"testing"
)

func TestPutGetRoundTrip(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	key, err := store.Put("courses/c-1/notes.pdf", strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	rc, err := store.Get(key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("got %q, want hello", data)
	}
}

func TestPutEmptyKey(t *testing.T) {
	store, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if _, err := store.Put("", strings.NewReader("x")); err == nil {
		t.Error("empty key should be rejected")
	}
}

func TestSanitizeName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"notes.pdf", "notes.pdf"},
		{"../../etc/passwd", "passwd"},
		{"my report (final).docx", "my_report__final_.docx"},
		{"", "file"},
	}
	for _, tc := range cases {
		if got := SanitizeName(tc.in); got != tc.want {
			t.Errorf("SanitizeName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCourseKeyScopedToCourse(t *testing.T) {
	key := CourseKey("c-42", "slides.pdf")
	if !strings.HasPrefix(key, "courses/c-42/") {
		t.Errorf("key %q not scoped under course", key)
	}
	if !strings.HasSuffix(key, "_slides.pdf") {
		t.Errorf("key %q lost the filename", key)
	}
}
