package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestPublicURLEscapesSegments(t *testing.T) {
	got := PublicURL("", "atelier.appspot.com", "projects/1_0_طاولة.jpg")
	want := "https://storage.googleapis.com/atelier.appspot.com/projects/1_0_%D8%B7%D8%A7%D9%88%D9%84%D8%A9.jpg"
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
	if got := PublicURL("https://cdn.example.com/", "b", "profile/a.png"); got != "https://cdn.example.com/profile/a.png" {
		t.Fatalf("unexpected url %s", got)
	}
}

func TestObjectPathAcceptsKnownForms(t *testing.T) {
	const bucket = "atelier.appspot.com"
	cases := map[string]string{
		"projects/1_0_a.jpg":                                                                               "projects/1_0_a.jpg",
		"/projects/1_0_a.jpg":                                                                              "projects/1_0_a.jpg",
		"https://cdn.example.com/projects/1_0_a%20b.jpg":                                                   "projects/1_0_a b.jpg",
		"https://storage.googleapis.com/atelier.appspot.com/projects/1_0_a.jpg":                            "projects/1_0_a.jpg",
		"https://firebasestorage.googleapis.com/v0/b/atelier.appspot.com/o/projects%2F1_0_a.jpg?alt=media": "projects/1_0_a.jpg",
		"gs://atelier.appspot.com/profile/me.png":                                                          "profile/me.png",
	}
	for ref, want := range cases {
		got, err := ObjectPath("https://cdn.example.com", bucket, ref)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", ref, err)
		}
		if got != want {
			t.Fatalf("%s: expected %s, got %s", ref, want, got)
		}
	}
}

func TestObjectPathRejectsForeignAndTraversal(t *testing.T) {
	refs := []string{
		"",
		"projects/../secrets.txt",
		"https://storage.googleapis.com/other-bucket/a.jpg",
		"gs://other/a.jpg",
		"https://example.org/a.jpg",
		"projects/",
	}
	for _, ref := range refs {
		if _, err := ObjectPath("", "atelier.appspot.com", ref); !errors.Is(err, ErrInvalidObjectRef) {
			t.Fatalf("%q: expected ErrInvalidObjectRef, got %v", ref, err)
		}
	}
}

func TestMemoryStorePutDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	n, err := store.Put(ctx, "projects/a.png", "image/png", strings.NewReader("data"))
	if err != nil || n != 4 {
		t.Fatalf("put: n=%d err=%v", n, err)
	}
	obj, ok := store.Object("projects/a.png")
	if !ok || obj.ContentType != "image/png" || string(obj.Data) != "data" {
		t.Fatalf("unexpected object %+v", obj)
	}
	if err := store.Delete(ctx, "projects/a.png"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, "projects/a.png"); !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("expected ErrObjectNotFound, got %v", err)
	}
}
