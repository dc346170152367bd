package handlers

import (
	"net/http"
	"testing"
)

type galleryMorePayload struct {
	Loaded bool                `json:"loaded"`
	State  galleryStatePayload `json:"state"`
}

func TestGallerySessionLifecycle(t *testing.T) {
	f := newFixture(t)
	f.seedProjects(10)

	rec := f.do(http.MethodPost, "/api/v1/gallery/sessions", nil, nil)
	expectStatus(t, rec, http.StatusCreated)
	created := decodeBody[galleryStatePayload](t, rec)
	if created.SessionID == "" {
		t.Fatalf("expected a session id")
	}
	if len(created.Items) != 4 || !created.HasMore || created.Page != 1 {
		t.Fatalf("unexpected first page: %+v", created)
	}
	if created.Filter.Active {
		t.Fatalf("a session without a query should report no active filter")
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != defaultGalleryCookie || cookies[0].Value != created.SessionID || !cookies[0].HttpOnly {
		t.Fatalf("expected session cookie, got %+v", cookies)
	}

	session := map[string]string{galleryHeader: created.SessionID}

	rec = f.do(http.MethodPost, "/api/v1/gallery/more", nil, session)
	expectStatus(t, rec, http.StatusOK)
	more := decodeBody[galleryMorePayload](t, rec)
	if !more.Loaded || len(more.State.Items) != 8 || more.State.Page != 2 {
		t.Fatalf("expected appended second page, got %+v", more)
	}

	rec = f.do(http.MethodPost, "/api/v1/gallery/more", nil, session)
	expectStatus(t, rec, http.StatusOK)
	more = decodeBody[galleryMorePayload](t, rec)
	if len(more.State.Items) != 10 || more.State.HasMore {
		t.Fatalf("expected exhausted gallery, got %d items hasMore=%v", len(more.State.Items), more.State.HasMore)
	}

	rec = f.do(http.MethodPost, "/api/v1/gallery/more", nil, session)
	expectStatus(t, rec, http.StatusOK)
	if decodeBody[galleryMorePayload](t, rec).Loaded {
		t.Fatalf("load more past the end must be a no-op")
	}

	rec = f.do(http.MethodDelete, "/api/v1/gallery/sessions", nil, session)
	expectStatus(t, rec, http.StatusNoContent)

	rec = f.do(http.MethodGet, "/api/v1/gallery", nil, session)
	expectStatus(t, rec, http.StatusNotFound)
}

func TestGalleryQueryResetsItems(t *testing.T) {
	f := newFixture(t)
	f.seedProjects(10)

	rec := f.do(http.MethodPost, "/api/v1/gallery/sessions", map[string]any{"sort": "price-high"}, nil)
	expectStatus(t, rec, http.StatusCreated)
	created := decodeBody[galleryStatePayload](t, rec)
	if created.Sort != "price-high" || created.Items[0].ID != "w09" {
		t.Fatalf("expected price-high ordering, got %s first=%s", created.Sort, created.Items[0].ID)
	}

	req := map[string]string{"Cookie": defaultGalleryCookie + "=" + created.SessionID}
	rec = f.do(http.MethodPost, "/api/v1/gallery/more", nil, req)
	expectStatus(t, rec, http.StatusOK)

	rec = f.do(http.MethodPut, "/api/v1/gallery/query", map[string]any{
		"category": "dining",
		"maxPrice": 206,
		"sort":     "price-low",
	}, req)
	expectStatus(t, rec, http.StatusOK)
	state := decodeBody[galleryStatePayload](t, rec)
	var ids []string
	for _, item := range state.Items {
		ids = append(ids, item.ID)
	}
	if len(ids) != 3 || ids[0] != "w01" || ids[1] != "w03" || ids[2] != "w05" {
		t.Fatalf("expected [w01 w03 w05] after the filter change, got %v", ids)
	}
	if state.Page != 1 || state.HasMore {
		t.Fatalf("expected a single fresh page, got page=%d hasMore=%v", state.Page, state.HasMore)
	}
	if !state.Filter.Active || state.Filter.Category != "dining" || state.Filter.MaxPrice == nil || *state.Filter.MaxPrice != 206 {
		t.Fatalf("expected the filter to be echoed, got %+v", state.Filter)
	}

	rec = f.do(http.MethodGet, "/api/v1/gallery", nil, req)
	expectStatus(t, rec, http.StatusOK)
	if got := decodeBody[galleryStatePayload](t, rec); len(got.Items) != 3 || got.Seq != state.Seq {
		t.Fatalf("snapshot does not match the last query: %+v", got)
	}
}

func TestGalleryRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	f.seedProjects(2)

	rec := f.do(http.MethodGet, "/api/v1/gallery", nil, nil)
	expectStatus(t, rec, http.StatusNotFound)

	rec = f.do(http.MethodPost, "/api/v1/gallery/sessions", map[string]any{"sort": "random"}, nil)
	expectStatus(t, rec, http.StatusBadRequest)
	if f.sessions.Len() != 0 {
		t.Fatalf("a rejected query must not leave a session behind")
	}

	rec = f.do(http.MethodPost, "/api/v1/gallery/sessions", map[string]any{"category": "garage"}, nil)
	expectStatus(t, rec, http.StatusBadRequest)
	if got := errorCode(t, rec); got != "invalid_filter" {
		t.Fatalf("expected invalid_filter, got %s", got)
	}

	rec = f.do(http.MethodPost, "/api/v1/gallery/sessions", nil, nil)
	expectStatus(t, rec, http.StatusCreated)
	id := decodeBody[galleryStatePayload](t, rec).SessionID

	rec = f.do(http.MethodPut, "/api/v1/gallery/query", `{"colour":"red"}`, map[string]string{galleryHeader: id})
	expectStatus(t, rec, http.StatusBadRequest)
}
