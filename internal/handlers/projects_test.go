package handlers

import (
	"net/http"
	"net/url"
	"testing"
)

func TestListProjectsPagesNewestFirst(t *testing.T) {
	f := newFixture(t)
	f.seedProjects(5)

	rec := f.do(http.MethodGet, "/api/v1/projects?pageSize=2", nil, nil)
	expectStatus(t, rec, http.StatusOK)
	first := decodeBody[projectPagePayload](t, rec)
	if len(first.Items) != 2 || first.Items[0].ID != "w04" || first.Items[1].ID != "w03" {
		t.Fatalf("unexpected first page: %+v", first.Items)
	}
	if !first.HasMore || first.NextPageToken == "" {
		t.Fatalf("expected more pages, got %+v", first)
	}
	if first.Total.Count != 5 {
		t.Fatalf("expected total 5, got %+v", first.Total)
	}
	if rec.Header().Get("Cache-Control") == "" {
		t.Fatalf("expected Cache-Control header")
	}

	seen := map[string]bool{}
	for _, item := range first.Items {
		seen[item.ID] = true
	}
	token := first.NextPageToken
	for token != "" {
		rec = f.do(http.MethodGet, "/api/v1/projects?pageSize=2&pageToken="+url.QueryEscape(token), nil, nil)
		expectStatus(t, rec, http.StatusOK)
		page := decodeBody[projectPagePayload](t, rec)
		for _, item := range page.Items {
			if seen[item.ID] {
				t.Fatalf("project %s returned twice", item.ID)
			}
			seen[item.ID] = true
		}
		token = page.NextPageToken
	}
	if len(seen) != 5 {
		t.Fatalf("expected 5 distinct projects, got %d", len(seen))
	}
}

func TestListProjectsFiltersAndSorts(t *testing.T) {
	f := newFixture(t)
	f.seedProjects(6)

	rec := f.do(http.MethodGet, "/api/v1/projects?category=dining&sort=price-low&minPrice=202", nil, nil)
	expectStatus(t, rec, http.StatusOK)
	page := decodeBody[projectPagePayload](t, rec)
	var ids []string
	for _, item := range page.Items {
		ids = append(ids, item.ID)
	}
	if len(ids) != 2 || ids[0] != "w03" || ids[1] != "w05" {
		t.Fatalf("expected [w03 w05], got %v", ids)
	}
}

func TestListProjectsRejectsBadQueries(t *testing.T) {
	f := newFixture(t)
	f.seedProjects(2)

	cases := map[string]struct {
		query string
		code  string
	}{
		"unknown sort":     {query: "sort=cheapest", code: "invalid_request"},
		"bad price":        {query: "minPrice=abc", code: "invalid_request"},
		"bad flag":         {query: "featured=maybe", code: "invalid_request"},
		"unknown category": {query: "category=garage", code: "invalid_filter"},
		"bad page size":    {query: "pageSize=0", code: "invalid_request"},
		"bad token":        {query: "pageToken=not-a-token", code: "invalid_page_token"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rec := f.do(http.MethodGet, "/api/v1/projects?"+tc.query, nil, nil)
			expectStatus(t, rec, http.StatusBadRequest)
			if got := errorCode(t, rec); got != tc.code {
				t.Fatalf("expected %s, got %s", tc.code, got)
			}
		})
	}
}

func TestGetProjectLocalizesAndCountsViews(t *testing.T) {
	f := newFixture(t)
	f.seedProjects(1)

	rec := f.do(http.MethodGet, "/api/v1/projects/w00?hl=fr", nil, nil)
	expectStatus(t, rec, http.StatusOK)
	project := decodeBody[projectPayload](t, rec)
	if project.Locale != "fr" || project.Title != "Table en chêne w00" {
		t.Fatalf("expected french title, got %q (%s)", project.Title, project.Locale)
	}
	if project.Path != "/fr/projets/w00" {
		t.Fatalf("unexpected path %q", project.Path)
	}
	if rec.Header().Get("Content-Language") != "fr" {
		t.Fatalf("expected Content-Language fr, got %q", rec.Header().Get("Content-Language"))
	}

	rec = f.do(http.MethodGet, "/api/v1/projects/w00", nil, map[string]string{"Accept-Language": "ar-DZ,ar;q=0.9"})
	expectStatus(t, rec, http.StatusOK)
	project = decodeBody[projectPayload](t, rec)
	if project.ViewCount != 1 {
		t.Fatalf("expected the first view to be counted, got %d", project.ViewCount)
	}
}

func TestGetProjectNotFound(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/api/v1/projects/missing", nil, nil)
	expectStatus(t, rec, http.StatusNotFound)
	if got := errorCode(t, rec); got != "not_found" {
		t.Fatalf("expected not_found, got %s", got)
	}
}

func TestFeaturedProjects(t *testing.T) {
	f := newFixture(t)
	featured := sampleProject("feat", "living", 500, testEpoch)
	featured.Featured = true
	f.registry.ProjectStore().Seed(featured)
	f.seedProjects(3)

	rec := f.do(http.MethodGet, "/api/v1/projects/featured?limit=3", nil, nil)
	expectStatus(t, rec, http.StatusOK)
	body := decodeBody[struct {
		Items []projectPayload `json:"items"`
	}](t, rec)
	if len(body.Items) != 1 || body.Items[0].ID != "feat" {
		t.Fatalf("expected only the featured project, got %+v", body.Items)
	}

	rec = f.do(http.MethodGet, "/api/v1/projects/featured?limit=99", nil, nil)
	expectStatus(t, rec, http.StatusBadRequest)
}
