package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
)

func validProjectRequest() map[string]any {
	return map[string]any{
		"title": map[string]string{
			"en": "Walnut desk",
			"ar": "مكتب من خشب الجوز",
			"fr": "Bureau en noyer",
			"dz": "Biro ta3 noyer",
		},
		"description": map[string]string{
			"en": "A compact desk",
			"ar": "مكتب صغير",
			"fr": "Un bureau compact",
			"dz": "Biro sghir",
		},
		"category":    "office",
		"style":       "minimalist",
		"woodType":    "walnut",
		"images":      []string{"https://cdn.example.com/desk.jpg"},
		"dimensions":  map[string]any{"width": 120, "height": 75, "depth": 60, "unit": "cm"},
		"price":       950,
		"isAvailable": true,
		"tags":        []string{"desk", "walnut"},
	}
}

func TestAdminProjectCRUD(t *testing.T) {
	f := newFixture(t)

	rec := f.admin(http.MethodPost, "/api/v1/admin/projects", validProjectRequest())
	expectStatus(t, rec, http.StatusCreated)
	created := decodeBody[projectPayload](t, rec)
	if created.ID == "" || created.Title != "Walnut desk" || created.CoverImage != "https://cdn.example.com/desk.jpg" {
		t.Fatalf("unexpected created project: %+v", created)
	}

	update := validProjectRequest()
	update["price"] = 1200
	update["isFeatured"] = true
	rec = f.admin(http.MethodPut, "/api/v1/admin/projects/"+created.ID, update)
	expectStatus(t, rec, http.StatusOK)
	updated := decodeBody[projectPayload](t, rec)
	if updated.Price != 1200 || !updated.IsFeatured {
		t.Fatalf("update not applied: %+v", updated)
	}

	rec = f.do(http.MethodGet, "/api/v1/projects/featured", nil, nil)
	expectStatus(t, rec, http.StatusOK)

	rec = f.admin(http.MethodDelete, "/api/v1/admin/projects/"+created.ID, nil)
	expectStatus(t, rec, http.StatusNoContent)

	rec = f.admin(http.MethodDelete, "/api/v1/admin/projects/"+created.ID, nil)
	expectStatus(t, rec, http.StatusNotFound)
}

func TestAdminProjectValidation(t *testing.T) {
	f := newFixture(t)

	body := validProjectRequest()
	body["title"] = map[string]string{"en": "Walnut desk"}
	body["price"] = 0
	rec := f.admin(http.MethodPost, "/api/v1/admin/projects", body)
	expectStatus(t, rec, http.StatusUnprocessableEntity)
	payload := decodeBody[map[string]any](t, rec)
	fields := payload["details"].(map[string]any)["fields"].(map[string]any)
	for _, key := range []string{"title.ar", "title.fr", "title.dz", "price"} {
		if _, ok := fields[key]; !ok {
			t.Fatalf("expected a %s error, got %v", key, fields)
		}
	}

	rec = f.admin(http.MethodPut, "/api/v1/admin/projects/missing", validProjectRequest())
	expectStatus(t, rec, http.StatusNotFound)
}

func TestAdminProfile(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/api/v1/profile", nil, nil)
	expectStatus(t, rec, http.StatusNotFound)

	profile := map[string]any{
		"name":        "Atelier Bois",
		"bio":         map[string]string{"en": "Bio", "ar": "سيرة", "fr": "Bio", "dz": "Bio"},
		"philosophy":  map[string]string{"en": "Slow work", "ar": "عمل", "fr": "Lent", "dz": "Bla3jla"},
		"experience":  15,
		"specialties": []string{"tables"},
		"contact": map[string]any{
			"email": "hello@atelier.example",
			"phone": "+213 555 000 000",
		},
		"socialLinks": map[string]string{"instagram": "https://instagram.com/atelier"},
		"testimonials": []map[string]any{{
			"clientName": "Yacine",
			"content":    map[string]string{"en": "Beautiful work"},
			"rating":     5,
			"date":       "2025-03-02",
		}},
	}
	rec = f.admin(http.MethodPut, "/api/v1/admin/profile", profile)
	expectStatus(t, rec, http.StatusOK)

	rec = f.do(http.MethodGet, "/api/v1/profile", nil, nil)
	expectStatus(t, rec, http.StatusOK)
	got := decodeBody[profilePayload](t, rec)
	if got.Name != "Atelier Bois" || got.ExperienceYears != 15 || got.SocialLinks.Instagram == "" {
		t.Fatalf("unexpected profile: %+v", got)
	}
	if len(got.Testimonials) != 1 || got.Testimonials[0].Date == "" {
		t.Fatalf("expected the testimonial with its date, got %+v", got.Testimonials)
	}

	profile["testimonials"] = []map[string]any{{"clientName": "Yacine", "date": "yesterday"}}
	rec = f.admin(http.MethodPut, "/api/v1/admin/profile", profile)
	expectStatus(t, rec, http.StatusUnprocessableEntity)
}

func TestAdminInquiriesAndStats(t *testing.T) {
	f := newFixture(t)
	f.seedProjects(2)

	for _, email := range []string{"a@example.com", "b@example.com", "a@example.com"} {
		body := validSubmission()
		body["email"] = email
		body["projectId"] = "w01"
		expectStatus(t, f.do(http.MethodPost, "/api/v1/inquiries", body, nil), http.StatusCreated)
	}

	rec := f.admin(http.MethodGet, "/api/v1/admin/inquiries?email=a@example.com", nil)
	expectStatus(t, rec, http.StatusOK)
	list := decodeBody[inquiryListPayload](t, rec)
	if len(list.Items) != 2 {
		t.Fatalf("expected 2 inquiries for a@example.com, got %d", len(list.Items))
	}

	rec = f.admin(http.MethodGet, "/api/v1/admin/inquiries/"+list.Items[0].ID, nil)
	expectStatus(t, rec, http.StatusOK)

	rec = f.admin(http.MethodGet, "/api/v1/admin/inquiries?status=lost", nil)
	expectStatus(t, rec, http.StatusBadRequest)

	rec = f.admin(http.MethodGet, "/api/v1/admin/inquiries/missing", nil)
	expectStatus(t, rec, http.StatusNotFound)

	rec = f.admin(http.MethodGet, "/api/v1/admin/stats", nil)
	expectStatus(t, rec, http.StatusOK)
	stats := decodeBody[statsPayload](t, rec)
	if stats.Projects.TotalProjects != 2 || stats.Projects.TotalInquiries != 3 {
		t.Fatalf("unexpected project stats: %+v", stats.Projects)
	}
	if stats.Inquiries.Total != 3 || stats.Inquiries.ByStatus["pending"] != 3 {
		t.Fatalf("unexpected inquiry stats: %+v", stats.Inquiries)
	}
}

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R', 0, 0, 0, 1, 0, 0, 0, 1, 8, 2, 0, 0, 0}

func multipartUpload(t *testing.T, folder string, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if folder != "" {
		if err := writer.WriteField("folder", folder); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for name, data := range files {
		part, err := writer.CreateFormFile("file", name)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, writer.FormDataContentType()
}

func (f *fixture) upload(body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	f.t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/media", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+f.adminToken())
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestAdminMediaUploadAndDelete(t *testing.T) {
	f := newFixture(t)

	body, contentType := multipartUpload(t, "projects/w00", map[string][]byte{"desk.png": pngHeader})
	rec := f.upload(body, contentType)
	expectStatus(t, rec, http.StatusCreated)
	uploaded := decodeBody[mediaListPayload](t, rec)
	if len(uploaded.Items) != 1 {
		t.Fatalf("expected one uploaded object, got %+v", uploaded)
	}
	obj := uploaded.Items[0]
	if obj.ContentType != "image/png" {
		t.Fatalf("expected image/png, got %s", obj.ContentType)
	}
	if _, ok := f.objects.Object(obj.Path); !ok {
		t.Fatalf("object %s not stored", obj.Path)
	}

	rec = f.admin(http.MethodDelete, "/api/v1/admin/media?path="+obj.Path, nil)
	expectStatus(t, rec, http.StatusNoContent)
	if _, ok := f.objects.Object(obj.Path); ok {
		t.Fatalf("object %s still stored", obj.Path)
	}

	rec = f.admin(http.MethodDelete, "/api/v1/admin/media", nil)
	expectStatus(t, rec, http.StatusUnprocessableEntity)
}

func TestAdminMediaRejectsBadUploads(t *testing.T) {
	f := newFixture(t)

	body, contentType := multipartUpload(t, "projects", map[string][]byte{"notes.txt": []byte("plain text, not an image")})
	rec := f.upload(body, contentType)
	expectStatus(t, rec, http.StatusUnsupportedMediaType)

	large := append(append([]byte(nil), pngHeader...), make([]byte, 2<<20)...)
	body, contentType = multipartUpload(t, "projects", map[string][]byte{"huge.png": large})
	rec = f.upload(body, contentType)
	expectStatus(t, rec, http.StatusRequestEntityTooLarge)

	body, contentType = multipartUpload(t, "garage", map[string][]byte{"desk.png": pngHeader})
	rec = f.upload(body, contentType)
	expectStatus(t, rec, http.StatusUnprocessableEntity)

	body, contentType = multipartUpload(t, "projects", nil)
	rec = f.upload(body, contentType)
	expectStatus(t, rec, http.StatusUnprocessableEntity)
}

