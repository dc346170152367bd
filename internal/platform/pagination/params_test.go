package pagination

import (
	"errors"
	"net/http/httptest"
	"net/url"
	"testing"
)

func TestParseDefaults(t *testing.T) {
	params, err := Parse(url.Values{}, Options{})
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if params.PageSize != DefaultPageSize {
		t.Fatalf("expected default page size %d got %d", DefaultPageSize, params.PageSize)
	}
	if params.PageToken != "" {
		t.Fatalf("expected empty page token got %q", params.PageToken)
	}
}

func TestParsePageSize(t *testing.T) {
	opts := Options{DefaultPageSize: 12, MaxPageSize: 40}
	values := url.Values{}
	values.Set("pageSize", "30")

	params, err := Parse(values, opts)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if params.PageSize != 30 {
		t.Fatalf("expected page size 30 got %d", params.PageSize)
	}

	values.Set("pageSize", "400")
	params, err = Parse(values, opts)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if params.PageSize != opts.MaxPageSize {
		t.Fatalf("expected page size clamped to %d got %d", opts.MaxPageSize, params.PageSize)
	}
}

func TestParseInvalidPageSize(t *testing.T) {
	for _, raw := range []string{"abc", "0", "-3"} {
		values := url.Values{}
		values.Set("pageSize", raw)
		if _, err := Parse(values, Options{}); !errors.Is(err, ErrInvalidPageSize) {
			t.Fatalf("pageSize=%q: expected ErrInvalidPageSize, got %v", raw, err)
		}
	}
}

func TestDefaultPageSizeNeverExceedsMax(t *testing.T) {
	size, err := ClampPageSize("", Options{DefaultPageSize: 60, MaxPageSize: 20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if size != 20 {
		t.Fatalf("expected default clamped to 20, got %d", size)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	type cursor struct {
		ID    string  `json:"id"`
		Price float64 `json:"p"`
	}
	token, err := EncodeToken(cursor{ID: "01HZX", Price: 1250.5})
	if err != nil {
		t.Fatalf("EncodeToken: %v", err)
	}

	req := httptest.NewRequest("GET", "/projects?pageToken="+token, nil)
	params, err := FromRequest(req, Options{})
	if err != nil {
		t.Fatalf("FromRequest: %v", err)
	}
	if params.PageToken != token {
		t.Fatalf("expected token to be preserved")
	}

	var decoded cursor
	if err := DecodeToken(params.PageToken, &decoded); err != nil {
		t.Fatalf("DecodeToken: %v", err)
	}
	if decoded.ID != "01HZX" || decoded.Price != 1250.5 {
		t.Fatalf("unexpected cursor %#v", decoded)
	}
}

func TestParseRejectsGarbledToken(t *testing.T) {
	values := url.Values{}
	values.Set("pageToken", "%%%not-base64")
	if _, err := Parse(values, Options{}); !errors.Is(err, ErrInvalidPageToken) {
		t.Fatalf("expected ErrInvalidPageToken, got %v", err)
	}

	values.Set("pageToken", "bm90LWpzb24") // "not-json"
	if _, err := Parse(values, Options{}); !errors.Is(err, ErrInvalidPageToken) {
		t.Fatalf("expected ErrInvalidPageToken for non-json payload, got %v", err)
	}
}

func TestNormalizeSize(t *testing.T) {
	cases := []struct{ size, max, want int }{
		{0, 0, DefaultPageSize},
		{-3, 20, DefaultPageSize},
		{30, 20, 20},
		{5, 0, 5},
		{100, 0, DefaultMaxPageSize},
	}
	for _, tc := range cases {
		if got := NormalizeSize(tc.size, tc.max); got != tc.want {
			t.Fatalf("NormalizeSize(%d, %d) = %d, want %d", tc.size, tc.max, got, tc.want)
		}
	}
}
