package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"courier/internal/types"
)

func TestNominatimSearch(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("path = %q, want /search", r.URL.Path)
		}
		q := r.URL.Query()
		gotQuery = map[string]string{
			"q":              q.Get("q"),
			"format":         q.Get("format"),
			"addressdetails": q.Get("addressdetails"),
			"limit":          q.Get("limit"),
			"countrycodes":   q.Get("countrycodes"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{
				"display_name": "123, Rizal Street, Manila, Philippines",
				"lat": "14.5995",
				"lon": "120.9842",
				"address": {"house_number": "123", "road": "Rizal Street", "city": "Manila", "country": "Philippines"}
			},
			{
				"display_name": "Broken coordinates",
				"lat": "95.0",
				"lon": "120.0",
				"address": {}
			}
		]`))
	}))
	defer srv.Close()

	p := NewNominatimProvider(srv.URL, "ph", 6)
	got := p.Search(context.Background(), "123 Rizal St, Manila")

	if gotQuery["q"] != "123 Rizal St, Manila" {
		t.Errorf("q = %q", gotQuery["q"])
	}
	if gotQuery["format"] != "json" || gotQuery["addressdetails"] != "1" {
		t.Errorf("format/addressdetails = %q/%q", gotQuery["format"], gotQuery["addressdetails"])
	}
	if gotQuery["limit"] != "6" || gotQuery["countrycodes"] != "ph" {
		t.Errorf("limit/countrycodes = %q/%q", gotQuery["limit"], gotQuery["countrycodes"])
	}

	if len(got) != 1 {
		t.Fatalf("got %d candidates, want 1 (out-of-range result dropped)", len(got))
	}
	c := got[0]
	if c.Coordinates.Lat != 14.5995 || c.Coordinates.Lng != 120.9842 {
		t.Errorf("coordinates = %+v", c.Coordinates)
	}
	if c.Confidence != ConfidenceHigh {
		t.Errorf("confidence = %s, want high (house+road+city)", c.Confidence)
	}
	if c.Provider != "nominatim" {
		t.Errorf("provider = %q", c.Provider)
	}
}

func TestNominatimSearchCityFallsBackToTown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{
			"display_name": "7, Main Road, San Pablo",
			"lat": "14.07",
			"lon": "121.32",
			"address": {"house_number": "7", "road": "Main Road", "town": "San Pablo"}
		}]`))
	}))
	defer srv.Close()

	p := NewNominatimProvider(srv.URL, "", 6)
	got := p.Search(context.Background(), "7 main road san pablo")
	if len(got) != 1 {
		t.Fatalf("got %d candidates", len(got))
	}
	if got[0].Parts.City != "San Pablo" {
		t.Errorf("Parts.City = %q, want town value", got[0].Parts.City)
	}
	if got[0].Confidence != ConfidenceHigh {
		t.Errorf("confidence = %s, want high", got[0].Confidence)
	}
}

func TestNominatimSearchServerErrorReturnsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewNominatimProvider(srv.URL, "", 6)
	if got := p.Search(context.Background(), "anything at all"); got != nil {
		t.Errorf("expected nil on server error, got %v", got)
	}
	if got := p.Reverse(context.Background(), types.Point{Lat: 14.6, Lng: 121.0}); got != "" {
		t.Errorf("expected empty reverse on server error, got %q", got)
	}
}

func TestNominatimReverse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/reverse" {
			t.Errorf("path = %q, want /reverse", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("lat") == "" || q.Get("lon") == "" || q.Get("format") != "json" {
			t.Errorf("unexpected query %v", q)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"display_name": "Rizal Park, Manila, Philippines"}`))
	}))
	defer srv.Close()

	p := NewNominatimProvider(srv.URL, "", 6)
	got := p.Reverse(context.Background(), types.Point{Lat: 14.5825, Lng: 120.9787})
	if got != "Rizal Park, Manila, Philippines" {
		t.Errorf("Reverse = %q", got)
	}
}
