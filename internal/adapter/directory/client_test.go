// internal/adapter/directory/client_test.go

package directory

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kulmetehan/turkish-diaspora-app-sub003/internal/domain/location"
)

func TestFetchLocationCount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/locations/count" {
			t.Errorf("expected path /locations/count, got %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("bbox"); got != "4.4,51.8,4.6,52" {
			t.Errorf("expected bbox 4.4,51.8,4.6,52, got %q", got)
		}
		json.NewEncoder(w).Encode(map[string]int{"count": 42})
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL})
	vp := &location.Viewport{West: 4.4, South: 51.8, East: 4.6, North: 52}

	count, err := client.FetchLocationCount(context.Background(), vp)
	if err != nil {
		t.Fatalf("fetch count: %v", err)
	}
	if count != 42 {
		t.Fatalf("expected 42, got %d", count)
	}
}

func TestFetchLocationCountWithoutViewport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("bbox") {
			t.Errorf("expected no bbox for the full count, got %q", r.URL.Query().Get("bbox"))
		}
		json.NewEncoder(w).Encode(map[string]int{"count": 7})
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL})
	count, err := client.FetchLocationCount(context.Background(), nil)
	if err != nil {
		t.Fatalf("fetch count: %v", err)
	}
	if count != 7 {
		t.Fatalf("expected 7, got %d", count)
	}
}

func TestFetchLocationCountRejectsNegative(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]int{"count": -1})
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL})
	_, err := client.FetchLocationCount(context.Background(), nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "negative count") {
		t.Fatalf("expected a negative count error, got %v", err)
	}
}

func TestFetchLocations(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/locations" {
			t.Errorf("expected path /locations, got %s", r.URL.Path)
		}
		query := r.URL.Query()
		if got := query.Get("limit"); got != "500" {
			t.Errorf("expected limit 500, got %q", got)
		}
		if got := query.Get("offset"); got != "1000" {
			t.Errorf("expected offset 1000, got %q", got)
		}
		if got := query.Get("bbox"); got != "4.4,51.8,4.6,52" {
			t.Errorf("expected bbox 4.4,51.8,4.6,52, got %q", got)
		}
		w.Write([]byte(`[
			{"id":"loc-1","name":"Kebab Palace","address":"Hoogstraat 12","latitude":51.92,"longitude":4.48,"category":"restaurant","category_label":"Restoran","status":"VERIFIED","confidence_score":0.93},
			{"id":"loc-2","name":"Anadolu Market","category":"market","category_label":"Market","status":"candidate"}
		]`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL})
	vp := &location.Viewport{West: 4.4, South: 51.8, East: 4.6, North: 52}

	records, err := client.FetchLocations(context.Background(), vp, 500, 1000)
	if err != nil {
		t.Fatalf("fetch locations: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	first := records[0]
	if first.ID != "loc-1" {
		t.Fatalf("expected loc-1, got %q", first.ID)
	}
	if first.CategoryKey != "restaurant" || first.CategoryLabel != "Restoran" {
		t.Fatalf("expected the category pair to map over, got %q/%q", first.CategoryKey, first.CategoryLabel)
	}
	if first.Status != location.StatusVerified {
		t.Fatalf("expected upstream casing to fold to verified, got %q", first.Status)
	}
	if first.Confidence == nil || *first.Confidence != 0.93 {
		t.Fatalf("expected confidence 0.93, got %v", first.Confidence)
	}
	if !first.HasCoordinates() {
		t.Fatal("expected loc-1 to have coordinates")
	}

	second := records[1]
	if second.HasCoordinates() {
		t.Fatal("expected loc-2 to have no coordinates")
	}
	if second.Status != location.StatusCandidate {
		t.Fatalf("expected candidate, got %q", second.Status)
	}
}

func TestFetchCategories(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/categories" {
			t.Errorf("expected path /categories, got %s", r.URL.Path)
		}
		w.Write([]byte(`[{"key":"cafe","label":"Kafe"},{"key":"restaurant","label":"Restoran"}]`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL})
	categories, err := client.FetchCategories(context.Background())
	if err != nil {
		t.Fatalf("fetch categories: %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(categories))
	}
	if categories[0].Key != "cafe" || categories[0].Label != "Kafe" {
		t.Fatalf("expected cafe/Kafe, got %+v", categories[0])
	}
}

func TestServerErrorSurfacesStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL})
	_, err := client.FetchLocations(context.Background(), nil, 10, 0)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "status 502") {
		t.Fatalf("expected the status in the error, got %v", err)
	}
}

func TestDecodeErrorSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL})
	_, err := client.FetchCategories(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "decode") {
		t.Fatalf("expected a decode error, got %v", err)
	}
}

func TestRequestCancellationIsVisible(t *testing.T) {
	started := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	client := NewClient(ClientConfig{BaseURL: server.URL})

	done := make(chan error, 1)
	go func() {
		_, err := client.FetchLocations(ctx, nil, 10, 0)
		done <- err
	}()

	<-started
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled to stay visible, got %v", err)
	}
}

func TestBaseURLTrailingSlashTrimmed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/categories" {
			t.Errorf("expected path /api/v1/categories, got %s", r.URL.Path)
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL + "/api/v1/"})
	if _, err := client.FetchCategories(context.Background()); err != nil {
		t.Fatalf("fetch categories: %v", err)
	}
}
