// internal/domain/location/viewport_test.go

package location

import "testing"

func TestParseViewport(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Viewport
	}{
		{"rotterdam", "4.4,51.8,4.6,52.0", Viewport{West: 4.4, South: 51.8, East: 4.6, North: 52.0}},
		{"negative coordinates", "-74.1,40.6,-73.8,40.9", Viewport{West: -74.1, South: 40.6, East: -73.8, North: 40.9}},
		{"spaces tolerated", " 4.4, 51.8, 4.6, 52.0 ", Viewport{West: 4.4, South: 51.8, East: 4.6, North: 52.0}},
		{"integers", "4,51,5,52", Viewport{West: 4, South: 51, East: 5, North: 52}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseViewport(tt.input)
			if err != nil {
				t.Fatalf("parse %q: %v", tt.input, err)
			}
			if *got != tt.want {
				t.Fatalf("expected %+v, got %+v", tt.want, *got)
			}
		})
	}
}

func TestParseViewportRejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"too few coordinates", "4.4,51.8,4.6"},
		{"too many coordinates", "4.4,51.8,4.6,52.0,1.0"},
		{"not numbers", "a,b,c,d"},
		{"nan", "NaN,51.8,4.6,52.0"},
		{"infinite", "4.4,51.8,+Inf,52.0"},
		{"west east flipped", "4.6,51.8,4.4,52.0"},
		{"west equals east", "4.4,51.8,4.4,52.0"},
		{"south north flipped", "4.4,52.0,4.6,51.8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseViewport(tt.input); err == nil {
				t.Fatalf("expected %q to be rejected", tt.input)
			}
		})
	}
}

func TestViewportString(t *testing.T) {
	vp := Viewport{West: 4.4, South: 51.8, East: 4.6, North: 52}
	if got := vp.String(); got != "4.4,51.8,4.6,52" {
		t.Fatalf("expected 4.4,51.8,4.6,52, got %q", got)
	}
}

func TestViewportStringRoundTrip(t *testing.T) {
	vp := &Viewport{West: -74.123456, South: 40.5, East: -73.9, North: 40.95}

	parsed, err := ParseViewport(vp.String())
	if err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if !parsed.Equal(vp) {
		t.Fatalf("expected %+v, got %+v", vp, parsed)
	}
}

func TestViewportEqual(t *testing.T) {
	a := &Viewport{West: 4.4, South: 51.8, East: 4.6, North: 52}
	b := &Viewport{West: 4.4, South: 51.8, East: 4.6, North: 52}
	c := &Viewport{West: 4.5, South: 51.8, East: 4.6, North: 52}

	if !a.Equal(b) {
		t.Fatal("expected identical viewports to be equal")
	}
	if a.Equal(c) {
		t.Fatal("expected different viewports to differ")
	}
	if !(*Viewport)(nil).Equal(nil) {
		t.Fatal("expected nil descriptors to be equal")
	}
	if a.Equal(nil) {
		t.Fatal("expected a viewport not to equal the nil descriptor")
	}
	if (*Viewport)(nil).Equal(a) {
		t.Fatal("expected the nil descriptor not to equal a viewport")
	}
}
