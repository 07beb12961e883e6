package main

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/spencer-p/sunsetdash/pkg/locations"
	"github.com/spencer-p/sunsetdash/pkg/sunset"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestPlaces(t *testing.T) {
	got, err := run(t, "places", "sea")
	if err != nil {
		t.Fatalf("places: %v", err)
	}
	if diff := cmp.Diff("Seattle (47.6062, -122.3321)\n", got); diff != "" {
		t.Errorf("wrong output (-want,+got):\n%s", diff)
	}

	if _, err := run(t, "places", "atlantis"); !errors.Is(err, locations.ErrNoMatch) {
		t.Errorf("got %v, wanted ErrNoMatch", err)
	}
}

func TestSunset(t *testing.T) {
	got, err := run(t, "sunset", "--place", "seattle", "--zone", "America/Los_Angeles", "--date", "2024-06-21")
	if err != nil {
		t.Fatalf("sunset: %v", err)
	}
	if !strings.HasPrefix(got, "Fri 21 Jun 24 sunrise 05:") {
		t.Errorf("unexpected output %q", got)
	}
	if !strings.Contains(got, "sunset 21:") {
		t.Errorf("missing summer sunset in %q", got)
	}
}

func TestRejects(t *testing.T) {
	for _, args := range [][]string{
		{"sunset", "--lat", "999"},
		{"sunset", "--oracle", "sundial"},
		{"sunset", "--date", "tomorrow"},
		{"calendar", "--hours", "17,x"},
		{"places"},
	} {
		if _, err := run(t, args...); err == nil {
			t.Errorf("%v: expected an error", args)
		}
	}
}

func TestInvalidLocationSentinel(t *testing.T) {
	_, err := run(t, "next", "--lat", "91")
	if !errors.Is(err, sunset.ErrInvalidLocation) {
		t.Errorf("got %v, wanted ErrInvalidLocation", err)
	}
}
