package survey

import (
	"reflect"
	"testing"
)

func TestResolveGroupFirstMatchPerPrefix(t *testing.T) {
	cols := []string{"ID", "TC014Q01HNA01", "TC014Q01HNA02", "TC028Q02NA01"}
	got := ResolveGroup(cols, []string{"tc014q01"})
	want := []string{"TC014Q01HNA01"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ResolveGroup = %v; want %v", got, want)
	}
}

func TestResolveGroupCaseInsensitive(t *testing.T) {
	cols := []string{"tc199q05na"}
	if got := ResolveGroup(cols, []string{"TC199Q05"}); len(got) != 1 || got[0] != "tc199q05na" {
		t.Fatalf("ResolveGroup = %v", got)
	}
}

func TestResolveGroupNoDuplicateClaims(t *testing.T) {
	// Two prefixes that both match the same single column: the column is
	// claimed once.
	cols := []string{"TC018Q01NA"}
	got := ResolveGroup(cols, []string{"tc018", "tc018q01"})
	if len(got) != 1 {
		t.Fatalf("expected single claim, got %v", got)
	}
}

func TestResolveGroupUnmatchedPrefixSkipped(t *testing.T) {
	cols := []string{"TC014Q01"}
	got := ResolveGroup(cols, []string{"tc014q01", "tc999q01"})
	if len(got) != 1 {
		t.Fatalf("expected unmatched prefix skipped, got %v", got)
	}
}

func TestResolveGroupIdempotent(t *testing.T) {
	cols := []string{"TC014Q01", "TC015Q01", "TC018Q01"}
	prefixes := []string{"tc014q01", "tc015q01", "tc018q01"}
	first := ResolveGroup(cols, prefixes)
	second := ResolveGroup(cols, prefixes)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("resolution not stable: %v vs %v", first, second)
	}
}
