package flags

import (
	"reflect"
	"testing"
)

func TestParseDefines(t *testing.T) {
	got := ParseDefines(
		"-DHAS_TFT=1 -D DISPLAY_SIZE=320x240 -Ivariants/kode_dot",
		`-DUSERPREFS_NAME="Kode Node" -Wall -DKODE_DOT`,
		"-D",
	)
	want := Defines{
		{Name: "HAS_TFT", Value: "1"},
		{Name: "DISPLAY_SIZE", Value: "320x240"},
		{Name: "USERPREFS_NAME", Value: "Kode Node"},
		{Name: "KODE_DOT", Value: ""},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseDefines() = %+v, want %+v", got, want)
	}
}

func TestDefinesLookup(t *testing.T) {
	d := ParseDefines("-DHAS_TFT=0", "-DHAS_TFT=1", "-DDEBUG")

	if v, ok := d.Lookup("HAS_TFT"); !ok || v != "1" {
		t.Errorf("Lookup(HAS_TFT) = %q, %v", v, ok)
	}
	if _, ok := d.Lookup("MISSING"); ok {
		t.Error("Lookup(MISSING) found")
	}
	if !d.Enabled("HAS_TFT") {
		t.Error("HAS_TFT should be enabled")
	}
	if d.Enabled("DEBUG") {
		t.Error("bare define is not =1")
	}
}

func TestSplitArgs(t *testing.T) {
	got := splitArgs(" a  'b c'\t\"d e\"\nf ''")
	want := []string{"a", "b c", "d e", "f", ""}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("splitArgs() = %q, want %q", got, want)
	}
}
