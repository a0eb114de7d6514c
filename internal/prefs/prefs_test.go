package prefs

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/kodedot/kodebuild/internal/logger"
)

func TestStripComments(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "line comment",
			in:   "{\n  // region\n  \"a\": \"1\" // trailing\n}\n",
			want: "{\n  \n  \"a\": \"1\" \n}\n",
		},
		{
			name: "comment at end without newline",
			in:   `{"a": "1"} // done`,
			want: `{"a": "1"} `,
		},
		{
			name: "slashes inside string",
			in:   `{"url": "https://meshtastic.org"} // c`,
			want: `{"url": "https://meshtastic.org"} `,
		},
		{
			name: "escaped quote inside string",
			in:   `{"q": "say \"//hi\""}`,
			want: `{"q": "say \"//hi\""}`,
		},
		{
			name: "single slash untouched",
			in:   `{"div": "a/b"} / x`,
			want: `{"div": "a/b"} / x`,
		},
		{
			name: "no comments",
			in:   "{\n\t\"k\": 1\n}",
			want: "{\n\t\"k\": 1\n}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(StripComments([]byte(tt.in))); got != tt.want {
				t.Errorf("StripComments() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeKeepsOrder(t *testing.T) {
	src := `{
  // "USERPREFS_DISABLED": "1",
  "USERPREFS_TZ_STRING": "tzplaceholder                                         ",
  "USERPREFS_CHANNEL_0_PSK": "{ 0x38, 0x4b }",
  "USERPREFS_LORACONFIG_MODEM_PRESET": "meshtastic_Config_LoRaConfig_ModemPreset_SHORT_FAST",
  "USERPREFS_CONFIG_LORA_IGNORE_MQTT": "true",
  "USERPREFS_CHANNEL_0_PRECISION": 14,
  "USERPREFS_EVENT_MODE": false
}`
	p, err := Decode([]byte(src))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	var names []string
	for _, pref := range p {
		names = append(names, pref.Name)
	}
	wantNames := []string{
		"USERPREFS_TZ_STRING",
		"USERPREFS_CHANNEL_0_PSK",
		"USERPREFS_LORACONFIG_MODEM_PRESET",
		"USERPREFS_CONFIG_LORA_IGNORE_MQTT",
		"USERPREFS_CHANNEL_0_PRECISION",
		"USERPREFS_EVENT_MODE",
	}
	if !reflect.DeepEqual(names, wantNames) {
		t.Errorf("names = %v, want %v", names, wantNames)
	}
	if v, _ := p.Get("USERPREFS_CHANNEL_0_PRECISION"); v != "14" {
		t.Errorf("number value = %q", v)
	}
	if v, _ := p.Get("USERPREFS_EVENT_MODE"); v != "false" {
		t.Errorf("bool value = %q", v)
	}
}

func TestDecodeDuplicateKeepsLastValue(t *testing.T) {
	p, err := Decode([]byte(`{"A": "1", "B": "2", "A": "3"}`))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	want := Prefs{{Name: "A", Value: "3"}, {Name: "B", Value: "2"}}
	if !reflect.DeepEqual(p, want) {
		t.Errorf("Decode() = %v, want %v", p, want)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want error
	}{
		{name: "array", in: `["a"]`, want: ErrNotObject},
		{name: "empty", in: ``},
		{name: "truncated", in: `{"a": "1"`},
		{name: "trailing", in: `{"a": "1"} {}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.in))
			if err == nil {
				t.Fatal("Decode() expected error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("Decode() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestLoadFallsBackToEmpty(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.jsonc")
	if err := os.WriteFile(bad, []byte("{ nope"), 0o600); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{filepath.Join(dir, "userPrefs.jsonc"), bad} {
		var buf bytes.Buffer
		log := logger.New(&logger.Config{Level: "warn", Output: &buf})
		p := Load(path, log)
		if len(p) != 0 {
			t.Errorf("Load(%s) = %v, want empty", path, p)
		}
		if !strings.Contains(buf.String(), "WARN") {
			t.Errorf("Load(%s) did not warn: %q", path, buf.String())
		}
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "userPrefs.jsonc")
	if err := os.WriteFile(path, []byte("{\n// c\n\"USERPREFS_X\": \"42\"\n}\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	p := Load(path, logger.Discard())
	if !reflect.DeepEqual(p, Prefs{{Name: "USERPREFS_X", Value: "42"}}) {
		t.Errorf("Load() = %v", p)
	}
}
