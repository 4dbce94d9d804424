// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"strings"
	"testing"
)

const testSchema = `
#Settings: {
	name:    string & !=""
	count:   int & >=0
	enabled: bool | *true
}
`

type settings struct {
	Name    string `json:"name"`
	Count   int    `json:"count"`
	Enabled bool   `json:"enabled"`
}

func TestDecode(t *testing.T) {
	t.Parallel()

	got, err := Decode[settings](
		[]byte(testSchema),
		[]byte("name: \"probe\"\ncount: 4\n"),
		"#Settings", "settings.cue")
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if got.Name != "probe" || got.Count != 4 {
		t.Errorf("Decode() = %+v", got)
	}
	if !got.Enabled {
		t.Error("schema default for enabled should apply")
	}
}

func TestDecode_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		wantSub string
	}{
		{"syntax error", "name: \"x\"\ncount: = 3\n", "syntax.cue"},
		{"type mismatch", "name: \"x\"\ncount: \"three\"\n", "count"},
		{"constraint violation", "name: \"\"\ncount: 1\n", "name"},
		{"missing required field", "count: 1\n", "name"},
		{"unknown field", "name: \"x\"\ncount: 1\nbogus: true\n", "bogus"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Decode[settings]([]byte(testSchema), []byte(tt.data), "#Settings", "syntax.cue")
			if err == nil {
				t.Fatal("Decode() should fail")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error %q should mention %q", err, tt.wantSub)
			}
		})
	}
}

func TestDecode_SizeLimit(t *testing.T) {
	t.Parallel()

	big := make([]byte, MaxDocumentSize+1)
	for i := range big {
		big[i] = ' '
	}
	_, err := Decode[settings]([]byte(testSchema), big, "#Settings", "huge.cue")
	if err == nil || !strings.Contains(err.Error(), "exceeds maximum") {
		t.Errorf("oversized document should be rejected, got %v", err)
	}
}

func TestDecode_DefaultFilename(t *testing.T) {
	t.Parallel()

	_, err := Decode[settings]([]byte(testSchema), []byte("count: -1\nname: \"x\"\n"), "#Settings", "")
	if err == nil {
		t.Fatal("Decode() should fail")
	}
	if !strings.Contains(err.Error(), "<input>") {
		t.Errorf("error %q should use the placeholder filename", err)
	}
}
