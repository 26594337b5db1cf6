package domain

import (
	"encoding/json"
	"testing"
)

func TestTenantIDUnmarshal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    TenantID
		wantErr bool
	}{
		{in: `"1"`, want: "1"},
		{in: `1`, want: "1"},
		{in: `" 2 "`, want: "2"},
		{in: `null`, want: ""},
		{in: `1.5`, wantErr: true},
		{in: `true`, wantErr: true},
	}

	for _, tt := range tests {
		var got struct {
			House TenantID `json:"house_number"`
		}
		err := json.Unmarshal([]byte(`{"house_number":`+tt.in+`}`), &got)
		if tt.wantErr {
			if err == nil {
				t.Errorf("%s: expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error %v", tt.in, err)
			continue
		}
		if got.House != tt.want {
			t.Errorf("%s: got %q, want %q", tt.in, got.House, tt.want)
		}
	}
}

func TestTenantSet(t *testing.T) {
	t.Parallel()

	s := NewTenantSet("1", " 2", "", "1", "3")
	if s.Len() != 3 {
		t.Fatalf("expected 3 houses, got %d", s.Len())
	}
	if !s.Contains("2") || s.Contains("99") || s.Contains("") {
		t.Fatal("unexpected membership")
	}

	ids := s.IDs()
	ids[0] = "mutated"
	if !s.Contains("1") || s.IDs()[0] != "1" {
		t.Fatal("IDs must return a copy")
	}

	var zero TenantSet
	if zero.Contains("1") {
		t.Fatal("zero set should be empty")
	}
}

func TestLanguageOfTag(t *testing.T) {
	t.Parallel()

	tests := map[string]Language{
		"greeting_en":      English,
		"wifi_password_fr": French,
		"salam_ar":         Arabic,
	}
	for tag, want := range tests {
		got, ok := LanguageOfTag(tag)
		if !ok || got != want {
			t.Errorf("LanguageOfTag(%q) = %q, %v", tag, got, ok)
		}
	}
	for _, tag := range []string{"greeting", "greeting_de", "_en_x", ""} {
		if _, ok := LanguageOfTag(tag); ok {
			t.Errorf("LanguageOfTag(%q) should not resolve", tag)
		}
	}
}
