package atproto

import (
	"strings"
	"testing"
)

func TestNSIDConstants(t *testing.T) {
	if NSIDBase != "social.arabica.alpha" {
		t.Errorf("NSIDBase = %q, want %q", NSIDBase, "social.arabica.alpha")
	}
	if NSIDBrewLog != "social.arabica.alpha.brewlog" {
		t.Errorf("NSIDBrewLog = %q, want %q", NSIDBrewLog, "social.arabica.alpha.brewlog")
	}
}

func TestValidateRKey(t *testing.T) {
	tests := []struct {
		name string
		rkey string
		want bool
	}{
		{"TID", "3kfk4slgu6s2h", true},
		{"numeric", "1717171717171", true},
		{"with punctuation", "a.b_c:d-e", true},
		{"empty", "", false},
		{"dot", ".", false},
		{"dot dot", "..", false},
		{"leading dash", "-abc", false},
		{"slash", "a/b", false},
		{"too long", strings.Repeat("a", MaxRKeyLength+1), false},
		{"max length", strings.Repeat("a", MaxRKeyLength), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateRKey(tt.rkey); got != tt.want {
				t.Errorf("ValidateRKey(%q) = %v, want %v", tt.rkey, got, tt.want)
			}
		})
	}
}

func TestBuildATURI(t *testing.T) {
	got := BuildATURI("did:plc:testuser", NSIDBrewLog, "abc123")
	want := "at://did:plc:testuser/social.arabica.alpha.brewlog/abc123"
	if got != want {
		t.Errorf("BuildATURI() = %q, want %q", got, want)
	}
}

func TestResolveATURI(t *testing.T) {
	tests := []struct {
		name           string
		uri            string
		wantDID        string
		wantCollection string
		wantRKey       string
		wantErr        bool
	}{
		{
			name:           "valid plc DID URI",
			uri:            "at://did:plc:abc123/social.arabica.alpha.brewlog/3jxyabc",
			wantDID:        "did:plc:abc123",
			wantCollection: "social.arabica.alpha.brewlog",
			wantRKey:       "3jxyabc",
		},
		{
			name:           "valid web DID URI",
			uri:            "at://did:web:example.com/social.arabica.alpha.brewlog/xyz789",
			wantDID:        "did:web:example.com",
			wantCollection: "social.arabica.alpha.brewlog",
			wantRKey:       "xyz789",
		},
		{
			name:    "invalid scheme",
			uri:     "http://did:plc:abc123/social.arabica.alpha.brewlog/3jxyabc",
			wantErr: true,
		},
		{
			name:    "empty URI",
			uri:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveATURI(tt.uri)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ResolveATURI(%q) error = %v, wantErr %v", tt.uri, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got.DID != tt.wantDID || got.Collection != tt.wantCollection || got.RKey != tt.wantRKey {
				t.Errorf("ResolveATURI(%q) = %+v", tt.uri, got)
			}
		})
	}
}
