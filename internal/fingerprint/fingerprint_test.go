package fingerprint

import "testing"

func TestDigestEmptyInput(t *testing.T) {
	if got := Digest(""); got != "0x00000000" {
		t.Errorf("empty digest: got %q, want %q", got, "0x00000000")
	}
}

func TestDigestKnownValues(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"abc", "0x00017862"},
		{"hello world", "0x6aefe2c4"},
		{"alpha", "0x0589b15e"},
		{"alphb", "0x0589b15f"},
		{"a1-2024-07-31 22:15:03 UTC-Sector 4, Grid 8B", "0x6d61b3f8"},
	}

	for _, tc := range cases {
		if got := Digest(tc.in); got != tc.want {
			t.Errorf("Digest(%q): got %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDigestDeterminism(t *testing.T) {
	inputs := []string{"", "a", "evidence.mp4", "Sector 4, Grid 8B", "日本語"}
	for _, in := range inputs {
		first := Digest(in)
		for i := 0; i < 5; i++ {
			if got := Digest(in); got != first {
				t.Fatalf("Digest(%q) not deterministic: got %q then %q", in, first, got)
			}
		}
	}
}

func TestDigestFormat(t *testing.T) {
	for _, in := range []string{"x", "some longer identity string", "0"} {
		got := Digest(in)
		if len(got) != 10 || got[:2] != "0x" {
			t.Errorf("Digest(%q) = %q, want 0x-prefixed 8 hex digits", in, got)
		}
	}
}

func TestFileIdentity(t *testing.T) {
	got := File("cam-07-photo.jpg", 482113, 1722463522000)
	if got != "0x70a66012" {
		t.Errorf("File digest: got %q, want %q", got, "0x70a66012")
	}

	// The same triple always maps to the same digest.
	if again := File("cam-07-photo.jpg", 482113, 1722463522000); again != got {
		t.Errorf("File digest not stable: %q vs %q", got, again)
	}
}
