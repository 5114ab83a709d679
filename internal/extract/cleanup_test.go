package extract

import "testing"

func TestStripQualifiers(t *testing.T) {
	tests := map[string]string{
		"Shape of You (Official Video)":       "Shape of You",
		"Hello [Lyrics]":                      "Hello",
		"Live Forever (Live at Wembley 2009)": "Live Forever",
		"Hallelujah (Cover by Someone)":       "Hallelujah",
		"Bohemian Rhapsody (Remastered 2011)": "Bohemian Rhapsody",
		"Kuzu Kuzu [Official Music Video] HD": "Kuzu Kuzu HD",
		"One More Time (Radio Remix)":         "One More Time (Radio Remix)",
		"Smells Like Teen Spirit":             "Smells Like Teen Spirit",
	}

	for in, want := range tests {
		if got := StripQualifiers(in); got != want {
			t.Errorf("StripQualifiers(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestArtistTransforms(t *testing.T) {
	tests := map[string]string{
		"Ed Ed Sheeran":               "Ed Sheeran",
		"Tarkan Official Channel":     "Tarkan",
		"- Sezen Aksu -":              "Sezen Aksu",
		"Universal Music Records":     "Universal",
		"Beyoncé":                     "Beyoncé",
		"Coldplay Entertainment VEVO": "Coldplay",
	}

	for in, want := range tests {
		if got := Apply(in, ArtistTransforms); got != want {
			t.Errorf("Apply(%q, ArtistTransforms) = %q, want %q", in, got, want)
		}
	}
}

func TestRemoveArtist(t *testing.T) {
	tests := []struct {
		song, artist, want string
	}{
		{"Ed Sheeran Shape of You", "ed sheeran", "Shape of You"},
		{"Shape of You - Ed Sheeran", "Ed Sheeran", "Shape of You"},
		{"Adele", "Adele", "Adele"},
		{"Hello", "", "Hello"},
		{"Hello", "Adele", "Hello"},
		{"What (Is) Love", "(Is)", "What Love"},
	}

	for _, tt := range tests {
		if got := RemoveArtist(tt.song, tt.artist); got != tt.want {
			t.Errorf("RemoveArtist(%q, %q) = %q, want %q", tt.song, tt.artist, got, tt.want)
		}
	}
}

func TestTrimEdges(t *testing.T) {
	if got := TrimEdges(` - "Hello", `); got != "Hello" {
		t.Errorf("TrimEdges() = %q, want %q", got, "Hello")
	}
}
