package parser

import "testing"

func TestImageURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"quoted double", `=IMAGE("https://example.com/cat.png")`, "https://example.com/cat.png"},
		{"quoted single", `=IMAGE('https://example.com/cat.png')`, "https://example.com/cat.png"},
		{"quoted with mode arg", `=IMAGE("https://example.com/cat.png", 4, 50, 50)`, "https://example.com/cat.png"},
		{"unquoted", `=IMAGE(https://example.com/cat.png)`, "https://example.com/cat.png"},
		{"unquoted comma terminated", `=IMAGE(https://example.com/cat.png,1)`, "https://example.com/cat.png"},
		{"nested hyperlink", `=IMAGE(HYPERLINK("https://example.com/photo", "click"))`, "https://example.com/photo"},
		{"hyperlink image extension", `=HYPERLINK("https://example.com/pic.jpg", "pic")`, "https://example.com/pic.jpg"},
		{"hyperlink allowlisted host", `=HYPERLINK("https://i.imgur.com/abc123", "pic")`, "https://i.imgur.com/abc123"},
		{"hyperlink plain page", `=HYPERLINK("https://example.com/about", "about")`, ""},
		{"bare image url", "https://example.com/photo.jpeg", "https://example.com/photo.jpeg"},
		{"bare image url with query", "https://example.com/photo.png?w=100", "https://example.com/photo.png?w=100"},
		{"bare non-image url", "https://example.com/report.pdf", ""},
		{"case insensitive function", `=image("https://example.com/a.gif")`, "https://example.com/a.gif"},
		{"leading whitespace", `  =IMAGE("https://example.com/a.webp")`, "https://example.com/a.webp"},
		{"sum formula", "=SUM(A1:A3)", ""},
		{"vlookup formula", `=VLOOKUP("IMAGE", A:B, 2)`, ""},
		{"plain text", "hello world", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ImageURL(tt.input); got != tt.want {
				t.Errorf("ImageURL(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestLooksLikeImageURL(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"https://example.com/a.png", true},
		{"https://example.com/a.PNG", true},
		{"https://lh3.googleusercontent.com/d/abc", true},
		{"https://images.unsplash.com/photo-123", true},
		{"https://example.com/page", false},
		{"ftp://example.com/a.png", false},
		{"not a url", false},
	}

	for _, tt := range tests {
		if got := LooksLikeImageURL(tt.input); got != tt.want {
			t.Errorf("LooksLikeImageURL(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
