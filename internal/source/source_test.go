package source

import "testing"

func TestForArg(t *testing.T) {
	t.Parallel()

	client := NewClient(Config{})

	tests := []struct {
		arg  string
		want string
	}{
		{"-", "Stdin"},
		{"mappings/worldbank.json", "Local"},
		{"http://example.com/mapping.json", "URL"},
		{"https://example.com/mapping.json", "URL"},
		{"httpx/mapping.json", "Local"}, // only real URL schemes go remote
	}

	for _, tt := range tests {
		tt := tt // capture range variable
		t.Run(tt.arg, func(t *testing.T) {
			t.Parallel()

			var got string
			switch s := ForArg(tt.arg, client).(type) {
			case Stdin:
				got = "Stdin"
			case *Local:
				got = "Local"
			case *URL:
				got = "URL"
				if s.Client != client {
					t.Error("ForArg() did not thread the shared client into the URL source")
				}
			default:
				t.Fatalf("ForArg(%q) = %T, unexpected type", tt.arg, s)
			}
			if got != tt.want {
				t.Errorf("ForArg(%q) = %s, want %s", tt.arg, got, tt.want)
			}
		})
	}
}
