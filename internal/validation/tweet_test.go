package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateTweetContent(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"Valid", "hello world", false},
		{"Empty", "", true},
		{"Whitespace Only", "   \n\t", true},
		{"Exactly Max", strings.Repeat("a", 140), false},
		{"Over Max", strings.Repeat("a", 141), true},
		{"Multibyte At Max", strings.Repeat("あ", 140), false},
		{"Multibyte Over Max", strings.Repeat("あ", 141), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTweetContent(tt.content, 140)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateImageURL(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"Empty Is Valid", "", false},
		{"HTTPS", "https://cdn.example.com/a.png", false},
		{"HTTP", "http://cdn.example.com/a.png", false},
		{"Relative", "/uploads/a.png", true},
		{"FTP Scheme", "ftp://cdn.example.com/a.png", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateImageURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
