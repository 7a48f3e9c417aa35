package errors

import (
	"strings"
	"testing"
)

func TestValidateReferenceName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"HEAD", "HEAD", false},
		{"branch", "refs/heads/main", false},
		{"nested branch", "refs/heads/feature/x-1", false},
		{"tag", "refs/tags/v1.0.0", false},
		{"remote", "refs/remotes/origin/HEAD", false},

		{"empty", "", true},
		{"too long", "refs/" + strings.Repeat("a", 1100), true},
		{"double dot", "refs/heads/a..b", true},
		{"reflog syntax", "HEAD@{1}", true},
		{"space", "refs/heads/my branch", true},
		{"tilde", "HEAD~1", true},
		{"caret", "HEAD^", true},
		{"colon", "refs/heads/a:b", true},
		{"glob", "refs/heads/*", true},
		{"backslash", "refs\\heads", true},
		{"control char", "refs/heads/\x01", true},
		{"leading slash", "/refs/heads/main", true},
		{"trailing slash", "refs/heads/", true},
		{"double slash", "refs//heads", true},
		{"lock suffix", "refs/heads/main.lock", true},
		{"trailing dot", "refs/heads/main.", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateReferenceName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateReferenceName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidIdentifier) {
				t.Errorf("ValidateReferenceName(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestValidateHash(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"lower", "0123456789abcdef0123456789abcdef01234567", false},
		{"upper", "0123456789ABCDEF0123456789ABCDEF01234567", false},

		{"empty", "", true},
		{"short", "0123456", true},
		{"long", strings.Repeat("a", 41), true},
		{"non hex", "g123456789abcdef0123456789abcdef01234567", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHash(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateHash(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", ".", false},
		{"absolute", "/home/user/repo", false},
		{"nested", "src/project", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 5000), true},
		{"null byte", "foo\x00bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidPath) {
				t.Errorf("ValidatePath(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}
