package secure

import (
	"strings"
	"testing"
)

func TestURLSafeToken(t *testing.T) {
	token, err := URLSafeToken(48)
	if err != nil {
		t.Fatalf("URLSafeToken() error = %v", err)
	}

	// 48 raw bytes encode to 64 url-safe characters
	if len(token) != 64 {
		t.Errorf("URLSafeToken() length = %d, want 64", len(token))
	}
	if strings.ContainsAny(token, "+/=") {
		t.Errorf("URLSafeToken() contains non url-safe characters: %q", token)
	}
}

func TestURLSafeTokenUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := URLSafeToken(48)
		if err != nil {
			t.Fatalf("URLSafeToken() error = %v", err)
		}
		if seen[token] {
			t.Fatalf("URLSafeToken() produced duplicate token %q", token)
		}
		seen[token] = true
	}
}

func TestBackupCode(t *testing.T) {
	code, err := BackupCode()
	if err != nil {
		t.Fatalf("BackupCode() error = %v", err)
	}
	if len(code) != 8 {
		t.Errorf("BackupCode() length = %d, want 8", len(code))
	}
	if code != strings.ToUpper(code) {
		t.Errorf("BackupCode() = %q, want upper-case", code)
	}
}
