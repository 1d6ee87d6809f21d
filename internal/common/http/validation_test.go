package http

import "testing"

func TestExtractPostIDFromPath(t *testing.T) {
	cases := []struct {
		path   string
		wantID string
		wantOK bool
	}{
		{"/api/posts/11111111-1111-1111-1111-111111111111", "11111111-1111-1111-1111-111111111111", true},
		{"/api/posts/abc", "abc", true},
		{"/api/posts/abc/extra", "abc", true},
		{"/api/posts/create", "", false},
		{"/api/posts/user", "", false},
		{"/api/posts/user/me", "", false},
		{"/api/posts/", "", false},
		{"/api/posts", "", false},
		{"/api/other/abc", "", false},
	}

	for _, tc := range cases {
		id, ok := ExtractPostIDFromPath(tc.path)
		if ok != tc.wantOK || id != tc.wantID {
			t.Errorf("ExtractPostIDFromPath(%q) = (%q, %v), want (%q, %v)", tc.path, id, ok, tc.wantID, tc.wantOK)
		}
	}
}

func TestValidateUUID(t *testing.T) {
	if err := ValidateUUID("11111111-1111-1111-1111-111111111111"); err != nil {
		t.Errorf("expected valid uuid accepted: %v", err)
	}
	if err := ValidateUUID(""); err == nil {
		t.Error("expected empty uuid rejected")
	}
	if err := ValidateUUID("not-a-uuid"); err == nil {
		t.Error("expected malformed uuid rejected")
	}
}
