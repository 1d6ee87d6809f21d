package service

import (
	"testing"

	commonerrors "github.com/inklet-app/inklet/backend/internal/common/errors"
)

func TestValidatePostInput(t *testing.T) {
	v := newPostValidator()

	cases := []struct {
		name    string
		title   string
		content string
		wantErr bool
	}{
		{"five word title", "One Two Three Four Five", "some content here", false},
		{"eight word title", "One Two Three Four Five Six Seven Eight", "some content here", false},
		{"four word title", "One Two Three Four", "some content here", true},
		{"nine word title", "One Two Three Four Five Six Seven Eight Nine", "some content here", true},
		{"empty title", "", "some content here", true},
		{"empty content", "One Two Three Four Five", "", true},
		{"whitespace only title", "     ", "some content here", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validatePostInput(v, tc.title, tc.content)
			if tc.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidatePostInput_ContentWordLimit(t *testing.T) {
	v := newPostValidator()

	content := ""
	for i := 0; i < 100; i++ {
		content += "word "
	}

	if err := validatePostInput(v, "One Two Three Four Five", content); err != nil {
		t.Errorf("expected 100 words accepted: %v", err)
	}

	if err := validatePostInput(v, "One Two Three Four Five", content+"extra"); err == nil {
		t.Error("expected 101 words rejected")
	}
}

func TestValidatePostInput_ErrorIsBadRequest(t *testing.T) {
	v := newPostValidator()

	err := validatePostInput(v, "Too short", "some content here")

	de, ok := commonerrors.AsDomainError(err)
	if !ok {
		t.Fatalf("expected domain error, got %v", err)
	}
	if de.HTTPStatus() != 400 {
		t.Errorf("expected status 400, got %d", de.HTTPStatus())
	}
	if de.Code() != "VALIDATION_FAILED" {
		t.Errorf("expected VALIDATION_FAILED, got %s", de.Code())
	}
}
