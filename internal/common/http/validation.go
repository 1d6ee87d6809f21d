package http

import (
	"strings"

	"github.com/google/uuid"

	commonerrors "github.com/inklet-app/inklet/backend/internal/common/errors"
)

func ValidateUUID(s string) error {
	if s == "" {
		return commonerrors.ErrEmptyUUID
	}
	_, err := uuid.Parse(s)
	return err
}

// ExtractPostIDFromPath pulls the id segment out of /api/posts/{id} style
// paths, skipping the reserved sub-resources.
func ExtractPostIDFromPath(path string) (string, bool) {
	const prefix = "/api/posts/"

	if !strings.HasPrefix(path, prefix) {
		return "", false
	}

	remaining := strings.TrimPrefix(path, prefix)
	parts := strings.Split(remaining, "/")
	if len(parts) == 0 || parts[0] == "" {
		return "", false
	}

	switch parts[0] {
	case "create", "user":
		return "", false
	}

	return parts[0], true
}
