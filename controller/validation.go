package controller

import (
	"errors"
	"strings"

	"github.com/meghashyamc/wheresthat-client/api"
	"github.com/meghashyamc/wheresthat-client/validation"
)

func toValidationError(err error) error {
	var fieldErr *validation.FieldError
	if errors.As(err, &fieldErr) {
		return &api.ValidationError{Field: fieldErr.Field, Reason: fieldErr.Reason}
	}
	return &api.ValidationError{Reason: err.Error()}
}

// validateExcludeFolders applies the backend rule to the raw strings so a bad
// request never leaves the client.
func validateExcludeFolders(path string, excludeFolders []string) error {
	for _, folder := range excludeFolders {
		if folder == path {
			return &api.ValidationError{Field: "exclude_folders", Reason: "path to exclude cannot be the same as index path"}
		}
		if !strings.HasPrefix(folder, path) {
			return &api.ValidationError{Field: "exclude_folders", Reason: "path to exclude must begin with the index path"}
		}
	}
	return nil
}

func trimAll(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	trimmed := make([]string, 0, len(values))
	for _, value := range values {
		trimmed = append(trimmed, strings.TrimSpace(value))
	}
	return trimmed
}
