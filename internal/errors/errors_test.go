package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: "",
		},
		{
			name:     "simple error",
			err:      errors.New("something went wrong"),
			expected: "Error: something went wrong",
		},
		{
			name:     "validation error",
			err:      Validation("name", "must not be empty"),
			expected: "Error: invalid name: must not be empty",
		},
		{
			name:     "not found error",
			err:      NotFound("habit", "abc"),
			expected: `Error: habit "abc" not found`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Format(tt.err)
			if result != tt.expected {
				t.Errorf("Format(%v) = %q, want %q", tt.err, result, tt.expected)
			}
		})
	}
}

func TestFormatf(t *testing.T) {
	got := Formatf("failed to load %s", "database")
	if got != "Error: failed to load database" {
		t.Errorf("Formatf() = %q", got)
	}
}

func TestKindPredicates(t *testing.T) {
	cause := errors.New("disk full")
	persistence := Persistence("upsert log", cause)

	tests := []struct {
		name        string
		err         error
		validation  bool
		notFound    bool
		persistence bool
	}{
		{"validation", Validation("title", "required"), true, false, false},
		{"wrapped not found", fmt.Errorf("archive: %w", NotFound("habit", "x")), false, true, false},
		{"persistence", persistence, false, false, true},
		{"plain", cause, false, false, false},
		{"nil", nil, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidation(tt.err); got != tt.validation {
				t.Errorf("IsValidation() = %v, want %v", got, tt.validation)
			}
			if got := IsNotFound(tt.err); got != tt.notFound {
				t.Errorf("IsNotFound() = %v, want %v", got, tt.notFound)
			}
			if got := IsPersistence(tt.err); got != tt.persistence {
				t.Errorf("IsPersistence() = %v, want %v", got, tt.persistence)
			}
		})
	}

	if !errors.Is(persistence, cause) {
		t.Error("PersistenceError should unwrap to its cause")
	}
}

func TestPersistenceKeepsKinds(t *testing.T) {
	nf := NotFound("milestone", "m1")
	if got := Persistence("delete milestone", nf); got != nf {
		t.Errorf("Persistence() rewrapped a NotFoundError: %v", got)
	}
	if Persistence("noop", nil) != nil {
		t.Error("Persistence(nil) should be nil")
	}
}
