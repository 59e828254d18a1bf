package errors

import (
	"testing"
)

func TestFieldErrors(t *testing.T) {
	cases := map[string]struct {
		err       error
		fieldName string
		want      int
	}{
		"nil error": {
			err:       nil,
			fieldName: "Seed",
			want:      0,
		},
		"single field error": {
			err:       Field("Seed", ErrInvalidInput, "too long"),
			fieldName: "Seed",
			want:      1,
		},
		"field name mismatch": {
			err:       Field("Seed", ErrInvalidInput, "too long"),
			fieldName: "Hash",
			want:      0,
		},
		"wrapped field error": {
			err:       Wrap(Field("Seed", ErrInvalidInput, "too long"), "initialize"),
			fieldName: "Seed",
			want:      1,
		},
		"multiple field errors": {
			err: Append(
				Field("Seed", ErrInvalidInput, "too long"),
				Field("Hash", ErrInvalidInput, "too short"),
				Field("Seed", ErrEmpty, "required"),
			),
			fieldName: "Seed",
			want:      2,
		},
		"append field skips nil": {
			err:       AppendField(nil, "Seed", nil),
			fieldName: "Seed",
			want:      0,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			if got := FieldErrors(tc.err, tc.fieldName); len(got) != tc.want {
				t.Fatalf("want %d errors, got %d: %v", tc.want, len(got), got)
			}
		})
	}
}

func TestFieldErrorMessage(t *testing.T) {
	err := Field("Amount", ErrOverflow, "%d + %d", 1, 2)
	want := `field "Amount": 1 + 2: an operation cannot be completed due to value overflow`
	if err.Error() != want {
		t.Fatalf("want %q, got %q", want, err.Error())
	}
}
