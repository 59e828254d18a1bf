package assert

import (
	"testing"

	"github.com/iov-one/zkescrow/errors"
)

func TestIsErr(t *testing.T) {
	cases := map[string]struct {
		ErrWant  error
		ErrGot   error
		WantFail bool
	}{
		"same error": {
			ErrWant:  errors.ErrEmpty,
			ErrGot:   errors.ErrEmpty,
			WantFail: false,
		},
		"compared to nil": {
			ErrWant:  nil,
			ErrGot:   errors.ErrEmpty,
			WantFail: true,
		},
		"both nil": {
			ErrWant:  nil,
			ErrGot:   nil,
			WantFail: false,
		},
		"wrapped": {
			ErrWant:  errors.ErrEmpty,
			ErrGot:   errors.Wrap(errors.ErrEmpty, "test"),
			WantFail: false,
		},
		"different kind": {
			ErrWant:  errors.ErrEmpty,
			ErrGot:   errors.Wrap(errors.ErrNotFound, "test"),
			WantFail: true,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			mock := &tmock{TB: t}
			IsErr(mock, tc.ErrWant, tc.ErrGot)
			failed := mock.failcalls > 0
			if tc.WantFail != failed {
				t.Fatalf("unexpected failed call state: %d failures", mock.failcalls)
			}
		})
	}
}

func TestFieldError(t *testing.T) {
	cases := map[string]struct {
		Err      error
		Name     string
		Want     *errors.Error
		WantFail bool
	}{
		"match": {
			Err:  errors.Field("Seed", errors.ErrInvalidInput, "too long"),
			Name: "Seed",
			Want: errors.ErrInvalidInput,
		},
		"no error wanted": {
			Err:  errors.Field("Seed", errors.ErrInvalidInput, "too long"),
			Name: "Hash",
			Want: nil,
		},
		"kind mismatch": {
			Err:      errors.Field("Seed", errors.ErrInvalidInput, "too long"),
			Name:     "Seed",
			Want:     errors.ErrEmpty,
			WantFail: true,
		},
		"missing field": {
			Err:      nil,
			Name:     "Seed",
			Want:     errors.ErrEmpty,
			WantFail: true,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			mock := &tmock{TB: t}
			FieldError(mock, tc.Err, tc.Name, tc.Want)
			if failed := mock.failcalls > 0; failed != tc.WantFail {
				t.Fatalf("unexpected failed call state: %d failures", mock.failcalls)
			}
		})
	}
}

func TestNil(t *testing.T) {
	var nilMap map[string]int
	cases := map[string]struct {
		value    interface{}
		wantFail bool
	}{
		"nil":          {value: nil},
		"nil pointer":  {value: (*errors.Error)(nil)},
		"nil map":      {value: nilMap},
		"error":        {value: errors.ErrEmpty, wantFail: true},
		"zero number":  {value: 0, wantFail: true},
		"empty string": {value: "", wantFail: true},
		"empty slice":  {value: []byte{}, wantFail: true},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			mock := &tmock{TB: t}
			Nil(mock, tc.value)
			if failed := mock.failcalls > 0; failed != tc.wantFail {
				t.Fatalf("unexpected failed call state: %d failures", mock.failcalls)
			}
		})
	}
}

// tmock records failures instead of stopping the test.
type tmock struct {
	testing.TB
	failcalls int
}

func (t *tmock) Fatalf(s string, args ...interface{}) {
	t.failcalls++
}
