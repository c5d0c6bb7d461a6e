package board

import (
	"errors"
	"testing"

	"github.com/mtaverne/corkboard/internal/apperr"
)

func TestGenerateIDShape(t *testing.T) {
	seen := make(map[string]struct{})
	for range 200 {
		id := GenerateID()
		if !ValidID(id) {
			t.Fatalf("GenerateID() = %q, does not match pattern", id)
		}
		seen[id] = struct{}{}
	}
	// 200 draws from a 36^8 space colliding would mean a broken generator.
	if len(seen) < 190 {
		t.Errorf("generated ids collide heavily: %d unique of 200", len(seen))
	}
}

func TestValidID(t *testing.T) {
	cases := []struct {
		id   string
		want bool
	}{
		{"abcd1234", true},
		{"zzzzzzzz", true},
		{"00000000", true},
		{"", false},
		{"abc1234", false},   // too short
		{"abcd12345", false}, // too long
		{"ABCD1234", false},  // uppercase
		{"abcd-234", false},  // punctuation
		{"abcd123é", false},  // non-ascii
	}
	for _, tc := range cases {
		if got := ValidID(tc.id); got != tc.want {
			t.Errorf("ValidID(%q) = %v, want %v", tc.id, got, tc.want)
		}
	}
}

func TestValidateIDError(t *testing.T) {
	if err := ValidateID("abcd1234"); err != nil {
		t.Fatalf("ValidateID(valid) = %v", err)
	}
	err := ValidateID("nope")
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("ValidateID(invalid) = %v, want ErrValidation", err)
	}
}

func TestAllocateIDSkipsTaken(t *testing.T) {
	taken := map[string]bool{}
	var first string
	id, err := AllocateID(func(candidate string) (bool, error) {
		if first == "" {
			// Pretend the first draw is already in use.
			first = candidate
			taken[candidate] = true
			return true, nil
		}
		return taken[candidate], nil
	})
	if err != nil {
		t.Fatalf("AllocateID: %v", err)
	}
	if id == first {
		t.Errorf("allocated id %q was reported as taken", id)
	}
	if !ValidID(id) {
		t.Errorf("allocated id %q does not match pattern", id)
	}
}

func TestAllocateIDExhaustion(t *testing.T) {
	_, err := AllocateID(func(string) (bool, error) { return true, nil })
	if !errors.Is(err, apperr.ErrIDSpaceExhausted) {
		t.Errorf("err = %v, want ErrIDSpaceExhausted", err)
	}
}

func TestAllocateIDPropagatesCheckError(t *testing.T) {
	boom := errors.New("db gone")
	_, err := AllocateID(func(string) (bool, error) { return false, boom })
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped %v", err, boom)
	}
}
