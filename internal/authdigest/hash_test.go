package authdigest

import "testing"

// TestDeterminism pins spec.md invariant 8 and scenario S2: the digest
// must be deterministic and case-insensitive on the email.
func TestDeterminism(t *testing.T) {
	a := Hash("p", "a@b")
	b := Hash("p", "A@B")
	if a != b {
		t.Fatalf("Hash not case-insensitive on email: %q != %q", a, b)
	}

	again := Hash("p", "a@b")
	if a != again {
		t.Fatalf("Hash not deterministic: %q != %q", a, again)
	}
}

func TestDifferentInputsProduceDifferentDigests(t *testing.T) {
	if Hash("p1", "a@b") == Hash("p2", "a@b") {
		t.Fatal("different passwords produced the same digest")
	}
	if Hash("p", "a@b") == Hash("p", "c@d") {
		t.Fatal("different emails produced the same digest")
	}
}
