package canonical

import (
	"testing"
)

func TestMarshal_SortsMapKeys(t *testing.T) {
	a := map[string]interface{}{"zebra": 1, "alpha": 2, "mid": 3}
	b := map[string]interface{}{"mid": 3, "alpha": 2, "zebra": 1}

	dataA, err := Marshal(a)
	if err != nil {
		t.Fatalf("Marshal(a) error = %v, want nil", err)
	}
	dataB, err := Marshal(b)
	if err != nil {
		t.Fatalf("Marshal(b) error = %v, want nil", err)
	}

	if string(dataA) != string(dataB) {
		t.Errorf("canonical forms differ:\n  a = %s\n  b = %s", dataA, dataB)
	}
}

func TestHash_KeyOrderIndependent(t *testing.T) {
	type inner struct {
		Tokens map[string]int `json:"tokens"`
	}

	a := inner{Tokens: map[string]int{"x": 1, "y": 2, "z": 3}}
	b := inner{Tokens: map[string]int{"z": 3, "y": 2, "x": 1}}

	hashA, err := Hash(a)
	if err != nil {
		t.Fatalf("Hash(a) error = %v, want nil", err)
	}
	hashB, err := Hash(b)
	if err != nil {
		t.Fatalf("Hash(b) error = %v, want nil", err)
	}

	if hashA != hashB {
		t.Errorf("Hash(a) = %s, Hash(b) = %s, want equal", hashA, hashB)
	}
}

func TestHash_ChangesWithContent(t *testing.T) {
	hashA, err := Hash(map[string]string{"field": "value"})
	if err != nil {
		t.Fatalf("Hash() error = %v, want nil", err)
	}
	hashB, err := Hash(map[string]string{"field": "other"})
	if err != nil {
		t.Fatalf("Hash() error = %v, want nil", err)
	}

	if hashA == hashB {
		t.Error("hashes of different content are equal, want different")
	}
}

func TestHash_Stable(t *testing.T) {
	value := map[string]interface{}{
		"templateId": "ACME_PUMP_V1",
		"rules":      []string{"a", "b"},
	}

	first, err := Hash(value)
	if err != nil {
		t.Fatalf("Hash() error = %v, want nil", err)
	}

	for i := 0; i < 10; i++ {
		again, err := Hash(value)
		if err != nil {
			t.Fatalf("Hash() error = %v, want nil", err)
		}
		if again != first {
			t.Fatalf("Hash() = %s on run %d, want %s", again, i, first)
		}
	}
}

func TestHashBytes_Empty(t *testing.T) {
	if got := HashBytes(nil); got != "" {
		t.Errorf("HashBytes(nil) = %q, want empty string", got)
	}
}

func TestHashString(t *testing.T) {
	a := HashString("document text")
	b := HashString("document text")
	c := HashString("different text")

	if a != b {
		t.Errorf("HashString() not stable: %s vs %s", a, b)
	}
	if a == c {
		t.Error("HashString() of different inputs are equal, want different")
	}
	if len(a) != 64 {
		t.Errorf("HashString() length = %d, want 64 hex chars", len(a))
	}
}
