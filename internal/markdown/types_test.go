package markdown

import "testing"

func TestRelationType_InverseIsReciprocal(t *testing.T) {
	tests := []struct {
		rt   RelationType
		want RelationType
	}{
		{RelationParentOf, RelationChildOf},
		{RelationChildOf, RelationParentOf},
		{RelationSupports, RelationContradict},
		{RelationContradict, RelationSupports},
		{RelationDependsOn, RelationReferences},
		{RelationReferences, RelationDependsOn},
		{RelationExtends, RelationRelatedTo},
		{RelationImplements, RelationRelatedTo},
		{RelationExampleOf, RelationRelatedTo},
		{RelationRelatedTo, RelationRelatedTo},
	}

	for _, tt := range tests {
		if got := tt.rt.Inverse(); got != tt.want {
			t.Errorf("%s.Inverse() = %s, want %s", tt.rt, got, tt.want)
		}
	}
}

func TestComputeID_DeterministicAndPrefixed(t *testing.T) {
	hash1, id1 := computeID("Title", "Body", "Category", []string{"b", "a"})
	hash2, id2 := computeID("Title", "Body", "Category", []string{"a", "b"})

	if hash1 != hash2 || id1 != id2 {
		t.Error("computeID not order-independent for tags")
	}
	if len(hash1) != 16 {
		t.Errorf("hash length = %d, want 16", len(hash1))
	}
	if id1 != "note_"+hash1 {
		t.Errorf("id = %q, want note_ + hash", id1)
	}
}
