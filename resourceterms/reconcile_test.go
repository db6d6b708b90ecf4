package resourceterms

import (
	"reflect"
	"testing"
)

func TestDiff_AddAndRemove(t *testing.T) {
	toAdd, toRemove := Diff([]int64{11, 12}, []int64{10, 11})

	if !reflect.DeepEqual(toAdd, []int64{12}) {
		t.Errorf("expected toAdd [12], got %v", toAdd)
	}
	if !reflect.DeepEqual(toRemove, []int64{10}) {
		t.Errorf("expected toRemove [10], got %v", toRemove)
	}
}

func TestDiff_Idempotent(t *testing.T) {
	toAdd, toRemove := Diff([]int64{11, 12}, []int64{12, 11})

	if len(toAdd) != 0 {
		t.Errorf("expected no additions for identical sets, got %v", toAdd)
	}
	if len(toRemove) != 0 {
		t.Errorf("expected no removals for identical sets, got %v", toRemove)
	}
}

func TestDiff_DuplicatesCollapse(t *testing.T) {
	toAdd, toRemove := Diff([]int64{5, 5, 7}, []int64{7, 7})

	if !reflect.DeepEqual(toAdd, []int64{5}) {
		t.Errorf("expected toAdd [5], got %v", toAdd)
	}
	if len(toRemove) != 0 {
		t.Errorf("expected no removals, got %v", toRemove)
	}
}

func TestDiff_EmptyStored(t *testing.T) {
	toAdd, toRemove := Diff([]int64{3, 1, 2}, nil)

	if !reflect.DeepEqual(toAdd, []int64{1, 2, 3}) {
		t.Errorf("expected sorted additions [1 2 3], got %v", toAdd)
	}
	if len(toRemove) != 0 {
		t.Errorf("expected no removals, got %v", toRemove)
	}
}

func TestDiff_EmptyRequested(t *testing.T) {
	toAdd, toRemove := Diff(nil, []int64{4, 2})

	if len(toAdd) != 0 {
		t.Errorf("expected no additions, got %v", toAdd)
	}
	if !reflect.DeepEqual(toRemove, []int64{2, 4}) {
		t.Errorf("expected sorted removals [2 4], got %v", toRemove)
	}
}
