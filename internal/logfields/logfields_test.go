package logfields

import (
	"errors"
	"testing"
)

func TestAttrKeys(t *testing.T) {
	if got := Target("docs").Key; got != KeyTarget {
		t.Errorf("Target key = %q, want %q", got, KeyTarget)
	}
	if got := PlanID("x").Key; got != KeyPlanID {
		t.Errorf("PlanID key = %q, want %q", got, KeyPlanID)
	}
	if got := Deps(3).Value.Int64(); got != 3 {
		t.Errorf("Deps value = %d, want 3", got)
	}
}

func TestErrorAttr(t *testing.T) {
	if got := Error(nil).Value.String(); got != "" {
		t.Errorf("nil error value = %q, want empty", got)
	}
	if got := Error(errors.New("boom")).Value.String(); got != "boom" {
		t.Errorf("error value = %q, want boom", got)
	}
}
