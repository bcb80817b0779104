package models

import "testing"

func TestBuildClassKey(t *testing.T) {
	got := BuildClassKey("2023-2027", "2nd Year", 3, "A")
	want := "2023-2027|2nd Year|3|A"
	if got != want {
		t.Errorf("BuildClassKey = %q, want %q", got, want)
	}
}

func TestBuildClassDisplay(t *testing.T) {
	got := BuildClassDisplay("CSE", "2023-2027", "2nd Year", 3, "A")
	want := "CSE 2nd Year Sem 3 Section A (2023-2027)"
	if got != want {
		t.Errorf("BuildClassDisplay = %q, want %q", got, want)
	}
}

func TestClassAssignmentIsActive(t *testing.T) {
	a := ClassAssignment{Status: AssignmentActive}
	if !a.IsActive() {
		t.Error("ACTIVE entry should report active")
	}
	a.Status = AssignmentInactive
	if a.IsActive() {
		t.Error("INACTIVE entry should not report active")
	}
}
