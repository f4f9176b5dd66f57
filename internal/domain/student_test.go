package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewStudent(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	student, err := NewStudent(id, 32.5)

	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if student.ID != id {
		t.Errorf("Expected ID %s, got %s", id, student.ID)
	}

	if student.OverallGrade != 32.5 {
		t.Errorf("Expected overall grade 32.5, got %v", student.OverallGrade)
	}

	if student.Status != StudentStatusUnmatched {
		t.Errorf("Expected status %s, got %s", StudentStatusUnmatched, student.Status)
	}

	if student.Rankings == nil || student.Statements == nil || student.StatementRatings == nil {
		t.Error("Expected maps to be initialized")
	}

	if student.CreatedAt.IsZero() || student.UpdatedAt.IsZero() {
		t.Error("Expected non-zero timestamps")
	}

	// Test invalid ID
	_, err = NewStudent(uuid.Nil, 30)
	if err != ErrStudentIDEmpty {
		t.Errorf("Expected error %v, got %v", ErrStudentIDEmpty, err)
	}

	// Test negative grade
	_, err = NewStudent(uuid.New(), -1)
	if err != ErrStudentGradeNegative {
		t.Errorf("Expected error %v, got %v", ErrStudentGradeNegative, err)
	}

	// Test grade above the 40-point scale
	_, err = NewStudent(uuid.New(), 40.5)
	if err != ErrStudentGradeTooHigh {
		t.Errorf("Expected error %v, got %v", ErrStudentGradeTooHigh, err)
	}
}

func TestStudentValidate(t *testing.T) {
	t.Parallel()

	student, err := NewStudent(uuid.New(), 28)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// A rank of zero is invalid; ranks start at 1.
	student.Rankings["commercial"] = 0
	if err := student.Validate(); err != ErrStudentRankInvalid {
		t.Errorf("Expected error %v, got %v", ErrStudentRankInvalid, err)
	}

	student.Rankings["commercial"] = 1
	if err := student.Validate(); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	student.Status = "graduated"
	if err := student.Validate(); err != ErrInvalidStudentStatus {
		t.Errorf("Expected error %v, got %v", ErrInvalidStudentStatus, err)
	}
}

func TestStudentUpdateStatus(t *testing.T) {
	t.Parallel()

	student, err := NewStudent(uuid.New(), 30)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	before := student.UpdatedAt

	if err := student.UpdateStatus(StudentStatusPending); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if student.Status != StudentStatusPending {
		t.Errorf("Expected status %s, got %s", StudentStatusPending, student.Status)
	}

	if student.UpdatedAt.Before(before) {
		t.Error("Expected UpdatedAt to advance")
	}

	if err := student.UpdateStatus("expelled"); err != ErrInvalidStudentStatus {
		t.Errorf("Expected error %v, got %v", ErrInvalidStudentStatus, err)
	}

	// Failed update must not change the status.
	if student.Status != StudentStatusPending {
		t.Errorf("Expected status to remain %s, got %s", StudentStatusPending, student.Status)
	}
}

func TestStudentStatusIsValid(t *testing.T) {
	t.Parallel()

	valid := []StudentStatus{StudentStatusUnmatched, StudentStatusPending, StudentStatusMatched}
	for _, status := range valid {
		if !status.IsValid() {
			t.Errorf("Expected status %s to be valid", status)
		}
	}

	invalid := []StudentStatus{"", "accepted", "Unmatched"}
	for _, status := range invalid {
		if status.IsValid() {
			t.Errorf("Expected status %q to be invalid", status)
		}
	}
}
