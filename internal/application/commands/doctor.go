package commands

import (
	"context"

	"oot/internal/hierarchy"
)

// DoctorResult lists the invariant violations found in the cache
type DoctorResult struct {
	Violations []hierarchy.Violation
	Healthy    bool
}

// DoctorCommand verifies the consistency of the hierarchy cache
type DoctorCommand struct {
	checker Checker
}

// NewDoctorCommand creates a new DoctorCommand
func NewDoctorCommand(checker Checker) *DoctorCommand {
	return &DoctorCommand{checker: checker}
}

// Execute runs the check
func (c *DoctorCommand) Execute(ctx context.Context) (*DoctorResult, error) {
	violations := c.checker.Check()
	return &DoctorResult{Violations: violations, Healthy: len(violations) == 0}, nil
}
