package blockifier

// ExecutionFlags controls transaction execution behavior
type ExecutionFlags struct {
	OnlyQuery bool
	ChargeFee bool
	Validate  bool
	// LimitStepsByResourceBounds caps the steps an execution may take by what the sender's
	// committed fee can pay for.
	LimitStepsByResourceBounds bool
}

// DefaultExecutionFlags returns execution flags with standard settings
func DefaultExecutionFlags() ExecutionFlags {
	return ExecutionFlags{
		OnlyQuery:                  false,
		ChargeFee:                  true,
		Validate:                   true,
		LimitStepsByResourceBounds: true,
	}
}
