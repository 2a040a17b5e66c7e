package model

// Conversion outcomes, used as metric labels.
const (
	OutcomeConverted = "converted"
	OutcomeDuplicate = "duplicate"
	OutcomeRepaired  = "repaired"
	OutcomeRejected  = "rejected"
)
