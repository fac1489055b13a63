package domain

// ReviewDecision is the outcome chosen by a human reviewer for a
// transfer held in BLOCKED_AML.
type ReviewDecision string

const (
	ReviewApprove ReviewDecision = "APPROVE"
	ReviewReject  ReviewDecision = "REJECT"
)

// Valid reports whether d is a known decision.
func (d ReviewDecision) Valid() bool {
	return d == ReviewApprove || d == ReviewReject
}
