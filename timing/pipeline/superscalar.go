package pipeline

// IssuePolicy selects how the issue scan treats a stalled instruction.
type IssuePolicy uint8

const (
	// IssueInOrder stops the scan at the first instruction that cannot
	// issue. No younger instruction overtakes a stalled older one.
	IssueInOrder IssuePolicy = iota

	// IssueSkipBlocked lets a younger instruction overtake a stalled
	// older one when the two share no register in any direction.
	IssueSkipBlocked
)

func (p IssuePolicy) String() string {
	switch p {
	case IssueInOrder:
		return "in-order"
	case IssueSkipBlocked:
		return "skip-blocked"
	default:
		return "unknown"
	}
}

// ParseIssuePolicy converts a policy name to an IssuePolicy.
func ParseIssuePolicy(name string) (IssuePolicy, bool) {
	switch name {
	case "in-order", "inorder", "":
		return IssueInOrder, true
	case "skip-blocked", "skip":
		return IssueSkipBlocked, true
	default:
		return IssueInOrder, false
	}
}

// WithIssueWidth sets how many instructions may issue per cycle.
func WithIssueWidth(width int) PipelineOption {
	return func(p *Pipeline) {
		p.config.IssueWidth = width
	}
}

// WithDecodeWidth sets how many instructions may decode per cycle.
func WithDecodeWidth(width int) PipelineOption {
	return func(p *Pipeline) {
		p.config.DecodeWidth = width
	}
}

// WithLanes sets the number of fetch lanes.
func WithLanes(lanes int) PipelineOption {
	return func(p *Pipeline) {
		p.config.Lanes = lanes
	}
}

// WithIssuePolicy selects the issue policy.
func WithIssuePolicy(policy IssuePolicy) PipelineOption {
	return func(p *Pipeline) {
		p.config.IssuePolicy = policy
	}
}

// WithUnits sets the number of ALU and branch unit slots.
func WithUnits(alus, branchUnits int) PipelineOption {
	return func(p *Pipeline) {
		p.config.NumALUs = alus
		p.config.NumBranchUnits = branchUnits
	}
}
