package cutscene

// ResultAction is the tag of an Outcome.
type ResultAction int

const (
	// ResultContinue advances to the next action in the table.
	ResultContinue ResultAction = iota
	// ResultStop ends the current execution path.
	ResultStop
	// ResultJump transfers control to another index in the table.
	ResultJump
	// ResultRunOther hands execution off to another graph asset.
	ResultRunOther
)

func (ra ResultAction) String() string {
	switch ra {
	case ResultContinue:
		return "continue"
	case ResultStop:
		return "stop"
	case ResultJump:
		return "jump"
	case ResultRunOther:
		return "run_other"
	}
	return "unknown"
}

// Outcome is the resolved next step after an action completes.
// JumpTo is meaningful only for ResultJump, Target only for ResultRunOther.
type Outcome struct {
	Action ResultAction
	JumpTo int
	Target string
}

func Continue() Outcome { return Outcome{Action: ResultContinue} }

func Stop() Outcome { return Outcome{Action: ResultStop} }

func Jump(to int) Outcome { return Outcome{Action: ResultJump, JumpTo: to} }

func RunOther(target string) Outcome { return Outcome{Action: ResultRunOther, Target: target} }
