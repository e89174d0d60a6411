package host

import (
	"fmt"

	"github.com/xlab/treeprint"
)

// ToTree renders the run as a tree: the chain at the root, one branch per
// amplifier.
func (run *AmplifierRun) ToTree() treeprint.Tree {
	mode := "linear"
	if run.Feedback {
		mode = "feedback"
	}
	tree := treeprint.New()
	tree.SetValue(fmt.Sprintf("amplifiers %s phases=%v signal=%d output=%d", mode, run.Phases, run.Signal, run.Output))
	for _, s := range run.Stages {
		branch := tree.AddBranch(fmt.Sprintf("%s phase=%d", s.Name, s.Phase))
		branch.AddNode(fmt.Sprintf("state: %s", s.State))
		branch.AddNode(fmt.Sprintf("steps: %d", s.Steps))
		branch.AddNode(fmt.Sprintf("outputs: %d last=%d", s.Outputs, s.Last))
		if s.Err != nil {
			branch.AddNode(fmt.Sprintf("error: %v", s.Err))
		}
	}
	return tree
}

// Report is the printable form of ToTree.
func (run *AmplifierRun) Report() string {
	return run.ToTree().String()
}
