// Package symbols resolves control flow labels for the decoded
// instruction stream. Label resolution runs after the full decode pass,
// a single forward pass could not see forward branch targets.
package symbols

import (
	"fmt"

	"github.com/retroenv/dosgodisasm/internal/x86"
	"github.com/retroenv/retrogolib/set"
)

// EntryLabelName is the reserved name of the program entry point label.
const EntryLabelName = "start"

// LabelType describes how a label target is reached.
type LabelType uint8

// Label types.
const (
	EntryLabel LabelType = iota + 1 // program entry point
	JumpLabel                      // reached by a jump
	FuncLabel                      // reached by a call
)

// Label assigns a symbolic name to a branch or call target offset.
type Label struct {
	Address uint16
	Name    string
	Type    LabelType
}

// Manager resolves and stores the labels of an instruction stream.
type Manager struct {
	labels     map[uint16]Label
	misaligned set.Set[uint16]
}

// New creates a new label manager.
func New() *Manager {
	return &Manager{
		labels:     map[uint16]Label{},
		misaligned: set.New[uint16](),
	}
}

// Resolve scans the complete instruction stream and assigns labels to
// all branch and call targets that land on an instruction start offset.
// Targets inside an instruction are recorded as misaligned, they are
// rendered as raw offsets since no instruction boundary exists to
// attach a label to. The entry offset always receives the reserved
// start label. Names are keyed on the target offset which makes them
// stable and collision free.
func (m *Manager) Resolve(instructions []x86.Instruction, entry uint16) {
	if len(instructions) == 0 {
		return
	}

	aligned := set.New[uint16]()
	for _, ins := range instructions {
		aligned.Add(ins.Address)
	}

	m.labels[entry] = Label{
		Address: entry,
		Name:    EntryLabelName,
		Type:    EntryLabel,
	}

	for _, ins := range instructions {
		if !ins.IsJump() && !ins.IsCall() {
			continue
		}
		target, ok := ins.BranchTarget()
		if !ok { // transfer through a register or memory operand
			continue
		}

		address := uint16(uint32(target) & 0xffff)
		if !aligned.Contains(address) {
			m.misaligned.Add(address)
			continue
		}
		if address == entry {
			continue // the entry label is reserved
		}

		m.add(address, ins.IsCall())
	}
}

// add creates or upgrades the label at the given address. Call targets
// use function naming, which wins if an offset is both jumped and
// called to.
func (m *Manager) add(address uint16, isCall bool) {
	existing, ok := m.labels[address]
	if ok && (existing.Type == FuncLabel || !isCall) {
		return
	}

	label := Label{Address: address}
	if isCall {
		label.Type = FuncLabel
		label.Name = fmt.Sprintf("func_%04x", address)
	} else {
		label.Type = JumpLabel
		label.Name = fmt.Sprintf("label_%04x", address)
	}
	m.labels[address] = label
}

// Lookup returns the label at the given address.
func (m *Manager) Lookup(address uint16) (Label, bool) {
	label, ok := m.labels[address]
	return label, ok
}

// IsMisaligned returns whether a branch targets the address but no
// instruction starts there.
func (m *Manager) IsMisaligned(address uint16) bool {
	return m.misaligned.Contains(address)
}

// Len returns the number of resolved labels.
func (m *Manager) Len() int {
	return len(m.labels)
}
