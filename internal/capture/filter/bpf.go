// Package filter builds the classic BPF program attached to the capture
// socket. It is a throughput filter only: the userspace classifier repeats
// every check, so a frame the kernel lets through by mistake still gets
// classified correctly.
package filter

import (
	"fmt"

	"golang.org/x/net/bpf"
)

// Program returns the cBPF instructions matching 802.1Q-tagged IPv4
// frames, optionally restricted to one VLAN id (vid 0 matches any).
// Assumes the driver leaves the tag in the frame (true for veth/tap and
// NICs with rx VLAN offload disabled, the usual TSN bench setup):
//   - ethertype at offset 12 must be 0x8100
//   - TCI at offset 14: low 12 bits must equal vid, when vid > 0
//   - inner ethertype at offset 16 must be 0x0800
func Program(vid int) []bpf.Instruction {
	if vid > 0 {
		return []bpf.Instruction{
			bpf.LoadAbsolute{Off: 12, Size: 2},                          // outer ethertype
			bpf.JumpIf{Cond: bpf.JumpEqual, Val: 0x8100, SkipFalse: 6},  // tagged? else drop
			bpf.LoadAbsolute{Off: 14, Size: 2},                          // TCI
			bpf.ALUOpConstant{Op: bpf.ALUOpAnd, Val: 0x0FFF},            // keep VID bits
			bpf.JumpIf{Cond: bpf.JumpEqual, Val: uint32(vid), SkipFalse: 3},
			bpf.LoadAbsolute{Off: 16, Size: 2},                          // inner ethertype
			bpf.JumpIf{Cond: bpf.JumpEqual, Val: 0x0800, SkipFalse: 1},  // IPv4? else drop
			bpf.RetConstant{Val: 0xFFFF},                                // accept
			bpf.RetConstant{Val: 0},                                     // drop
		}
	}
	return []bpf.Instruction{
		bpf.LoadAbsolute{Off: 12, Size: 2},
		bpf.JumpIf{Cond: bpf.JumpEqual, Val: 0x8100, SkipFalse: 3},
		bpf.LoadAbsolute{Off: 16, Size: 2},
		bpf.JumpIf{Cond: bpf.JumpEqual, Val: 0x0800, SkipFalse: 1},
		bpf.RetConstant{Val: 0xFFFF},
		bpf.RetConstant{Val: 0},
	}
}

// Assemble compiles the program for attachment via SetBPF.
func Assemble(vid int) ([]bpf.RawInstruction, error) {
	raw, err := bpf.Assemble(Program(vid))
	if err != nil {
		return nil, fmt.Errorf("assembling VLAN filter: %w", err)
	}
	return raw, nil
}
