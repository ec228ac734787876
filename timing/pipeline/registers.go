// Package pipeline provides the scalar frontend: multi-lane fetch, decode
// and scoreboard-gated dispatch onto latency-bearing execution units.
package pipeline

import "github.com/sarchlab/rvscalar/insts"

// FetchedInst is a raw word travelling from fetch to decode.
type FetchedInst struct {
	// Seq is the program-order sequence number.
	Seq uint64

	// PC is the byte address the word was fetched from.
	PC uint32

	// Word is the undecoded instruction.
	Word uint32
}

// DecodedInst is a decoded instruction travelling from decode to the
// execution units.
type DecodedInst struct {
	// Seq is the program-order sequence number.
	Seq uint64

	// PC is the byte address the word was fetched from.
	PC uint32

	// Inst is the decoded instruction.
	Inst *insts.Instruction
}
