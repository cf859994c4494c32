/* Released under an MIT-style license. See LICENSE. */

package main

import (
	"bufio"
	"fmt"
	"io"
)

// safepointReserve is the number of free nursery cells the evaluator
// guarantees are available at each of its two declared safepoints. A
// single eval/apply step allocates at most two cells; the margin beyond
// that (mirroring the original interpreter's own GC_MARGIN) absorbs the
// handful of apply-to-apply rewrite chains (S2->apply, C2->apply, T1's
// swap-and-reapply, V2's two-step application) that run between one
// declared safepoint and the next without a safepoint of their own.
const safepointReserve = 8

// Evaluator is the four-register state machine: val and op drive a
// single eval/apply step, task/taskVal hold the top continuation frame
// out of the heap for speed, and nextCont is the rest of the spine, a
// heap-allocated linked list of frame cells.
type Evaluator struct {
	heap *Heap

	val, op            *Cell
	task               Tag
	taskVal, nextCont  *Cell

	in  *bufio.Reader
	out *bufio.Writer

	haveByte    bool
	currentByte byte

	verbosity int
}

// NewEvaluator wires an evaluator to the heap it allocates from and the
// input/output streams the @ ? | and . operators observe.
func NewEvaluator(heap *Heap, in *bufio.Reader, out *bufio.Writer, verbosity int) *Evaluator {
	return &Evaluator{heap: heap, in: in, out: out, verbosity: verbosity}
}

func (e *Evaluator) safepoint() {
	if e.heap.Available(safepointReserve) {
		return
	}

	roots := []*Cell{e.val, e.taskVal, e.nextCont, e.op}
	roots = e.heap.MinorGC(roots)
	e.val, e.taskVal, e.nextCont, e.op = roots[0], roots[1], roots[2], roots[3]
}

// pushCont saves the current top frame (task, nextCont, taskVal) as a
// heap cell prepended to the spine, then installs newTask/newVal as the
// new top frame. This is the interpreter's PUSHCONT.
func (e *Evaluator) pushCont(newTask Tag, newVal *Cell) {
	frame := e.heap.AllocYoung(e.task)
	frame.l = e.nextCont
	frame.r = e.taskVal

	e.nextCont = frame
	e.task = newTask
	e.taskVal = newVal
}

// popCont restores the top frame from the head of the spine. This is
// POPCONT.
func (e *Evaluator) popCont() {
	e.task = e.nextCont.t
	e.taskVal = e.nextCont.r
	e.nextCont = e.nextCont.l
}

// Run evaluates root to completion, performing its I/O as a side effect.
// It returns once the continuation spine reaches EXIT: via `e`, via the
// initial EXIT frame being restored by a first-class continuation, or by
// running off the end of the top-level expression.
func (e *Evaluator) Run(root *Cell) {
	e.val = root
	e.op = nil
	e.task = Exit
	e.taskVal = nil
	e.nextCont = nil

	goto evalStep

evalStep:
	for {
		e.safepoint()
		if e.val.t != AP {
			goto dispatch
		}
		e.pushCont(EvalRight, e.val.r)
		e.val = e.val.l
	}

dispatch:
	for {
		switch e.task {
		case EvalRight:
			rand := e.taskVal
			if e.val.t == D {
				d1 := e.heap.AllocYoung(D1)
				d1.l = rand
				e.val = d1
				e.popCont()
				continue
			}

			savedOp := e.val
			e.task = Apply
			e.taskVal = savedOp
			e.val = rand
			goto evalStep

		case EvalRightS:
			pair := e.taskVal
			if e.val.t == D {
				d1 := e.heap.AllocYoung(D1)
				d1.l = pair
				e.val = d1
				e.popCont()
				continue
			}

			savedResult := e.val
			e.task = Apply
			e.taskVal = savedResult
			e.op = pair.l
			e.val = pair.r
			goto applyStep

		case Apply:
			e.op = e.taskVal
			e.popCont()
			goto applyStep

		case ApplyT:
			newOp := e.val
			e.val = e.taskVal
			e.popCont()
			e.op = newOp
			goto applyStep

		case Exit:
			if e.out != nil {
				e.out.Flush()
			}
			return

		default:
			panic(fmt.Sprintf("unlambda: [BUG] invalid continuation frame %q", tagName(e.task)))
		}
	}

applyStep:
	e.safepoint()

	switch e.op.t {
	case I:
		// val unchanged

	case DOT:
		e.writeByte(e.op.ch)

	case K:
		k1 := e.heap.AllocYoung(K1)
		k1.l = e.val
		e.val = k1

	case K1:
		e.val = e.op.l

	case S:
		if e.val.t == K1 {
			b1 := e.heap.AllocYoung(B1)
			b1.l = e.val.l
			e.val = b1
		} else {
			s1 := e.heap.AllocYoung(S1)
			s1.l = e.val
			e.val = s1
		}

	case S1:
		if e.val.t == K1 {
			switch e.op.l.t {
			case I:
				t1 := e.heap.AllocYoung(T1)
				t1.l = e.val.l
				e.val = t1
			case T1:
				v2 := e.heap.AllocYoung(V2)
				v2.l = e.op.l.l
				v2.r = e.val.l
				e.val = v2
			default:
				c2 := e.heap.AllocYoung(C2)
				c2.l = e.op.l
				c2.r = e.val.l
				e.val = c2
			}
		} else {
			s2 := e.heap.AllocYoung(S2)
			s2.l = e.op.l
			s2.r = e.val
			e.val = s2
		}

	case B1:
		b2 := e.heap.AllocYoung(B2)
		b2.l = e.op.l
		b2.r = e.val
		e.val = b2

	case T1:
		newOp := e.val
		e.val = e.op.l
		e.op = newOp
		goto applyStep

	case S2:
		pair := e.heap.AllocYoung(AP)
		pair.l = e.op.r
		pair.r = e.val
		e.pushCont(EvalRightS, pair)
		e.op = e.op.l
		goto applyStep

	case B2:
		if e.op.l.t == D {
			ap := e.heap.AllocYoung(AP)
			ap.l = e.op.r
			ap.r = e.val
			d1 := e.heap.AllocYoung(D1)
			d1.l = ap
			e.val = d1
		} else {
			e.pushCont(Apply, e.op.l)
			e.op = e.op.r
			goto applyStep
		}

	case C2:
		e.pushCont(ApplyT, e.op.r)
		e.op = e.op.l
		goto applyStep

	case V2:
		x, y, z := e.op.l, e.op.r, e.val
		e.pushCont(ApplyT, y)
		e.op = z
		e.val = x
		goto applyStep

	case V:
		e.val = e.op

	case D:
		d1 := e.heap.AllocYoung(D1)
		d1.l = e.val
		e.val = d1

	case D1:
		e.pushCont(ApplyT, e.val)
		e.val = e.op.l
		goto evalStep

	case C:
		e.pushCont(Apply, e.val)
		cont := e.heap.AllocYoung(CONT)
		cont.l = e.nextCont
		e.val = cont

	case CONT:
		e.nextCont = e.op.l
		e.popCont()

	case E:
		e.task = Exit

	case AT:
		b, ok := e.readByte()
		e.haveByte = ok
		if ok {
			e.currentByte = b
		}
		e.pushCont(Apply, e.val)
		if ok {
			e.val = e.heap.AllocYoung(I)
		} else {
			e.val = e.heap.AllocYoung(V)
		}

	case QUES:
		e.pushCont(Apply, e.val)
		if e.haveByte && e.currentByte == e.op.ch {
			e.val = e.heap.AllocYoung(I)
		} else {
			e.val = e.heap.AllocYoung(V)
		}

	case PIPE:
		e.pushCont(Apply, e.val)
		if !e.haveByte {
			e.val = e.heap.AllocYoung(V)
		} else {
			dot := e.heap.AllocYoung(DOT)
			dot.ch = e.currentByte
			e.val = dot
		}

	default:
		panic(fmt.Sprintf("unlambda: [BUG] invalid operator tag %q", tagName(e.op.t)))
	}

	goto dispatch
}

func (e *Evaluator) writeByte(b byte) {
	if e.out == nil {
		return
	}
	if err := e.out.WriteByte(b); err != nil {
		panic(fmt.Sprintf("unlambda: write error: %v", err))
	}
}

func (e *Evaluator) readByte() (byte, bool) {
	if e.in == nil {
		return 0, false
	}
	b, err := e.in.ReadByte()
	if err != nil {
		if err != io.EOF {
			panic(fmt.Sprintf("unlambda: read error: %v", err))
		}
		return 0, false
	}
	return b, true
}
