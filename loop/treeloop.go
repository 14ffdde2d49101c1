// Package loop implements a stateful, iterative depth-first traversal over
// an implicit octree in SFC order, exposing a pre-order/post-order stepping
// interface to an operator layer. Unlike the templated original this walks
// over, per-subtree Input/Output buffers are untyped ([]any) slices: this
// module has no other generic-over-type machinery (TreeNode/TNPoint use a
// runtime Dim field rather than a type parameter), so the tree loop follows
// the same convention instead of introducing the only generic type in the
// module. The stack is a slice of *Frame rather than Frame-by-value, so
// growing it never relocates an already-pushed Frame the way a by-value
// growable array would — no pre-reservation is needed to keep parent
// pointers stable.
package loop

import (
	"github.com/notargets/adaptoct/hcurve"
	"github.com/notargets/adaptoct/octree"
)

// ExtantMask is a bitmask over Morton child indices: bit m set means child
// m's subtree is non-empty and should be descended into.
type ExtantMask uint16

// Has reports whether Morton child m is marked extant.
func (e ExtantMask) Has(m int) bool { return e&(1<<uint(m)) != 0 }

// Visitor is the customization surface a consumer of the tree loop
// implements: the four hooks that drive data down to children and back up
// to the parent at each level of the descent.
type Visitor interface {
	// TopDownNodes runs before descending: resize child input buffers via
	// parent.SetChildInput, distribute parent.Input among them, and return
	// the mask of children to descend into. May not write parent.Output or
	// parent.Input itself.
	TopDownNodes(parent *Frame) ExtantMask

	// BottomUpNodes runs after all of extant's children have returned:
	// resize parent.Output and merge extant children's outputs
	// (parent.ChildOutput) into it.
	BottomUpNodes(parent *Frame, extant ExtantMask)

	// Parent2Child runs on entry to child: e.g. apply parent-to-child
	// interpolation so hanging nodes in child.Input have values.
	Parent2Child(parent, child *Frame)

	// Child2Parent runs on exit from child, before it is popped: e.g.
	// apply the transpose of Parent2Child's interpolation, writing into
	// parent.SetChildOutput(child.ChildMorton(), ...).
	Child2Parent(parent, child *Frame)
}

// Frame is one level of the traversal stack: the octant currently visited,
// its rotation state, and the Input/Output buffers the visitor reads and
// writes for it.
type Frame struct {
	Input  []any
	Output []any

	parent      *Frame
	subtree     octree.TreeNode
	isPre       bool
	pRot        hcurve.RotID
	childSFC    int // this frame's own SFC-order index among its siblings
	childMorton int // this frame's own Morton index among its siblings

	extant    ExtantMask
	numExtant int

	childInput  [][]any
	childOutput [][]any
}

// ChildMorton returns the Morton index this frame occupies among its
// parent's children, for use in Child2Parent (e.g.
// parent.SetChildOutput(child.ChildMorton(), ...)). Meaningless on the
// root frame.
func (f *Frame) ChildMorton() int { return f.childMorton }

// Subtree returns the octant this frame represents.
func (f *Frame) Subtree() octree.TreeNode { return f.subtree }

// IsPre reports whether this frame is still in its pre-order visit (true)
// or has returned from descending into its children (false).
func (f *Frame) IsPre() bool { return f.isPre }

// NumChildren returns 2^Dim for this frame's subtree.
func (f *Frame) NumChildren() int { return f.subtree.NumChildren() }

// ChildInput returns the input buffer staged for Morton child m, as set by
// a prior call to SetChildInput.
func (f *Frame) ChildInput(m int) []any { return f.childInput[m] }

// SetChildInput stages the input buffer for Morton child m; must be called
// from TopDownNodes before that child's frame is constructed.
func (f *Frame) SetChildInput(m int, v []any) { f.childInput[m] = v }

// ChildOutput returns the output buffer Morton child m's Child2Parent call
// wrote into.
func (f *Frame) ChildOutput(m int) []any { return f.childOutput[m] }

// SetChildOutput stores the output buffer for Morton child m; called from
// Child2Parent.
func (f *Frame) SetChildOutput(m int, v []any) { f.childOutput[m] = v }

// TreeLoop is the stateful SFC-order DFS iterator.
type TreeLoop struct {
	dim     int
	visitor Visitor
	stack   []*Frame
}

// NewTreeLoop builds a loop rooted at root, with rootInput as the root
// frame's Input buffer. hcurve.InitHcurve(dim) must already have been
// called.
func NewTreeLoop(dim int, root octree.TreeNode, visitor Visitor, rootInput []any) *TreeLoop {
	nc := 1 << dim
	l := &TreeLoop{dim: dim, visitor: visitor}
	l.stack = make([]*Frame, 0, 1+nc)
	l.stack = append(l.stack, &Frame{
		Input:       rootInput,
		subtree:     root,
		isPre:       true,
		pRot:        0,
		childInput:  make([][]any, nc),
		childOutput: make([][]any, nc),
	})
	return l
}

func (l *TreeLoop) top() *Frame { return l.stack[len(l.stack)-1] }

// Step advances the traversal by one unit: if the current frame is
// pre-order, it descends (running TopDownNodes, pushing every extant
// child); if post-order, it behaves like Next. Returns IsPre() after the
// move, mirroring the original's "step to enter, or skip" contract.
func (l *TreeLoop) Step() bool {
	top := l.top()
	if !top.isPre {
		return l.Next()
	}

	nc := 1 << l.dim
	top.isPre = false
	extant := l.visitor.TopDownNodes(top)
	top.extant = extant
	top.numExtant = 0

	tables := hcurve.Active()
	if tables == nil {
		panic("loop: hcurve tables not initialized")
	}

	// Push extant children in reverse SFC order, so SFC-order child 0 ends
	// up on top of the stack.
	for rev := 0; rev < nc; rev++ {
		childSFC := nc - 1 - rev
		childM := int(tables.SFCToMorton(top.pRot, hcurve.ChildID(childSFC)))
		if !extant.Has(childM) {
			continue
		}
		cRot := tables.ChildRotation(top.pRot, hcurve.ChildID(childM))
		child := &Frame{
			Input:       top.childInput[childM],
			parent:      top,
			subtree:     top.subtree.GetChildMorton(childM),
			isPre:       true,
			pRot:        cRot,
			childSFC:    childSFC,
			childMorton: childM,
			childInput:  make([][]any, nc),
			childOutput: make([][]any, nc),
		}
		l.stack = append(l.stack, child)
		top.numExtant++
	}

	if top.numExtant > 0 {
		l.visitor.Parent2Child(top, l.top())
	} else {
		l.visitor.BottomUpNodes(top, top.extant)
	}
	return l.IsPre()
}

// Next skips past the current frame without descending (if pre-order), or
// returns to the parent level (if post-order, having already descended).
func (l *TreeLoop) Next() bool {
	if len(l.stack) > 1 {
		child := l.stack[len(l.stack)-1]
		parent := child.parent
		l.visitor.Child2Parent(parent, child)
		l.stack = l.stack[:len(l.stack)-1]

		newTop := l.top()
		if newTop.isPre {
			l.visitor.Parent2Child(parent, newTop)
		} else {
			l.visitor.BottomUpNodes(newTop, newTop.extant)
		}
	} else {
		l.top().isPre = false
	}
	return l.IsPre()
}

// IsPre reports whether the current top frame is in its pre-order visit.
func (l *TreeLoop) IsPre() bool { return l.top().isPre }

// IsFinished reports whether the traversal has returned all the way to the
// root's post-order visit.
func (l *TreeLoop) IsFinished() bool {
	return len(l.stack) == 1 && !l.top().isPre
}

// CurrentFrame returns the frame currently being visited.
func (l *TreeLoop) CurrentFrame() *Frame { return l.top() }

// CurrentSubtree returns the octant currently being visited.
func (l *TreeLoop) CurrentSubtree() octree.TreeNode { return l.top().subtree }
