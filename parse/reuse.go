package parse

import "github.com/sylvanparse/sylvan/tree"

// reuser walks the edited previous tree in preorder, handing the
// parser reuse candidates. descend steps into a subtree that cannot be
// taken whole; advance skips past one that was consumed or rejected.
type reuser struct {
	cur   *tree.NodeData
	stack []reuseFrame
}

type reuseFrame struct {
	d   *tree.NodeData
	idx int
}

func newReuser(old *tree.Tree) *reuser {
	if old == nil || old.Root() == nil {
		return nil
	}
	return &reuser{cur: old.Root()}
}

func (r *reuser) current() *tree.NodeData { return r.cur }

func (r *reuser) descend() {
	cs := r.cur.Children()
	if len(cs) == 0 {
		r.advance()
		return
	}
	r.stack = append(r.stack, reuseFrame{d: r.cur})
	r.cur = cs[0]
}

func (r *reuser) advance() {
	for len(r.stack) > 0 {
		top := &r.stack[len(r.stack)-1]
		top.idx++
		if cs := top.d.Children(); top.idx < len(cs) {
			r.cur = cs[top.idx]
			return
		}
		r.stack = r.stack[:len(r.stack)-1]
	}
	r.cur = nil
}
