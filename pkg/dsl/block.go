package dsl

import "github.com/aretw0/weft/pkg/domain"

type stmt struct {
	id     domain.StmtID
	kind   domain.StmtKind
	target string
	value  domain.Expr
	cond   domain.Expr
	then   *Block
	els    *Block
}

// Block is a sequence of statements executed in order.
type Block struct {
	stmts []*stmt
}

// Assign appends `target := value`.
func (b *Block) Assign(target string, value domain.Expr) *Block {
	b.stmts = append(b.stmts, &stmt{kind: domain.StmtAssign, target: target, value: value})
	return b
}

// Reply appends a reply statement.
func (b *Block) Reply(value domain.Expr) *Block {
	b.stmts = append(b.stmts, &stmt{kind: domain.StmtReply, value: value})
	return b
}

// If appends a conditional. Either branch builder may be nil.
func (b *Block) If(cond domain.Expr, then, els func(*Block)) *Block {
	s := &stmt{kind: domain.StmtIf, cond: cond, then: &Block{}, els: &Block{}}
	if then != nil {
		then(s.then)
	}
	if els != nil {
		els(s.els)
	}
	b.stmts = append(b.stmts, s)
	return b
}

// Len is the number of statements directly in the block.
func (b *Block) Len() int { return len(b.stmts) }
