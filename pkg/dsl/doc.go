/*
Package dsl builds weft programs in Go code.

The builder plays the role of the compiler for tests and embedded programs: it
allocates statement and node indices in the graph arena and links every node to
its successor.

	prog, err := dsl.New("orders").
		Input(schema.Schema{"qty": schema.Int()}).
		Assign("qty", domain.Field("qty")).
		If(domain.Eq(domain.Var("qty"), domain.Lit(0)),
			func(b *dsl.Block) { b.Assign("status", domain.Lit("empty")) },
			func(b *dsl.Block) { b.Assign("status", domain.Lit("ok")) },
		).
		Reply(domain.Var("status")).
		Build()
*/
package dsl
