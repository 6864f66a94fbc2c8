package weft_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/weft"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/aretw0/weft/pkg/dsl"
	"github.com/aretw0/weft/pkg/pool"
)

// ExampleEngine_Send builds a program in code, registers it and sends a message.
func ExampleEngine_Send() {
	eng := weft.New(weft.WithPoolConfig(pool.Config{Workers: 2, QueueCapacity: 8}))
	defer eng.Shutdown(context.Background())

	prog, err := dsl.New("greet").
		If(domain.Eq(domain.Field("name"), domain.Lit("admin")),
			func(b *dsl.Block) { b.Assign("greeting", domain.Lit("welcome back")) },
			func(b *dsl.Block) { b.Assign("greeting", domain.Lit("hello")) },
		).
		Reply(domain.Var("greeting")).
		Build()
	if err != nil {
		log.Fatal(err)
	}
	if err := eng.Register(prog); err != nil {
		log.Fatal(err)
	}

	result, err := eng.Send(context.Background(), domain.Message{
		Program: "greet",
		Payload: map[string]any{"name": "admin"},
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(result.Status, result.Value, result.Steps)
	// Output: success welcome back 3
}
