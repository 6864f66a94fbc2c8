/*
Package weft is the execution core of a small interpreted language: programs
are graphs of linked executable nodes, walked by a stateless visitor on a
bounded pool of workers, one request per worker, with the outcome delivered
through a one-shot asynchronous callback.

# Concept

A Program is a validated graph. Every node points back to the statement it
came from and forward to its successor; a node without a successor ends the
walk. A message addressed to a program is turned into a per-request
ExecutionContext and handed to the worker pool. The receiving goroutine never
waits for execution: it learns only whether the message was accepted, and the
Result arrives later through the responder it supplied.

# Key Features

  - Visitor dispatch: adding a node kind never touches the walk loop.
  - Bounded execution: a fixed pool with a bounded queue rejects work instead of blocking.
  - Exactly-once completion: every accepted message gets exactly one Result.
  - Programs as data: YAML program files or the pkg/dsl builder.

# Usage

	eng := weft.New(weft.WithPoolConfig(pool.Config{Workers: 4, QueueCapacity: 64}))
	defer eng.Shutdown(context.Background())

	prog, err := dsl.New("hello").
		Assign("x", domain.Lit(5)).
		Reply(domain.Var("x")).
		Build()
	if err != nil {
		log.Fatal(err)
	}
	if err := eng.Register(prog); err != nil {
		log.Fatal(err)
	}

	accepted, err := eng.Receive(ctx, domain.Message{Program: "hello"},
		callback.Func(func(ctx context.Context, r domain.Result) error {
			log.Println(r.Status, r.Value)
			return nil
		}))
*/
package weft
