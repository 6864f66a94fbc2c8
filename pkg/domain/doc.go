/*
Package domain contains the core models of the weft execution engine.

It defines the executable node graph of a program, the per-request execution
context, and the messages and results that cross the engine boundary. The
package is free of I/O, persistence and scheduling concerns.

# Key Entities

  - Node: one executable step (AssignEndNode, ReplyNode, BranchNode), linked to its successor.
  - Visitor: the per-kind execution logic that nodes dispatch to through Accept.
  - Graph: the arena owning nodes and statements; parents are statement indices.
  - Program: a named, validated graph plus its input schema.
  - ExecutionContext: mutable state exclusive to one request.
  - Result: the outcome delivered once through the completion callback.
*/
package domain
