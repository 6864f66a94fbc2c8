/*
Package ports defines the interfaces between the weft core and the systems
around it.

# Key Interfaces

  - Responder: the transport's response channel; receives exactly one Result per accepted message.
  - MessageProcessor: the inbound boundary that accepts messages for asynchronous execution.
  - ProgramResolver: resolves the pre-built program a message is addressed to.
  - ResultStore: persists completed results so transports can serve them later.
  - MessageClaimer: rejects redelivered message IDs.
*/
package ports
