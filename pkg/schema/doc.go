/*
Package schema validates inbound message payloads against the input
declaration of a program.

A Schema maps payload field names to Types. A field name ending in "?" is
optional: it is checked only when present.

	s, _ := schema.ParseTypeMap(map[string]string{"name": "string", "tags?": "[string]"})
	err := schema.Validate(s, payload)
*/
package schema
