// Command generate produces the ent client for the eob-analyzer schemas.
// Output goes to gen/ent at the repo root, which is not committed; run via
// go generate ./db/ent. Paths are relative to this directory.
package main

import (
	"log"

	"entgo.io/ent/entc"
	"entgo.io/ent/entc/gen"
)

//go:generate go run .

func main() {
	err := entc.Generate(
		"./schema",
		&gen.Config{
			Target:  "../../gen/ent",
			Package: "github.com/clearclaim/eob-analyzer/gen/ent",
			Schema:  "github.com/clearclaim/eob-analyzer/db/ent/schema",
		},
	)
	if err != nil {
		log.Fatal(err)
	}
}
