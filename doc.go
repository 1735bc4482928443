/*
Package parley is a hybrid dialogue engine for conversational agents. It
drives conversations through a deterministic state machine first and only
escalates to a generative model when scripted logic cannot handle the
user's utterance.

# Concept

A conversation is a graph of states, each with a scripted prompt and a
list of condition/target transitions. On every turn the engine tries, in
order: a state-independent knowledge base, disqualification rules, and the
current state's transitions. Only when none of those resolve the utterance
does it build a context-rich prompt and call the configured model
provider. The result is predictable cost: scripted turns are free, and
model turns are metered per session.

# Usage

Build an engine from a definition and process turns:

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/parley"
		"github.com/aretw0/parley/pkg/domain"
	)

	func main() {
		def := &domain.ConversationDefinition{
			InitialStateID: "greeting",
			States: map[string]domain.StateDefinition{
				"greeting": {
					ID:     "greeting",
					Prompt: "Hi! Want to book a class?",
					Transitions: []domain.Transition{
						{Condition: "yes,sure,ok", TargetStateID: "schedule"},
					},
				},
				"schedule": {ID: "schedule", Prompt: "Which day suits you?", Terminal: true},
			},
		}

		eng, err := parley.New(def, nil)
		if err != nil {
			log.Fatal(err)
		}

		sess := eng.StartSession("")
		result, err := eng.ProcessUtterance(context.Background(), sess, "yes please")
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(result.Response)
	}

Definitions are usually authored in YAML and loaded through an adapter;
NewFromLoader supports hot-reload when the loader can watch its source.
Sessions are plain data and can be persisted through any SessionStore
adapter (memory, file, Redis). The bundled HTTP and MCP servers wrap the
engine with per-session locking so concurrent turns never interleave.
*/
package parley
