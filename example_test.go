package parley_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/pkg/domain"
)

// Example demonstrates a purely scripted conversation: no model provider
// is configured, so every turn is resolved deterministically.
func Example() {
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
			"schedule": {
				ID:       "schedule",
				Prompt:   "Which day suits you?",
				Terminal: true,
			},
		},
	}

	eng, err := parley.New(def, nil)
	if err != nil {
		log.Fatal(err)
	}

	sess := eng.StartSession("demo")
	result, err := eng.ProcessUtterance(context.Background(), sess, "yes please")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(result.Response)
	fmt.Println(sess.CurrentStateID)
	// Output:
	// Which day suits you?
	// schedule
}
