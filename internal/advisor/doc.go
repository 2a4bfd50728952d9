// Package advisor implements the text-advice collaborator behind the assistant.
//
// An Advisor answers a free-text question about a Subject: either a vehicle
// snapshot (model, battery, range, software, cabin temperature, odometer,
// location) or a lease summary (days left, mileage used against allowance).
// The question and the subject are rendered into a single instruction by
// Prompt.
//
// # Client
//
// Client calls the generative language REST API (generateContent) with the key
// in the x-goog-api-key header. It makes exactly one attempt per question and
// returns a typed *AdviceError on failure:
//
//	client := advisor.NewClient(os.Getenv("API_KEY"))
//	text, err := client.Advise(ctx, "range tips", advisor.VehicleSubject(snap))
//	if advisor.IsAuthError(err) {
//	    fmt.Println(advisor.GetShortErrorMessage(err))
//	}
//
// # Conversation
//
// Conversation keeps the chat transcript. Ask never returns an error: on any
// failure the reply is the fixed FallbackReply, and an answer without text is
// replaced by EmptyReply. Asks on one conversation are serialized so each
// question is immediately followed by its own answer; Pending reports how
// many are queued or in flight for a "composing" indicator.
//
//	conv := advisor.NewConversation(client)
//	reply, _ := conv.Ask(ctx, "How long until my lease ends?", advisor.LeaseSubject(summary))
//
// # Without an API key
//
// Unconfigured returns a Static advisor that always fails, so the assistant
// still works and answers with the fallback message.
package advisor
