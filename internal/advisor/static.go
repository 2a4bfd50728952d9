package advisor

import "context"

// Static is an Advisor with a canned outcome. With Err set every call fails,
// which is how the app behaves when no API key is configured.
type Static struct {
	Reply string
	Err   error
}

// Unconfigured returns the advisor used when no API key is available.
func Unconfigured() Static {
	return Static{Err: NewConfigError("no API key configured")}
}

// Advise implements Advisor.
func (s Static) Advise(ctx context.Context, prompt string, subject Subject) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", ClassifyNetworkError(err)
	}
	if s.Err != nil {
		return "", s.Err
	}
	return s.Reply, nil
}

// ModelName reports a fixed name for logs.
func (s Static) ModelName() string {
	return "static"
}

// Func adapts a plain function to the Advisor interface.
type Func func(ctx context.Context, prompt string, subject Subject) (string, error)

// Advise implements Advisor.
func (f Func) Advise(ctx context.Context, prompt string, subject Subject) (string, error) {
	return f(ctx, prompt, subject)
}
