package core

import "context"

// AdviceProvider generates free-text agronomic advice from a prompt.
// An unconfigured provider reports Configured() == false and the services
// answer with labeled simulated content instead of calling out.
type AdviceProvider interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Configured() bool
	Close() error
}
