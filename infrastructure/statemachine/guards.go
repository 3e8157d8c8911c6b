package statemachine

import "github.com/felixgeelhaar/statekit"

// Guards receive the context by value, which for us is *Context.

func guardRedFlagging(ctx *Context, _ statekit.Event) bool {
	return ctx != nil && ctx.RedFlagging
}

func guardBudgetRemaining(ctx *Context, _ statekit.Event) bool {
	return ctx != nil && ctx.Attempts < ctx.MaxAttempts
}
