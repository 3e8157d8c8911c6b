package statemachine

import "github.com/felixgeelhaar/statekit"

// Actions receive a pointer to the machine context; ours is *Context, so
// they see **Context.

func countAttempt(ctx **Context, _ statekit.Event) {
	if ctx == nil || *ctx == nil {
		return
	}
	(*ctx).Attempts++
}

func recordRejection(ctx **Context, event statekit.Event) {
	if ctx == nil || *ctx == nil {
		return
	}
	(*ctx).Rejections++
	(*ctx).LastErr = payloadError(event)
}

func recordProviderError(ctx **Context, event statekit.Event) {
	if ctx == nil || *ctx == nil {
		return
	}
	(*ctx).ProviderErrors++
	(*ctx).LastErr = payloadError(event)
}

func recordFailure(ctx **Context, event statekit.Event) {
	if ctx == nil || *ctx == nil {
		return
	}
	if err := payloadError(event); err != nil {
		(*ctx).LastErr = err
	}
}

func payloadError(event statekit.Event) error {
	if err, ok := event.Payload.(error); ok {
		return err
	}
	return nil
}
