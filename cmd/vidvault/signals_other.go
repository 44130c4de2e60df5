//go:build !unix

package cmd

import (
	"os"
	"os/signal"
)

func lifecycleSignals() (<-chan os.Signal, func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)

	return ch, func() { signal.Stop(ch) }
}

func lifecycleAction(sig os.Signal) action {
	if sig == os.Interrupt {
		return actionStop
	}

	return actionNone
}
