//go:build unix

package cmd

import (
	"os"
	"os/signal"
	"syscall"
)

func lifecycleSignals() (<-chan os.Signal, func()) {
	ch := make(chan os.Signal, 4)
	signal.Notify(ch, syscall.SIGUSR1, syscall.SIGUSR2, syscall.SIGINT, syscall.SIGTERM)

	return ch, func() { signal.Stop(ch) }
}

func lifecycleAction(sig os.Signal) action {
	switch sig {
	case syscall.SIGUSR1:
		return actionBackground
	case syscall.SIGUSR2:
		return actionForeground
	case syscall.SIGINT, syscall.SIGTERM:
		return actionStop
	default:
		return actionNone
	}
}
