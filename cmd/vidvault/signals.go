package cmd

type action int

const (
	actionNone action = iota
	actionBackground
	actionForeground
	actionStop
)
