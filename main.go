package main

import cmd "github.com/NamanBalaji/vidvault/cmd/vidvault"

func main() {
	cmd.Execute()
}
