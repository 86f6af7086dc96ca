package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"

	"github.com/kozaktomas/photolog/cmd"
)

func main() {
	if err := fang.Execute(
		context.Background(),
		cmd.Root(),
		fang.WithVersion(cmd.Version),
		fang.WithCommit(cmd.CommitSHA),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}
