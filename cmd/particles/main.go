package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"particle-sim/internal/commands"
)

func main() {
	reg := commands.NewRegistry()
	registerRun(reg)
	registerConfig(reg)

	if err := reg.Execute(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, commands.ErrUsage) {
			reg.Usage(os.Stderr, "particles")
			os.Exit(2)
		}
		os.Exit(1)
	}
}
