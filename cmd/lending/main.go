package main

import (
	"context"
	stdLog "log"

	"github.com/Astemirdum/library-lending/lending/cli"
)

func main() {
	if err := cli.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		stdLog.Fatal(err)
	}
}
