package main

import (
	"context"
	"fmt"
	"os"

	"github.com/soyeahso/toolchat/internal/cli"
)

func main() {
	if err := cli.Execute(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "toolchat:", err)
		os.Exit(1)
	}
}
