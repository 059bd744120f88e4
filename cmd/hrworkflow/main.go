package main

import (
	"context"
	"os"

	"hr-workflow/internal/cli"

	"github.com/sirupsen/logrus"
)

func main() {
	if err := cli.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}
