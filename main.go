package main

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/oakwood-commons/jsassist/cmd"
	"github.com/oakwood-commons/jsassist/pkg/logger"
)

func main() {
	exitCode := 0
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if hint := errors.FlattenHints(err); hint != "" {
			fmt.Fprintln(os.Stderr, "hint:", hint)
		}
		exitCode = 1
	}

	logger.Sync()
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}
