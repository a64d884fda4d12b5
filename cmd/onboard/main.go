// Command onboard drives the portfolio onboarding flow from a terminal.
package main

import (
	"fmt"
	"os"

	"github.com/portfolio-studio/engine/pkg/logger"
)

func main() {
	defer logger.Sync()
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
