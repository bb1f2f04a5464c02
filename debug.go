package main

import (
	"fmt"
	"os"

	adebug "github.com/jeffwilliams/ctxpat/internal/debug"
	"github.com/jeffwilliams/ctxpat/internal/pattern"
)

const (
	LogCatgApp     = "Application"
	LogCatgConf    = "Config"
	LogCatgSearch  = "Search"
	LogCatgPattern = "Pattern"
	LogCatgWatch   = "Watch"
)

var debugLogCategories = []string{
	LogCatgApp,
	LogCatgConf,
	LogCatgSearch,
	LogCatgPattern,
	LogCatgWatch,
}

var debugLog = adebug.New(100)

func log(category, message string, args ...interface{}) {
	if *optDebugStdout {
		fmt.Printf(message, args...)
		if len(message) == 0 || message[len(message)-1] != '\n' {
			fmt.Println()
		}
	}
	debugLog.Addf(category, message, args...)
}

func initDebugging() {
	pattern.Debug = func(message string, args ...interface{}) {
		log(LogCatgPattern, message, args...)
	}
}

func dumpLog() {
	fmt.Fprint(os.Stderr, debugLog.String(debugLogCategories...))
}
