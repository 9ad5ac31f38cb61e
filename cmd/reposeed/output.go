package main

import (
	"encoding/json"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

var (
	successColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed)
	warnColor    = color.New(color.FgYellow)
	infoColor    = color.New(color.FgCyan)
	boldColor    = color.New(color.Bold)
)

// configureOutput disables color when stdout is not a terminal or JSON
// output is requested.
func configureOutput() {
	if jsonOutput || !term.IsTerminal(int(os.Stdout.Fd())) {
		color.NoColor = true
	}
}

func printSuccess(format string, args ...interface{}) {
	successColor.Printf(format+"\n", args...)
}

func printError(format string, args ...interface{}) {
	errorColor.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

func printWarning(format string, args ...interface{}) {
	warnColor.Printf(format+"\n", args...)
}

func printInfo(format string, args ...interface{}) {
	infoColor.Printf(format+"\n", args...)
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		printError("encode output: %v", err)
	}
}

func statusLabel(status string) string {
	switch status {
	case "CREATE":
		return successColor.Sprint("CREATE  ")
	case "PRESERVE":
		return warnColor.Sprint("PRESERVE")
	case "ADDED":
		return successColor.Sprint("+")
	case "REMOVED":
		return errorColor.Sprint("-")
	case "MODIFIED":
		return warnColor.Sprint("~")
	default:
		return status
	}
}
