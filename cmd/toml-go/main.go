package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// main is the main entry point for toml-go.
func main() {
	color.NoColor = !isatty.IsTerminal(os.Stderr.Fd())

	if len(os.Args) <= 1 {
		printHelp()
		return
	}

	var err error

	switch os.Args[1] {
	case "help", "--help", "-h":
		printHelp()

	case "version", "--version", "-v":
		fmt.Println("toml-go", version)

	case "convert":
		err = convert(os.Args[2:])

	default:
		err = errors.New("unrecognized command \"" + os.Args[1] + "\"")
	}

	if err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, err.Error())
		printHelp()
		os.Exit(1)
	}
}

const version = "1.0.0"

// printHelp prints the help message for the program.
func printHelp() {
	fmt.Println("Usage:")
	fmt.Println("  toml-go help")
	fmt.Println("  toml-go version")
	fmt.Println("  toml-go convert [-f toml|json|yaml] [-i indent] [-o outfile] [file]")
	fmt.Println()
	fmt.Println("Reads a TOML document (from file or stdin) and re-emits it in the")
	fmt.Println("requested format. The default is canonical TOML.")
}
