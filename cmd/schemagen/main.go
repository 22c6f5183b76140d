// Command schemagen turns a Figma design into Sanity schema files with
// Gemini: it plans documents and objects, generates each schema, corrects
// the output and writes a schemaTypes tree.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
