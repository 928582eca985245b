// Command sqllint checks that every inline SQL constant starts with a unique
// "--sql <uuid>" marker so statements can be traced in the query logs.
package main

import (
	"flag"
	"fmt"
	"os"
)

func main() {
	flag.Parse()
	targets := flag.Args()
	if len(targets) == 0 {
		targets = []string{"internal/sqlinline"}
	}

	l := newLinter()
	for _, target := range targets {
		if err := l.lintPath(target); err != nil {
			fmt.Fprintf(os.Stderr, "sqllint: %v\n", err)
			os.Exit(1)
		}
	}

	if len(l.findings) == 0 {
		return
	}
	fmt.Fprintln(os.Stderr, "sqllint: SQL audit marker problems")
	for _, f := range l.findings {
		fmt.Fprintf(os.Stderr, "  %s\n", f)
	}
	os.Exit(1)
}
