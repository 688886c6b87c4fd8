// oaisim serves a simulated OAI-PMH repository from a JSON or YAML file.
//
//     $ oaisim serve -r data/repo1.json
//     $ oaisim check data/repo1.json
//     $ oaisim probe http://127.0.0.1:5555/oai
//
package main

import (
	"fmt"
	"os"
)

func main() {
	Execute()
}

func fatal(msg string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}
