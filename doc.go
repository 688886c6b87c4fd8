// Package oaisim implements an OAI-PMH repository simulator. The Open
// Archives Initiative Protocol for Metadata Harvesting (OAI-PMH) is a low-
// barrier mechanism for repository interoperability.
//
// The simulator serves a small, synthetic repository described in a JSON
// or YAML file, so that harvesters can be tested against controlled data.
// All six verbs are supported; resumption tokens are not, any token is
// rejected as invalid.
//
// It comes with a command line tool, called `oaisim`.
//
// Basic usage:
//
//     $ oaisim serve -r data/repo1.json
//     $ curl 'http://127.0.0.1:5555/oai?verb=Identify'
//
// Programmatic usage:
//
//     repo, err := oaisim.LoadRepository("data/repo1.json", nil)
//     engine := oaisim.Engine{BaseURL: "http://127.0.0.1:5555/oai"}
//     res, err := engine.Handle(repo, url.Values{"verb": {"Identify"}})
//
package oaisim
