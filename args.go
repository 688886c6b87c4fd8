package oaisim

import "sort"

// Protocol arguments (4. Protocol Requests and Responses).
const (
	ArgVerb            = "verb"
	ArgIdentifier      = "identifier"
	ArgMetadataPrefix  = "metadataPrefix"
	ArgFrom            = "from"
	ArgUntil           = "until"
	ArgSet             = "set"
	ArgResumptionToken = "resumptionToken"
)

// knownArgs are all argument names, besides verb, any verb may take.
var knownArgs = map[string]bool{
	ArgIdentifier:      true,
	ArgMetadataPrefix:  true,
	ArgFrom:            true,
	ArgUntil:           true,
	ArgSet:             true,
	ArgResumptionToken: true,
}

// ArgSchema lists the arguments a verb takes. If the exclusive argument is
// present, it must be the only one.
type ArgSchema struct {
	Optional  []string
	Required  []string
	Exclusive string
}

// CheckArgs checks that only allowed arguments are given and all required
// ones are present. Args never contains the verb itself.
func CheckArgs(verb string, args map[string]string, schema ArgSchema) error {
	if schema.Exclusive != "" {
		if _, ok := args[schema.Exclusive]; ok {
			if len(args) > 1 {
				return BadArgumentf("Exclusive argument (%s) present in addition to other arguments (%s) in %s request",
					schema.Exclusive, sortedJoin(argNames(args)), verb)
			}
			return nil
		}
	}
	allowed := make(map[string]bool)
	for _, name := range schema.Optional {
		allowed[name] = true
	}
	for _, name := range schema.Required {
		allowed[name] = true
	}
	var bad []string
	for name := range args {
		if !allowed[name] {
			bad = append(bad, name)
		}
	}
	if len(bad) > 0 {
		return BadArgumentf("Illegal arguments (%s) in %s request", sortedJoin(bad), verb)
	}
	var missing []string
	for _, name := range schema.Required {
		if _, ok := args[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return BadArgumentf("Arguments (%s) required but missing in %s request", sortedJoin(missing), verb)
	}
	return nil
}

func argNames(args map[string]string) []string {
	names := make([]string, 0, len(args))
	for name := range args {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
