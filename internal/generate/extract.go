package generate

import (
	"encoding/json"
	"errors"
	"strings"
)

var (
	ErrNoJSONFound       = errors.New("no JSON object found in command output")
	ErrMultipleJSONFound = errors.New("multiple JSON objects found in command output")
)

// ExtractJSON finds the single JSON object in a command's stdout, preferring
// a ```json fenced block when there is one. Progress chatter around the
// object is ignored.
func ExtractJSON(output string) (string, error) {
	if body, ok, err := fencedJSON(output); err != nil {
		return "", err
	} else if ok {
		return body, nil
	}

	objects := jsonObjects(output)
	switch len(objects) {
	case 0:
		return "", ErrNoJSONFound
	case 1:
		return objects[0], nil
	default:
		return "", ErrMultipleJSONFound
	}
}

func fencedJSON(output string) (string, bool, error) {
	var bodies []string
	rest := output
	for {
		open := strings.Index(rest, "```")
		if open == -1 {
			break
		}
		rest = rest[open+3:]
		nl := strings.IndexByte(rest, '\n')
		if nl == -1 {
			break
		}
		lang := strings.TrimSpace(rest[:nl])
		rest = rest[nl+1:]
		end := strings.Index(rest, "```")
		if end == -1 {
			break
		}
		if strings.EqualFold(lang, "json") {
			bodies = append(bodies, strings.TrimSpace(rest[:end]))
		}
		rest = rest[end+3:]
	}
	switch len(bodies) {
	case 0:
		return "", false, nil
	case 1:
		return bodies[0], true, nil
	default:
		return "", true, ErrMultipleJSONFound
	}
}

// jsonObjects returns every balanced top-level {...} span that parses as JSON.
func jsonObjects(output string) []string {
	var (
		objs     []string
		start    int
		depth    int
		inString bool
		escape   bool
	)
	for i, r := range output {
		switch {
		case escape:
			escape = false
		case r == '\\' && inString:
			escape = true
		case r == '"':
			inString = !inString
		case inString:
		case r == '{':
			if depth == 0 {
				start = i
			}
			depth++
		case r == '}' && depth > 0:
			depth--
			if depth == 0 {
				candidate := output[start : i+1]
				if json.Valid([]byte(candidate)) {
					objs = append(objs, candidate)
				}
			}
		}
	}
	return objs
}
