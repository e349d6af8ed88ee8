package java

import "strings"

// Property names reported by the runtime
const (
	HomeProperty        = "java.home"
	SpecVersionProperty = "java.specification.version"
	VersionProperty     = "java.version"
)

// Properties is the system property dump of a Java runtime
type Properties map[string]string

// Get returns the trimmed value of a property, "" when absent
func (p Properties) Get(key string) string {
	return strings.TrimSpace(p[key])
}

// ParseProperties extracts the "Property settings:" block printed by
// `java -XshowSettings:properties`. Keys sit at one indentation level,
// continuation lines of multi-valued properties (paths) are indented further
// and are joined with "\n".
func ParseProperties(output string) Properties {
	props := make(Properties)

	inBlock := false
	keyIndent := -1
	lastKey := ""

	for _, raw := range strings.Split(output, "\n") {
		line := strings.TrimRight(raw, "\r")

		if !inBlock {
			if strings.TrimSpace(line) == "Property settings:" {
				inBlock = true
			}
			continue
		}

		content := strings.TrimSpace(line)
		if content == "" {
			// Block ends at the first blank line
			break
		}

		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		if keyIndent < 0 {
			keyIndent = indent
		}

		if indent > keyIndent && lastKey != "" {
			props[lastKey] += "\n" + content
			continue
		}

		key, value, ok := strings.Cut(content, "=")
		if !ok {
			continue
		}
		lastKey = strings.TrimSpace(key)
		props[lastKey] = strings.TrimSpace(value)
	}

	return props
}
