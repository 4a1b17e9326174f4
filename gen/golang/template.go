package golang

import (
	"fmt"
	"strings"
)

// errorfCall lowers a diagnostic message template to the source of a
// fmt.Errorf call. Templates interpolate Go expressions with
// @{expr} or @{expr:verb}; the verb defaults to "v". Literal percent
// signs in the template are escaped for the format string.
//
//	errorfCall(`parameter @{name} must be a string; received @{val:T}`)
//	  => fmt.Errorf("parameter %v must be a string; received %T", name, val)
func errorfCall(template string) (string, error) {
	var format strings.Builder
	var args []string
	for i := 0; i < len(template); {
		if template[i] == '@' && i+1 < len(template) && template[i+1] == '{' {
			end := strings.IndexByte(template[i:], '}')
			if end < 0 {
				return "", fmt.Errorf("unterminated placeholder at offset %d in %q", i, template)
			}
			inner := template[i+2 : i+end]
			expr, verb := inner, "v"
			if colon := strings.LastIndexByte(inner, ':'); colon >= 0 {
				expr, verb = inner[:colon], inner[colon+1:]
			}
			if expr == "" {
				return "", fmt.Errorf("empty placeholder expression in %q", template)
			}
			format.WriteByte('%')
			format.WriteString(verb)
			args = append(args, expr)
			i += end + 1
			continue
		}
		if template[i] == '%' {
			format.WriteString("%%")
		} else {
			format.WriteByte(template[i])
		}
		i++
	}
	var b strings.Builder
	b.WriteString("fmt.Errorf(")
	b.WriteString(fmt.Sprintf("%q", format.String()))
	for _, a := range args {
		b.WriteString(", ")
		b.WriteString(a)
	}
	b.WriteString(")")
	return b.String(), nil
}
