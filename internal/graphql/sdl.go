package graphql

import (
	"fmt"
	"sort"
	"strings"

	"github.com/graphql-go/graphql"
)

var builtinScalars = map[string]bool{
	"String":   true,
	"Int":      true,
	"Float":    true,
	"Boolean":  true,
	"ID":       true,
	"DateTime": true,
}

// SDL renders the schema in schema definition language.
// Types, fields and arguments are printed in name order.
func (s *Schema) SDL() string {
	typeMap := s.schema.TypeMap()
	names := make([]string, 0, len(typeMap))
	for name := range typeMap {
		if strings.HasPrefix(name, "__") || builtinScalars[name] {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("schema {\n  query: Query\n")
	if s.schema.MutationType() != nil {
		b.WriteString("  mutation: Mutation\n")
	}
	b.WriteString("}\n")

	for _, name := range names {
		b.WriteString("\n")
		switch t := typeMap[name].(type) {
		case *graphql.Scalar:
			fmt.Fprintf(&b, "scalar %s\n", t.Name())
		case *graphql.Object:
			writeObject(&b, t)
		case *graphql.InputObject:
			writeInputObject(&b, t)
		case *graphql.Enum:
			fmt.Fprintf(&b, "enum %s {\n", t.Name())
			for _, v := range t.Values() {
				fmt.Fprintf(&b, "  %s\n", v.Name)
			}
			b.WriteString("}\n")
		}
	}
	return b.String()
}

func writeObject(b *strings.Builder, obj *graphql.Object) {
	fields := obj.Fields()
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(b, "type %s {\n", obj.Name())
	for _, name := range names {
		field := fields[name]
		fmt.Fprintf(b, "  %s%s: %s\n", name, formatArgs(field.Args), field.Type.String())
	}
	b.WriteString("}\n")
}

func writeInputObject(b *strings.Builder, obj *graphql.InputObject) {
	fields := obj.Fields()
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(b, "input %s {\n", obj.Name())
	for _, name := range names {
		fmt.Fprintf(b, "  %s: %s\n", name, fields[name].Type.String())
	}
	b.WriteString("}\n")
}

func formatArgs(args []*graphql.Argument) string {
	if len(args) == 0 {
		return ""
	}

	sorted := make([]*graphql.Argument, len(args))
	copy(sorted, args)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name() < sorted[j].Name() })

	parts := make([]string, len(sorted))
	for i, arg := range sorted {
		part := fmt.Sprintf("%s: %s", arg.Name(), arg.Type.String())
		if arg.DefaultValue != nil {
			part += fmt.Sprintf(" = %v", arg.DefaultValue)
		}
		parts[i] = part
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
