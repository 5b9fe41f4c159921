package graph

import (
	"context"
	"errors"

	"github.com/99designs/gqlgen/graphql"
	"github.com/99designs/gqlgen/graphql/introspection"
	"github.com/vektah/gqlparser/v2/ast"
)

var errIntrospectionDisabled = errors.New("introspection disabled")

func (ec *executionContext) introspectSchema(ctx context.Context, field graphql.CollectedField) graphql.Marshaler {
	ctx, _ = ec.field(ctx, "Query", field, true)
	if ec.DisableIntrospection {
		return ec.fail(ctx, errIntrospectionDisabled)
	}
	return ec.___Schema(ctx, field.Selections, introspection.WrapSchema(parsedSchema))
}

func (ec *executionContext) introspectType(ctx context.Context, field graphql.CollectedField) graphql.Marshaler {
	ctx, args := ec.field(ctx, "Query", field, true)
	if ec.DisableIntrospection {
		return ec.fail(ctx, errIntrospectionDisabled)
	}
	name, _ := args["name"].(string)
	t := introspection.WrapTypeFromDef(parsedSchema, parsedSchema.Types[name])
	if t == nil {
		return graphql.Null
	}
	return ec.___Type(ctx, field.Selections, t)
}

func (ec *executionContext) ___Schema(ctx context.Context, sel ast.SelectionSet, s *introspection.Schema) graphql.Marshaler {
	return ec.object(ctx, sel, "__Schema", func(ctx context.Context, field graphql.CollectedField) graphql.Marshaler {
		switch field.Name {
		case "description":
			return optionalStringPtr(s.Description())
		case "types":
			return ec.typeList(ctx, field.Selections, s.Types())
		case "queryType":
			return ec.___Type(ctx, field.Selections, s.QueryType())
		case "mutationType":
			return ec.optionalType(ctx, field.Selections, s.MutationType())
		case "subscriptionType":
			return ec.optionalType(ctx, field.Selections, s.SubscriptionType())
		case "directives":
			dirs := s.Directives()
			out := make(graphql.Array, len(dirs))
			for i := range dirs {
				out[i] = ec.___Directive(ctx, field.Selections, &dirs[i])
			}
			return out
		}
		return ec.unknownField(ctx, "__Schema", field)
	})
}

func (ec *executionContext) ___Type(ctx context.Context, sel ast.SelectionSet, t *introspection.Type) graphql.Marshaler {
	return ec.object(ctx, sel, "__Type", func(ctx context.Context, field graphql.CollectedField) graphql.Marshaler {
		kind := t.Kind()
		switch field.Name {
		case "kind":
			return graphql.MarshalString(kind)
		case "name":
			return optionalStringPtr(t.Name())
		case "description":
			return optionalStringPtr(t.Description())
		case "specifiedByURL":
			if kind != string(ast.Scalar) {
				return graphql.Null
			}
			return optionalStringPtr(t.SpecifiedByURL())
		case "fields":
			if kind != string(ast.Object) && kind != string(ast.Interface) {
				return graphql.Null
			}
			_, args := ec.field(ctx, "__Type", field, true)
			deprecated, _ := args["includeDeprecated"].(bool)
			fields := t.Fields(deprecated)
			out := make(graphql.Array, len(fields))
			for i := range fields {
				out[i] = ec.___Field(ctx, field.Selections, &fields[i])
			}
			return out
		case "interfaces":
			if kind != string(ast.Object) && kind != string(ast.Interface) {
				return graphql.Null
			}
			return ec.typeList(ctx, field.Selections, t.Interfaces())
		case "possibleTypes":
			if kind != string(ast.Interface) && kind != string(ast.Union) {
				return graphql.Null
			}
			return ec.typeList(ctx, field.Selections, t.PossibleTypes())
		case "enumValues":
			if kind != string(ast.Enum) {
				return graphql.Null
			}
			_, args := ec.field(ctx, "__Type", field, true)
			deprecated, _ := args["includeDeprecated"].(bool)
			values := t.EnumValues(deprecated)
			out := make(graphql.Array, len(values))
			for i := range values {
				out[i] = ec.___EnumValue(ctx, field.Selections, &values[i])
			}
			return out
		case "inputFields":
			if kind != string(ast.InputObject) {
				return graphql.Null
			}
			return ec.inputValueList(ctx, field.Selections, t.InputFields())
		case "ofType":
			return ec.optionalType(ctx, field.Selections, t.OfType())
		}
		return ec.unknownField(ctx, "__Type", field)
	})
}

func (ec *executionContext) ___Field(ctx context.Context, sel ast.SelectionSet, f *introspection.Field) graphql.Marshaler {
	return ec.object(ctx, sel, "__Field", func(ctx context.Context, field graphql.CollectedField) graphql.Marshaler {
		switch field.Name {
		case "name":
			return graphql.MarshalString(f.Name)
		case "description":
			return optionalStringPtr(f.Description())
		case "args":
			return ec.inputValueList(ctx, field.Selections, f.Args)
		case "type":
			return ec.___Type(ctx, field.Selections, f.Type)
		case "isDeprecated":
			return graphql.MarshalBoolean(f.IsDeprecated())
		case "deprecationReason":
			return optionalStringPtr(f.DeprecationReason())
		}
		return ec.unknownField(ctx, "__Field", field)
	})
}

func (ec *executionContext) ___InputValue(ctx context.Context, sel ast.SelectionSet, v *introspection.InputValue) graphql.Marshaler {
	return ec.object(ctx, sel, "__InputValue", func(ctx context.Context, field graphql.CollectedField) graphql.Marshaler {
		switch field.Name {
		case "name":
			return graphql.MarshalString(v.Name)
		case "description":
			return optionalStringPtr(v.Description())
		case "type":
			return ec.___Type(ctx, field.Selections, v.Type)
		case "defaultValue":
			return optionalStringPtr(v.DefaultValue)
		}
		return ec.unknownField(ctx, "__InputValue", field)
	})
}

func (ec *executionContext) ___EnumValue(ctx context.Context, sel ast.SelectionSet, v *introspection.EnumValue) graphql.Marshaler {
	return ec.object(ctx, sel, "__EnumValue", func(ctx context.Context, field graphql.CollectedField) graphql.Marshaler {
		switch field.Name {
		case "name":
			return graphql.MarshalString(v.Name)
		case "description":
			return optionalStringPtr(v.Description())
		case "isDeprecated":
			return graphql.MarshalBoolean(v.IsDeprecated())
		case "deprecationReason":
			return optionalStringPtr(v.DeprecationReason())
		}
		return ec.unknownField(ctx, "__EnumValue", field)
	})
}

func (ec *executionContext) ___Directive(ctx context.Context, sel ast.SelectionSet, d *introspection.Directive) graphql.Marshaler {
	return ec.object(ctx, sel, "__Directive", func(ctx context.Context, field graphql.CollectedField) graphql.Marshaler {
		switch field.Name {
		case "name":
			return graphql.MarshalString(d.Name)
		case "description":
			return optionalStringPtr(d.Description())
		case "locations":
			return stringList(d.Locations)
		case "args":
			return ec.inputValueList(ctx, field.Selections, d.Args)
		case "isRepeatable":
			return graphql.MarshalBoolean(d.IsRepeatable)
		}
		return ec.unknownField(ctx, "__Directive", field)
	})
}

func (ec *executionContext) optionalType(ctx context.Context, sel ast.SelectionSet, t *introspection.Type) graphql.Marshaler {
	if t == nil {
		return graphql.Null
	}
	return ec.___Type(ctx, sel, t)
}

func (ec *executionContext) typeList(ctx context.Context, sel ast.SelectionSet, types []introspection.Type) graphql.Marshaler {
	out := make(graphql.Array, len(types))
	for i := range types {
		out[i] = ec.___Type(ctx, sel, &types[i])
	}
	return out
}

func (ec *executionContext) inputValueList(ctx context.Context, sel ast.SelectionSet, values []introspection.InputValue) graphql.Marshaler {
	out := make(graphql.Array, len(values))
	for i := range values {
		out[i] = ec.___InputValue(ctx, sel, &values[i])
	}
	return out
}

func optionalStringPtr(s *string) graphql.Marshaler {
	if s == nil {
		return graphql.Null
	}
	return graphql.MarshalString(*s)
}
