package graph

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"

	"github.com/99designs/gqlgen/graphql"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/UkralStul/academic-feed/internal/domain"
	"github.com/UkralStul/academic-feed/internal/events"
	"github.com/UkralStul/academic-feed/internal/feed"
)

//go:embed schema.graphqls
var sourceSchema string

var parsedSchema = gqlparser.MustLoadSchema(&ast.Source{Name: "schema.graphqls", Input: sourceSchema})

type Config struct {
	Resolvers ResolverRoot
}

type ResolverRoot interface {
	Entry() EntryResolver
	Mutation() MutationResolver
	Query() QueryResolver
	Subscription() SubscriptionResolver
}

type EntryResolver interface {
	Comments(ctx context.Context, obj *domain.Entry) ([]feed.CommentView, error)
	Bookmarked(ctx context.Context, obj *domain.Entry) (bool, error)
}

type MutationResolver interface {
	React(ctx context.Context, entryID string, reaction domain.ReactionKind) (domain.Entry, error)
	ToggleBookmark(ctx context.Context, entryID string) ([]string, error)
	AddComment(ctx context.Context, entryID string, text string, parentID *string) (domain.Entry, error)
	LikeComment(ctx context.Context, entryID string, commentID string) (domain.Entry, error)
	Verify(ctx context.Context, question string, answer string) (string, error)
}

type QueryResolver interface {
	Me(ctx context.Context) (domain.User, error)
	Entries(ctx context.Context, q *string, category *string, bookmarked *bool, sort *domain.SortMode) ([]domain.Entry, error)
	Entry(ctx context.Context, id string) (domain.Entry, error)
	Categories(ctx context.Context) ([]string, error)
	Suggestions(ctx context.Context) (feed.Suggestions, error)
	Bookmarks(ctx context.Context) ([]string, error)
}

type SubscriptionResolver interface {
	FeedEvents(ctx context.Context, entryID *string) (<-chan events.Event, error)
}

// NewExecutableSchema связывает схему с резолверами.
func NewExecutableSchema(cfg Config) graphql.ExecutableSchema {
	return &executableSchema{resolvers: cfg.Resolvers}
}

type executableSchema struct {
	resolvers ResolverRoot
}

func (e *executableSchema) Schema() *ast.Schema {
	return parsedSchema
}

func (e *executableSchema) Complexity(typeName, field string, childComplexity int, rawArgs map[string]interface{}) (int, bool) {
	return 0, false
}

func (e *executableSchema) Exec(ctx context.Context) graphql.ResponseHandler {
	rc := graphql.GetOperationContext(ctx)
	ec := executionContext{OperationContext: rc, resolvers: e.resolvers}

	switch rc.Operation.Operation {
	case ast.Query, ast.Mutation:
		op := rc.Operation.Operation
		first := true
		return func(ctx context.Context) *graphql.Response {
			if !first {
				return nil
			}
			first = false

			var data graphql.Marshaler
			if op == ast.Query {
				data = ec._Query(ctx, rc.Operation.SelectionSet)
			} else {
				data = ec._Mutation(ctx, rc.Operation.SelectionSet)
			}
			if data == nil {
				data = graphql.Null
			}
			var buf bytes.Buffer
			data.MarshalGQL(&buf)

			return &graphql.Response{Data: buf.Bytes()}
		}

	case ast.Subscription:
		next := ec._Subscription(ctx, rc.Operation.SelectionSet)
		if next == nil {
			return func(ctx context.Context) *graphql.Response { return nil }
		}

		var buf bytes.Buffer
		return func(ctx context.Context) *graphql.Response {
			buf.Reset()
			data := next(ctx)
			if data == nil {
				return nil
			}
			data.MarshalGQL(&buf)

			return &graphql.Response{Data: buf.Bytes()}
		}

	default:
		return graphql.OneShot(graphql.ErrorResponse(ctx, "unsupported GraphQL operation"))
	}
}

type executionContext struct {
	*graphql.OperationContext
	resolvers ResolverRoot
}

// field открывает контекст поля, чтобы у ошибок резолвера был путь.
func (ec *executionContext) field(ctx context.Context, object string, field graphql.CollectedField, resolver bool) (context.Context, map[string]interface{}) {
	args := field.ArgumentMap(ec.Variables)
	ctx = graphql.WithFieldContext(ctx, &graphql.FieldContext{
		Object:     object,
		Field:      field,
		Args:       args,
		IsMethod:   resolver,
		IsResolver: resolver,
	})
	return ctx, args
}

// fail записывает ошибку поля. nil поднимается до ближайшего nullable родителя.
func (ec *executionContext) fail(ctx context.Context, err error) graphql.Marshaler {
	ec.Error(ctx, err)
	return nil
}

func (ec *executionContext) unknownField(ctx context.Context, object string, field graphql.CollectedField) graphql.Marshaler {
	return ec.fail(ctx, fmt.Errorf("unknown field %s.%s", object, field.Name))
}

// object собирает поля типа typeName. Если не вычислилось хоть одно
// non-null поле, весь объект становится null.
func (ec *executionContext) object(ctx context.Context, sel ast.SelectionSet, typeName string, resolve func(ctx context.Context, field graphql.CollectedField) graphql.Marshaler) graphql.Marshaler {
	fields := graphql.CollectFields(ec.OperationContext, sel, []string{typeName})
	out := graphql.NewFieldSet(fields)
	for i, field := range fields {
		if field.Name == "__typename" {
			out.Values[i] = graphql.MarshalString(typeName)
			continue
		}
		v := resolve(ctx, field)
		if v == nil {
			return nil
		}
		out.Values[i] = v
	}
	return out
}

// === Query ===

func (ec *executionContext) _Query(ctx context.Context, sel ast.SelectionSet) graphql.Marshaler {
	ctx = graphql.WithFieldContext(ctx, &graphql.FieldContext{Object: "Query"})
	return ec.object(ctx, sel, "Query", ec._Query_field)
}

func (ec *executionContext) _Query_field(ctx context.Context, field graphql.CollectedField) graphql.Marshaler {
	switch field.Name {
	case "__schema":
		return ec.introspectSchema(ctx, field)
	case "__type":
		return ec.introspectType(ctx, field)
	}

	ctx, args := ec.field(ctx, "Query", field, true)
	q := ec.resolvers.Query()

	switch field.Name {
	case "me":
		u, err := q.Me(ctx)
		if err != nil {
			return ec.fail(ctx, err)
		}
		return ec._User(ctx, field.Selections, u)

	case "entries":
		sort, err := sortModeArg(args["sort"])
		if err != nil {
			return ec.fail(ctx, err)
		}
		list, err := q.Entries(ctx, stringArg(args["q"]), stringArg(args["category"]), boolArg(args["bookmarked"]), sort)
		if err != nil {
			return ec.fail(ctx, err)
		}
		return ec.entryList(ctx, field.Selections, list)

	case "entry":
		e, err := q.Entry(ctx, idArg(args["id"]))
		if err != nil {
			return ec.fail(ctx, err)
		}
		return ec._Entry(ctx, field.Selections, e)

	case "categories":
		cats, err := q.Categories(ctx)
		if err != nil {
			return ec.fail(ctx, err)
		}
		return stringList(cats)

	case "suggestions":
		s, err := q.Suggestions(ctx)
		if err != nil {
			return ec.fail(ctx, err)
		}
		return ec._Suggestions(ctx, field.Selections, s)

	case "bookmarks":
		ids, err := q.Bookmarks(ctx)
		if err != nil {
			return ec.fail(ctx, err)
		}
		return idList(ids)
	}
	return ec.unknownField(ctx, "Query", field)
}

// === Mutation ===

// Поля мутации вычисляются по очереди, в порядке запроса.
func (ec *executionContext) _Mutation(ctx context.Context, sel ast.SelectionSet) graphql.Marshaler {
	ctx = graphql.WithFieldContext(ctx, &graphql.FieldContext{Object: "Mutation"})
	return ec.object(ctx, sel, "Mutation", ec._Mutation_field)
}

func (ec *executionContext) _Mutation_field(ctx context.Context, field graphql.CollectedField) graphql.Marshaler {
	ctx, args := ec.field(ctx, "Mutation", field, true)
	m := ec.resolvers.Mutation()

	switch field.Name {
	case "react":
		kind, err := reactionArg(args["reaction"])
		if err != nil {
			return ec.fail(ctx, err)
		}
		e, err := m.React(ctx, idArg(args["entryId"]), kind)
		if err != nil {
			return ec.fail(ctx, err)
		}
		return ec._Entry(ctx, field.Selections, e)

	case "toggleBookmark":
		ids, err := m.ToggleBookmark(ctx, idArg(args["entryId"]))
		if err != nil {
			return ec.fail(ctx, err)
		}
		return idList(ids)

	case "addComment":
		text, _ := args["text"].(string)
		e, err := m.AddComment(ctx, idArg(args["entryId"]), text, stringArg(args["parentId"]))
		if err != nil {
			return ec.fail(ctx, err)
		}
		return ec._Entry(ctx, field.Selections, e)

	case "likeComment":
		e, err := m.LikeComment(ctx, idArg(args["entryId"]), idArg(args["commentId"]))
		if err != nil {
			return ec.fail(ctx, err)
		}
		return ec._Entry(ctx, field.Selections, e)

	case "verify":
		question, _ := args["question"].(string)
		answer, _ := args["answer"].(string)
		text, err := m.Verify(ctx, question, answer)
		if err != nil {
			return ec.fail(ctx, err)
		}
		return graphql.MarshalString(text)
	}
	return ec.unknownField(ctx, "Mutation", field)
}

// === Subscription ===

func (ec *executionContext) _Subscription(ctx context.Context, sel ast.SelectionSet) func(ctx context.Context) graphql.Marshaler {
	fields := graphql.CollectFields(ec.OperationContext, sel, []string{"Subscription"})
	if len(fields) != 1 {
		graphql.AddErrorf(ctx, "must subscribe to exactly one stream")
		return nil
	}
	ctx = graphql.WithFieldContext(ctx, &graphql.FieldContext{Object: "Subscription"})

	field := fields[0]
	switch field.Name {
	case "feedEvents":
		return ec._Subscription_feedEvents(ctx, field)
	}
	ec.unknownField(ctx, "Subscription", field)
	return nil
}

func (ec *executionContext) _Subscription_feedEvents(ctx context.Context, field graphql.CollectedField) func(ctx context.Context) graphql.Marshaler {
	ctx, args := ec.field(ctx, "Subscription", field, true)
	ch, err := ec.resolvers.Subscription().FeedEvents(ctx, stringArg(args["entryId"]))
	if err != nil {
		ec.Error(ctx, err)
		return nil
	}

	return func(ctx context.Context) graphql.Marshaler {
		select {
		case e, ok := <-ch:
			if !ok {
				return nil
			}
			out := graphql.NewFieldSet([]graphql.CollectedField{field})
			out.Values[0] = ec._FeedEvent(ctx, field.Selections, e)
			return out
		case <-ctx.Done():
			return nil
		}
	}
}

// === Objects ===

func (ec *executionContext) _User(ctx context.Context, sel ast.SelectionSet, u domain.User) graphql.Marshaler {
	return ec.object(ctx, sel, "User", func(ctx context.Context, field graphql.CollectedField) graphql.Marshaler {
		switch field.Name {
		case "id":
			return graphql.MarshalID(u.ID)
		case "username":
			return graphql.MarshalString(u.Username)
		case "role":
			return graphql.MarshalString(string(u.Role))
		case "displayName":
			return graphql.MarshalString(u.Name())
		case "profilePic":
			return optionalString(u.ProfilePic)
		case "isPrivate":
			return graphql.MarshalBoolean(u.IsPrivate)
		}
		return ec.unknownField(ctx, "User", field)
	})
}

func (ec *executionContext) _Entry(ctx context.Context, sel ast.SelectionSet, e domain.Entry) graphql.Marshaler {
	return ec.object(ctx, sel, "Entry", func(ctx context.Context, field graphql.CollectedField) graphql.Marshaler {
		switch field.Name {
		case "id":
			return graphql.MarshalID(e.ID)
		case "authorId":
			return graphql.MarshalID(e.AuthorID)
		case "category":
			return graphql.MarshalString(e.Category)
		case "subCategory":
			return graphql.MarshalString(e.SubCategory)
		case "topic":
			return graphql.MarshalString(e.Topic)
		case "question":
			return graphql.MarshalString(e.Question)
		case "answer":
			return graphql.MarshalString(e.Answer)
		case "source":
			return graphql.MarshalString(e.Source)
		case "createdAt":
			return graphql.MarshalTime(e.CreatedAt)
		case "likes":
			return idList(e.Likes)
		case "dislikes":
			return idList(e.Dislikes)
		case "mediaUrl":
			return optionalString(e.MediaURL)
		case "mediaKind":
			return graphql.MarshalString(mediaKindName(e.MediaKind))
		case "mediaName":
			return optionalString(e.MediaName)
		case "commentCount":
			return graphql.MarshalInt(feed.CountComments(e.Comments))

		case "comments":
			ctx, _ := ec.field(ctx, "Entry", field, true)
			views, err := ec.resolvers.Entry().Comments(ctx, &e)
			if err != nil {
				return ec.fail(ctx, err)
			}
			return ec.commentList(ctx, field.Selections, views)

		case "bookmarked":
			ctx, _ := ec.field(ctx, "Entry", field, true)
			ok, err := ec.resolvers.Entry().Bookmarked(ctx, &e)
			if err != nil {
				return ec.fail(ctx, err)
			}
			return graphql.MarshalBoolean(ok)
		}
		return ec.unknownField(ctx, "Entry", field)
	})
}

func (ec *executionContext) entryList(ctx context.Context, sel ast.SelectionSet, list []domain.Entry) graphql.Marshaler {
	out := make(graphql.Array, len(list))
	for i := range list {
		ctx := graphql.WithFieldContext(ctx, &graphql.FieldContext{Index: &i, Result: &list[i]})
		v := ec._Entry(ctx, sel, list[i])
		if v == nil {
			return nil
		}
		out[i] = v
	}
	return out
}

func (ec *executionContext) _Comment(ctx context.Context, sel ast.SelectionSet, c feed.CommentView) graphql.Marshaler {
	return ec.object(ctx, sel, "Comment", func(ctx context.Context, field graphql.CollectedField) graphql.Marshaler {
		switch field.Name {
		case "id":
			return graphql.MarshalID(c.ID)
		case "userId":
			if c.UserID == "" {
				return graphql.Null
			}
			return graphql.MarshalID(c.UserID)
		case "authorName":
			return graphql.MarshalString(c.AuthorName)
		case "profilePic":
			return optionalString(c.ProfilePic)
		case "isPrivate":
			return graphql.MarshalBoolean(c.IsPrivate)
		case "text":
			return graphql.MarshalString(c.Text)
		case "createdAt":
			return graphql.MarshalTime(c.CreatedAt)
		case "likeCount":
			return graphql.MarshalInt(c.LikeCount)
		case "liked":
			return graphql.MarshalBoolean(c.Liked)
		case "replies":
			ctx, _ := ec.field(ctx, "Comment", field, false)
			return ec.commentList(ctx, field.Selections, c.Replies)
		}
		return ec.unknownField(ctx, "Comment", field)
	})
}

func (ec *executionContext) commentList(ctx context.Context, sel ast.SelectionSet, list []feed.CommentView) graphql.Marshaler {
	out := make(graphql.Array, len(list))
	for i := range list {
		ctx := graphql.WithFieldContext(ctx, &graphql.FieldContext{Index: &i, Result: &list[i]})
		v := ec._Comment(ctx, sel, list[i])
		if v == nil {
			return nil
		}
		out[i] = v
	}
	return out
}

func (ec *executionContext) _Suggestions(ctx context.Context, sel ast.SelectionSet, s feed.Suggestions) graphql.Marshaler {
	return ec.object(ctx, sel, "Suggestions", func(ctx context.Context, field graphql.CollectedField) graphql.Marshaler {
		switch field.Name {
		case "categories":
			return stringList(s.Categories)
		case "subCategories":
			return stringList(s.SubCategories)
		case "topics":
			return stringList(s.Topics)
		}
		return ec.unknownField(ctx, "Suggestions", field)
	})
}

func (ec *executionContext) _FeedEvent(ctx context.Context, sel ast.SelectionSet, e events.Event) graphql.Marshaler {
	return ec.object(ctx, sel, "FeedEvent", func(ctx context.Context, field graphql.CollectedField) graphql.Marshaler {
		switch field.Name {
		case "type":
			return graphql.MarshalString(string(e.Type))
		case "entryId":
			return graphql.MarshalID(e.EntryID)
		case "commentId":
			if e.CommentID == "" {
				return graphql.Null
			}
			return graphql.MarshalID(e.CommentID)
		case "actorId":
			return graphql.MarshalID(e.ActorID)
		case "at":
			return graphql.MarshalTime(e.At)
		}
		return ec.unknownField(ctx, "FeedEvent", field)
	})
}

// === Scalars & enums ===

var (
	sortModes = map[string]domain.SortMode{
		"NEWEST":     domain.SortNewest,
		"MOST_LIKED": domain.SortMostLiked,
	}
	reactions = map[string]domain.ReactionKind{
		"LIKE":    domain.Like,
		"DISLIKE": domain.Dislike,
	}
	mediaKinds = map[domain.MediaKind]string{
		domain.MediaNone:     "NONE",
		domain.MediaImage:    "IMAGE",
		domain.MediaVideo:    "VIDEO",
		domain.MediaDocument: "DOCUMENT",
	}
)

func sortModeArg(v interface{}) (*domain.SortMode, error) {
	if v == nil {
		return nil, nil
	}
	name, _ := v.(string)
	mode, ok := sortModes[name]
	if !ok {
		return nil, domain.Invalid(fmt.Sprintf("%q is not a valid SortMode", name))
	}
	return &mode, nil
}

func reactionArg(v interface{}) (domain.ReactionKind, error) {
	name, _ := v.(string)
	kind, ok := reactions[name]
	if !ok {
		return "", domain.Invalid(fmt.Sprintf("%q is not a valid Reaction", name))
	}
	return kind, nil
}

func mediaKindName(k domain.MediaKind) string {
	if name, ok := mediaKinds[k]; ok {
		return name
	}
	return "NONE"
}

func stringArg(v interface{}) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return &s
}

func boolArg(v interface{}) *bool {
	b, ok := v.(bool)
	if !ok {
		return nil
	}
	return &b
}

func idArg(v interface{}) string {
	id, _ := graphql.UnmarshalID(v)
	return id
}

func optionalString(s string) graphql.Marshaler {
	if s == "" {
		return graphql.Null
	}
	return graphql.MarshalString(s)
}

func stringList(list []string) graphql.Marshaler {
	out := make(graphql.Array, len(list))
	for i, s := range list {
		out[i] = graphql.MarshalString(s)
	}
	return out
}

func idList(list []string) graphql.Marshaler {
	out := make(graphql.Array, len(list))
	for i, id := range list {
		out[i] = graphql.MarshalID(id)
	}
	return out
}
