// Package openapi builds the OpenAPI 3 document for the Folio API from the
// operations the router registers, reflecting request and response schemas
// from their Go types.
package openapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

// Tag names used to group operations in the viewers.
const (
	TagDocumentation = "Documentation"
	TagArticle       = "Article"
	TagAuthor        = "Author"
)

var defaultTags = openapi3.Tags{
	{Name: TagDocumentation, Description: "Documentation selection: Swagger, Redoc, or RapiDoc"},
	{Name: TagArticle, Description: "Adding, editing, viewing, and removing articles"},
	{Name: TagAuthor, Description: "Adding, editing, viewing, and removing authors and their articles"},
}

// Param describes a path parameter.
type Param struct {
	Name        string
	Description string
	Integer     bool // integer path value; string otherwise
}

// Operation describes one registered route.
type Operation struct {
	Method      string
	Path        string // chi-style pattern, e.g. /article/{slug}
	Tag         string
	ID          string // operationId
	Summary     string
	Description string
	Params      []Param

	// Request is a zero value of the body type (JSON or form encoded), or
	// nil when the operation takes no body.
	Request any

	// Upload names the multipart file field for upload operations.
	Upload string

	// Status and Response describe the success response. A nil Response
	// means the success response has no body.
	Status   int
	Response any

	// Errors lists the error statuses the operation can answer with. Each
	// carries the {"message": ...} error body.
	Errors []int
}

// Option configures the generator.
type Option func(*Generator)

// WithTitle sets the API title.
func WithTitle(title string) Option {
	return func(g *Generator) { g.title = title }
}

// WithVersion sets the API version.
func WithVersion(version string) Option {
	return func(g *Generator) { g.version = version }
}

// WithDescription sets the API description.
func WithDescription(description string) Option {
	return func(g *Generator) { g.description = description }
}

// WithServer adds a server URL.
func WithServer(url string) Option {
	return func(g *Generator) { g.servers = append(g.servers, url) }
}

// Generator collects operations and produces the OpenAPI document. It is
// safe for concurrent use; the document is built once and cached until the
// next Register.
type Generator struct {
	title       string
	version     string
	description string
	servers     []string

	mu         sync.RWMutex
	operations []Operation
	cached     *openapi3.T
}

// NewGenerator creates a generator with Folio defaults.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		title:       "Folio",
		version:     "1.0.0",
		description: "Blog content API: articles, authors, and their slugs.",
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Register adds an operation to the document.
func (g *Generator) Register(op Operation) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.operations = append(g.operations, op)
	g.cached = nil
}

// Operations returns a copy of the registered operations.
func (g *Generator) Operations() []Operation {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]Operation(nil), g.operations...)
}

// Generate returns the OpenAPI document for the registered operations.
func (g *Generator) Generate() *openapi3.T {
	g.mu.RLock()
	if doc := g.cached; doc != nil {
		g.mu.RUnlock()
		return doc
	}
	g.mu.RUnlock()

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cached != nil {
		return g.cached
	}

	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       g.title,
			Version:     g.version,
			Description: g.description,
		},
		Tags:  defaultTags,
		Paths: openapi3.NewPaths(),
		Components: &openapi3.Components{
			Schemas: openapi3.Schemas{},
		},
	}
	for _, url := range g.servers {
		doc.Servers = append(doc.Servers, &openapi3.Server{URL: url})
	}

	b := &builder{schemas: doc.Components.Schemas}
	b.schemas["Error"] = &openapi3.SchemaRef{
		Value: openapi3.NewObjectSchema().
			WithProperty("message", openapi3.NewStringSchema()).
			WithRequired([]string{"message"}),
	}

	for _, op := range g.operations {
		item := doc.Paths.Value(op.Path)
		if item == nil {
			item = &openapi3.PathItem{}
			doc.Paths.Set(op.Path, item)
		}
		item.SetOperation(op.Method, b.operation(op))
	}

	g.cached = doc
	return doc
}

// Validate checks the generated document against the OpenAPI 3 rules.
func (g *Generator) Validate(ctx context.Context) error {
	if err := g.Generate().Validate(ctx); err != nil {
		return fmt.Errorf("validate openapi document: %w", err)
	}
	return nil
}

// JSON returns the document encoded as JSON.
func (g *Generator) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(g.Generate(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode openapi json: %w", err)
	}
	return data, nil
}

// YAML returns the document encoded as YAML. The JSON encoding is decoded
// into a yaml.Node so key order survives, then re-emitted in block style.
func (g *Generator) YAML() ([]byte, error) {
	data, err := g.JSON()
	if err != nil {
		return nil, err
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("decode openapi json as yaml: %w", err)
	}
	resetStyle(&node)
	out, err := yaml.Marshal(&node)
	if err != nil {
		return nil, fmt.Errorf("encode openapi yaml: %w", err)
	}
	return out, nil
}

func resetStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		resetStyle(c)
	}
}

// JSONHandler serves the document as application/json.
func (g *Generator) JSONHandler() http.HandlerFunc {
	return g.serve("application/json", g.JSON)
}

// YAMLHandler serves the document as application/yaml.
func (g *Generator) YAMLHandler() http.HandlerFunc {
	return g.serve("application/yaml", g.YAML)
}

func (g *Generator) serve(contentType string, encode func() ([]byte, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := encode()
		if err != nil {
			http.Error(w, "Failed to encode OpenAPI document", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.Write(data)
	}
}

// builder turns Operations into kin-openapi values, registering named
// struct types as component schemas.
type builder struct {
	schemas openapi3.Schemas
}

func (b *builder) operation(op Operation) *openapi3.Operation {
	out := &openapi3.Operation{
		OperationID: op.ID,
		Summary:     op.Summary,
		Description: op.Description,
	}
	if op.Tag != "" {
		out.Tags = []string{op.Tag}
	}

	for _, p := range op.Params {
		schema := openapi3.NewStringSchema()
		if p.Integer {
			schema = openapi3.NewInt64Schema()
		}
		out.Parameters = append(out.Parameters, &openapi3.ParameterRef{
			Value: openapi3.NewPathParameter(p.Name).
				WithDescription(p.Description).
				WithSchema(schema),
		})
	}

	switch {
	case op.Upload != "":
		form := openapi3.NewObjectSchema().
			WithProperty(op.Upload, openapi3.NewStringSchema().WithFormat("binary")).
			WithRequired([]string{op.Upload})
		out.RequestBody = &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().
			WithRequired(true).
			WithContent(openapi3.Content{
				"multipart/form-data": openapi3.NewMediaType().WithSchema(form),
			})}
	case op.Request != nil:
		ref := b.schemaRef(reflect.TypeOf(op.Request), true)
		out.RequestBody = &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().
			WithRequired(true).
			WithContent(openapi3.Content{
				"application/json":                  &openapi3.MediaType{Schema: ref},
				"application/x-www-form-urlencoded": &openapi3.MediaType{Schema: ref},
			})}
	}

	status := op.Status
	if status == 0 {
		status = http.StatusOK
	}
	success := openapi3.NewResponse().WithDescription(http.StatusText(status))
	if op.Response != nil {
		success = success.WithJSONSchemaRef(b.schemaRef(reflect.TypeOf(op.Response), false))
	}
	out.Responses = openapi3.NewResponses(openapi3.WithStatus(status, &openapi3.ResponseRef{Value: success}))

	for _, code := range op.Errors {
		resp := openapi3.NewResponse().
			WithDescription(http.StatusText(code)).
			WithJSONSchemaRef(&openapi3.SchemaRef{Ref: "#/components/schemas/Error", Value: b.schemas["Error"].Value})
		out.Responses.Set(strconv.Itoa(code), &openapi3.ResponseRef{Value: resp})
	}
	return out
}

var timeType = reflect.TypeOf(time.Time{})

// schemaRef returns a reference to the component schema for a named struct
// type, registering it on first use, or an inline schema for anything else.
// Request schemas get an "Input" suffix and mark fields without omitempty
// as required.
func (b *builder) schemaRef(t reflect.Type, request bool) *openapi3.SchemaRef {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct || t == timeType || t.Name() == "" {
		return &openapi3.SchemaRef{Value: b.inline(t, request)}
	}

	name := t.Name()
	if request && !strings.HasSuffix(name, "Input") {
		name += "Input"
	}
	if _, ok := b.schemas[name]; !ok {
		// Placeholder first so self-referencing types terminate.
		b.schemas[name] = &openapi3.SchemaRef{Value: &openapi3.Schema{}}
		b.schemas[name].Value = b.object(t, request)
	}
	return &openapi3.SchemaRef{Ref: "#/components/schemas/" + name, Value: b.schemas[name].Value}
}

func (b *builder) inline(t reflect.Type, request bool) *openapi3.Schema {
	switch t.Kind() {
	case reflect.String:
		return openapi3.NewStringSchema()
	case reflect.Bool:
		return openapi3.NewBoolSchema()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return openapi3.NewInt32Schema()
	case reflect.Int64, reflect.Uint64:
		return openapi3.NewInt64Schema()
	case reflect.Float32, reflect.Float64:
		return openapi3.NewFloat64Schema()
	case reflect.Slice, reflect.Array:
		s := openapi3.NewArraySchema()
		s.Items = b.schemaRef(t.Elem(), request)
		return s
	case reflect.Map:
		s := openapi3.NewObjectSchema()
		s.AdditionalProperties = openapi3.AdditionalProperties{Schema: b.schemaRef(t.Elem(), request)}
		return s
	case reflect.Struct:
		if t == timeType {
			return openapi3.NewDateTimeSchema()
		}
		return b.object(t, request)
	default:
		return openapi3.NewObjectSchema()
	}
}

// object builds an object schema from the exported fields of t, using json
// tag names. Anonymous embedded structs are flattened the way
// encoding/json flattens them.
func (b *builder) object(t reflect.Type, request bool) *openapi3.Schema {
	schema := openapi3.NewObjectSchema()
	b.addFields(schema, t, request)
	return schema
}

func (b *builder) addFields(schema *openapi3.Schema, t reflect.Type, request bool) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")

		if field.Anonymous && name == "" {
			ft := field.Type
			for ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				b.addFields(schema, ft, request)
				continue
			}
		}
		if !field.IsExported() {
			continue
		}
		if name == "" {
			name = field.Name
		}

		prop := b.schemaRef(field.Type, request)
		if doc := field.Tag.Get("doc"); doc != "" && prop.Ref == "" {
			prop.Value.Description = doc
		}
		schema.Properties[name] = prop

		if request && !strings.Contains(opts, "omitempty") {
			schema.Required = append(schema.Required, name)
		}
	}
}
