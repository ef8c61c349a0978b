package main

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sightglass-data/sgtool/internal/plugin"
	"github.com/sightglass-data/sgtool/pkg/syncer"
)

func newSyncerCmd(rootFlags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "syncer",
		Short: "Inspect and exercise data syncers",
		Long:  "Inspect the builtin data syncers and dry-run syncer definitions without moving any data.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newSyncerLsCmd(rootFlags))
	cmd.AddCommand(newSyncerDescribeCmd(rootFlags))
	cmd.AddCommand(newSyncerCheckCmd(rootFlags))

	return cmd
}

func newSyncerLsCmd(rootFlags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List the builtin syncers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSyncerLs(cmd)
		},
	}
}

func runSyncerLs(cmd *cobra.Command) error {
	index, err := builtinIndex()
	if err != nil {
		return err
	}

	names := make([]string, 0, len(index))
	for name := range index {
		names = append(names, name)
	}
	sort.Strings(names)

	writer := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "NAME\tKIND\tSUMMARY")
	for _, name := range names {
		builtin := index[name]
		fmt.Fprintf(writer, "%s\t%s\t%s\n", name, builtin.kind, builtin.summary)
	}

	return writer.Flush()
}

func newSyncerDescribeCmd(rootFlags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <syncer>",
		Short: "Show a syncer's manifest and configuration fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSyncerDescribe(cmd, args[0])
		},
	}
}

func runSyncerDescribe(cmd *cobra.Command, name string) error {
	index, err := builtinIndex()
	if err != nil {
		return err
	}

	builtin, ok := index[name]
	if !ok {
		return newCommandError("describe", fmt.Sprintf("looking up syncer %q", name), errors.New("no builtin syncer with that name"), "Run 'sgtool syncer ls' to view the builtin syncers.")
	}

	manifest, err := plugin.ParseManifest(builtin.manifestYAML, "embedded manifest")
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Syncer:  %s\n", manifest.Name)
	fmt.Fprintf(out, "Kind:    %s\n", builtin.kind)
	fmt.Fprintf(out, "Class:   %s\n", manifest.SyncerClass)
	fmt.Fprintf(out, "Summary: %s\n", builtin.summary)

	fmt.Fprintf(out, "\nRequirements:\n")
	if len(manifest.Requirements) == 0 {
		fmt.Fprintln(out, "  (none)")
	}
	for _, req := range manifest.Requirements {
		fmt.Fprintf(out, "  - %s\n", req.String())
	}

	fmt.Fprintf(out, "\nConfiguration:\n")
	fields := configFields(reflect.TypeOf(builtin.factory()), "")
	if len(fields) == 0 {
		fmt.Fprintln(out, "  (none)")
		return nil
	}

	writer := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "  FIELD\tTYPE\tCONSTRAINTS")
	for _, field := range fields {
		fmt.Fprintf(writer, "  %s\t%s\t%s\n", field.Name, field.Type, valueOrFallback(field.Constraints, "-"))
	}

	return writer.Flush()
}

// configField is one configuration key a syncer decodes, discovered by
// reflecting over its struct tags.
type configField struct {
	Name        string
	Type        string
	Constraints string
}

// configFields collects the mapstructure-visible fields of a syncer struct.
// Squashed embeds flatten into the parent namespace, so Base and Database
// contribute their keys without a prefix; slices of structs contribute their
// element fields under a dotted prefix.
func configFields(t reflect.Type, prefix string) []configField {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}

	var fields []configField
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		name, opts, _ := strings.Cut(field.Tag.Get("mapstructure"), ",")
		if strings.Contains(opts, "squash") {
			fields = append(fields, configFields(field.Type, prefix)...)
			continue
		}
		if name == "-" {
			continue
		}
		if name == "" {
			name = strings.ToLower(field.Name)
		}

		fields = append(fields, configField{
			Name:        prefix + name,
			Type:        configTypeName(field.Type),
			Constraints: field.Tag.Get("validate"),
		})

		if elem, ok := structElem(field.Type); ok {
			fields = append(fields, configFields(elem, prefix+name+".")...)
		}
	}

	return fields
}

// structElem unwraps a slice-of-struct type so the walker can descend into
// the element's fields.
func structElem(t reflect.Type) (reflect.Type, bool) {
	if t.Kind() != reflect.Slice {
		return nil, false
	}
	elem := t.Elem()
	for elem.Kind() == reflect.Pointer {
		elem = elem.Elem()
	}
	if elem.Kind() != reflect.Struct {
		return nil, false
	}
	return elem, true
}

// configTypeName renders the type a configuration author writes, not the Go
// type the value decodes into.
func configTypeName(t reflect.Type) string {
	// ColumnType decodes from its configuration name.
	if t == reflect.TypeOf(syncer.ColumnType(0)) {
		return "string"
	}

	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "bool"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "int"
	case reflect.Float32, reflect.Float64:
		return "float"
	case reflect.Slice:
		return "list"
	case reflect.Map:
		return "map"
	default:
		return t.Kind().String()
	}
}

func newSyncerCheckCmd(rootFlags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "check <syncer://definition>",
		Short: "Construct a syncer from a definition without moving data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSyncerCheck(cmd, rootFlags, args[0])
		},
	}
}

func runSyncerCheck(cmd *cobra.Command, rootFlags *rootFlags, raw string) error {
	definition, err := plugin.ParseDefinition(raw)
	if err != nil {
		return err
	}

	app, err := newAppContext(rootFlags)
	if err != nil {
		return err
	}

	instance, err := app.Resolver.Construct(cmd.Context(), definition.Ref, definition.Config)
	if err != nil {
		return err
	}
	closeSyncer(cmd, instance, app)

	prefix := "OK"
	if supportsUnicode(cmd.OutOrStdout()) {
		prefix = "✓"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s syncer %q constructed successfully\n", prefix, definition.Ref)

	return nil
}

// closeSyncer releases the instance's store handle if it holds one. Close
// failures are logged rather than returned so they never mask the outcome of
// the run itself.
func closeSyncer(cmd *cobra.Command, instance syncer.Syncer, app *appContext) {
	closer, ok := instance.(syncer.Closer)
	if !ok {
		return
	}
	if err := closer.Close(cmd.Context()); err != nil {
		app.Log.Warn(fmt.Sprintf("closing syncer %s: %v", instance.Name(), err))
	}
}

func supportsUnicode(writer any) bool {
	if file, ok := writer.(*os.File); ok {
		return term.IsTerminal(int(file.Fd()))
	}
	return false
}

func valueOrFallback(value, fallback string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	return trimmed
}

func newCommandError(operation, context string, cause error, suggestion string) error {
	return &commandError{operation: operation, context: context, cause: cause, suggestion: suggestion}
}

type commandError struct {
	operation  string
	context    string
	cause      error
	suggestion string
}

func (e *commandError) Error() string {
	return fmt.Sprintf("Failed to %s: %s\n\nError: %v\n\nSuggestion: %s", e.operation, e.context, e.cause, e.suggestion)
}
