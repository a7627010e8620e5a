package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shandley/stenograph/sessionlog"
	"github.com/shandley/stenograph/steno"
)

const version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// appOptions holds the persistent flag values shared by every
// subcommand.
type appOptions struct {
	vocabFiles     []string
	primitiveFiles []string
	extensions     []string
	sessionPath    string
	strict         bool
	verbose        bool
}

func newRootCmd() *cobra.Command {
	opts := &appOptions{}

	root := &cobra.Command{
		Use:   "steno",
		Short: "Compressed command notation for agent workflows",
		Long: `steno parses compressed commands like "dx:@data.csv +normalize .ts:edge"
into structured intents and routes them to direct primitive execution,
delegation, or clarification.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringArrayVar(&opts.vocabFiles, "vocab", nil, "vocabulary extension YAML file (repeatable)")
	pf.StringArrayVar(&opts.primitiveFiles, "primitives", nil, "primitive descriptor YAML file (repeatable)")
	pf.StringSliceVar(&opts.extensions, "extensions", nil, "registered extension names to enable")
	pf.StringVar(&opts.sessionPath, "session", "", "session log path for ^-reference resolution")
	pf.BoolVar(&opts.strict, "strict", false, "fail on unknown flags instead of degrading")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "log parser and mapper internals to stderr")

	root.AddCommand(
		newParseCmd(opts),
		newMapCmd(opts),
		newREPLCmd(opts),
		newMCPCmd(opts),
		newVersionCmd(),
	)
	return root
}

func newParseCmd(opts *appOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <command...>",
		Short: "Parse a steno command and print the intent as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := opts.logger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			parser, err := opts.buildParser(logger)
			if err != nil {
				return err
			}
			res, err := parser.Parse(strings.Join(args, " "))
			if err != nil {
				return err
			}
			printWarnings(cmd, res.Warnings)
			return printJSON(cmd, res.Intent)
		},
	}
}

func newMapCmd(opts *appOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "map <command...>",
		Short: "Parse a steno command and route it through the mapper",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := opts.logger()
			if err != nil {
				return err
			}
			defer logger.Sync()

			parser, err := opts.buildParser(logger)
			if err != nil {
				return err
			}
			mapper, log, err := opts.buildMapper(logger)
			if err != nil {
				return err
			}

			input := strings.Join(args, " ")
			res, err := parser.Parse(input)
			if err != nil {
				return err
			}
			printWarnings(cmd, res.Warnings)

			result := mapper.Map(res.Intent)
			if log != nil {
				if _, err := log.Append(recordFor(input, result)); err != nil {
					logger.Warn("session log append failed", zap.Error(err))
				}
			}
			return printJSON(cmd, result)
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the steno version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "steno %s\n", version)
		},
	}
}

func (o *appOptions) logger() (*zap.Logger, error) {
	if !o.verbose {
		return zap.NewNop(), nil
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

// buildParser registers every --vocab file and enables it alongside the
// --extensions names.
func (o *appOptions) buildParser(logger *zap.Logger) (*steno.Parser, error) {
	registry := steno.NewExtensionRegistry(logger)
	enabled := append([]string(nil), o.extensions...)
	for _, path := range o.vocabFiles {
		ext, err := steno.LoadExtensionFile(path)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(ext); err != nil {
			return nil, fmt.Errorf("register extension from %s: %w", path, err)
		}
		enabled = append(enabled, ext.Name)
	}
	return steno.NewParser(steno.Config{
		Registry:   registry,
		Vocabulary: steno.VocabConfig{Extensions: enabled},
		Strict:     o.strict,
		Logger:     logger,
	}), nil
}

// buildMapper loads every --primitives file into a registry and, when
// --session names a path, opens the session log as the reference
// resolver. The returned log is nil when no session path was given.
func (o *appOptions) buildMapper(logger *zap.Logger) (*steno.Mapper, *sessionlog.Log, error) {
	registry := steno.NewPrimitiveRegistry(logger)
	for _, path := range o.primitiveFiles {
		descs, err := steno.LoadPrimitivesFile(path)
		if err != nil {
			return nil, nil, err
		}
		for _, desc := range descs {
			if err := registry.Register(desc); err != nil {
				return nil, nil, fmt.Errorf("register primitive from %s: %w", path, err)
			}
		}
	}

	var log *sessionlog.Log
	var resolver steno.ReferenceResolver
	if o.sessionPath != "" {
		l, err := sessionlog.Open(o.sessionPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open session log: %w", err)
		}
		log = l
		resolver = l
	}

	return steno.NewMapper(steno.MapperConfig{
		Registry: registry,
		Resolver: resolver,
		Strict:   o.strict,
		Logger:   logger,
	}), log, nil
}

func recordFor(input string, result steno.MappingResult) sessionlog.Record {
	rec := sessionlog.Record{Input: input}
	switch result.Kind {
	case steno.ResultDirect:
		rec.Status = sessionlog.StatusExecuted
		rec.Summary = "direct: " + result.Direct.Primitive
		for _, v := range result.Direct.Inputs {
			rec.Inputs = append(rec.Inputs, v)
		}
	case steno.ResultDelegate:
		rec.Status = sessionlog.StatusDelegated
		rec.Summary = result.Delegate.Reason
	case steno.ResultClarify:
		rec.Status = sessionlog.StatusClarified
		rec.Summary = result.Clarify.Question
	case steno.ResultError:
		rec.Status = sessionlog.StatusFailed
		rec.Summary = result.Err.Message
	}
	return rec
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func printWarnings(cmd *cobra.Command, warnings []string) {
	for _, w := range warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
	}
}
