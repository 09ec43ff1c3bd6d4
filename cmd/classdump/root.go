package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/daimatz/classfile/pkg/classfile"
	"github.com/daimatz/classfile/pkg/classpath"
)

// options holds the global flags shared by every subcommand.
type options struct {
	verbose   bool
	jsonOut   bool
	classpath string
	jmod      string

	loader *classpath.Loader
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "classdump",
		Short: "Inspect JVM class files",
		Long: `classdump decodes JVM class files and prints their structure,
constant pool and bytecode.

A target is either a path to a .class file or a class name such as
java.lang.String, which is looked up on --classpath and then in the
java.base jmod.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup()
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log decoding at debug level to stderr")
	cmd.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "Output in JSON format")
	cmd.PersistentFlags().StringVar(&opts.classpath, "classpath", "", "Directories and jars to search, separated by "+string(os.PathListSeparator))
	cmd.PersistentFlags().StringVar(&opts.jmod, "jmod", "", "Path to java.base.jmod (default: $JAVA_BASE_JMOD, then $JAVA_HOME/jmods)")

	cmd.AddCommand(newInfoCmd(opts), newDisasmCmd(opts), newPoolCmd(opts))
	return cmd
}

func (o *options) setup() error {
	logger := zap.NewNop()
	if o.verbose {
		cfg := zap.NewDevelopmentConfig()
		cfg.OutputPaths = []string{"stderr"}
		l, err := cfg.Build()
		if err != nil {
			return fmt.Errorf("building logger: %w", err)
		}
		logger = l
	}
	classfile.SetLogger(logger.Named("classfile"))
	classpath.SetLogger(logger.Named("classpath"))

	sources, err := classpath.Parse(o.classpath)
	if err != nil {
		return err
	}
	jmod := o.jmod
	if jmod == "" {
		jmod = findJmodPath()
	}
	if jmod != "" {
		z, err := classpath.OpenZip(jmod)
		if err != nil {
			return err
		}
		sources = append(sources, z)
	}
	o.loader = classpath.NewLoader(sources...)
	return nil
}

// findJmodPath locates java.base.jmod from the environment.
func findJmodPath() string {
	if env := os.Getenv("JAVA_BASE_JMOD"); env != "" {
		return env
	}
	if javaHome := os.Getenv("JAVA_HOME"); javaHome != "" {
		p := filepath.Join(javaHome, "jmods", "java.base.jmod")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	matches, _ := filepath.Glob("/usr/lib/jvm/java-*-openjdk-*/jmods/java.base.jmod")
	if len(matches) > 0 {
		return matches[0]
	}
	return ""
}

// load resolves a command-line target to a decoded class.
func (o *options) load(target string) (*classfile.Class, error) {
	if strings.HasSuffix(target, ".class") {
		return classfile.ParseFile(target)
	}
	if _, err := os.Stat(target); err == nil {
		return classfile.ParseFile(target)
	}
	return o.loader.Load(strings.ReplaceAll(target, ".", "/"))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
