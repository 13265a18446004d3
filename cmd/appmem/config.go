package main

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/srodi/appmem/pkg/resolve"
	"github.com/srodi/appmem/pkg/types"
	"github.com/srodi/appmem/pkg/ui"
)

const envPrefix = "APPMEM"

const (
	sourceProcfs = "procfs"
	sourcePsutil = "psutil"
)

type runConfig struct {
	limit     int
	javaBy    types.JavaMode
	launchers []string
	source    string
	procRoot  string
	format    ui.Format
	noColor   bool
	verbose   bool
}

func defaultSource() string {
	if runtime.GOOS == "linux" {
		return sourceProcfs
	}
	return sourcePsutil
}

func registerFlags(flags *pflag.FlagSet) {
	flags.String("java-by", string(types.JavaAuto), "how java processes are named: auto, jar or main")
	flags.String("source", defaultSource(), "process source: procfs (linux) or psutil")
	flags.String("proc-root", "/proc", "proc filesystem mount point for the procfs source")
	flags.StringP("output", "o", string(ui.FormatTable), "output format: table or yaml")
	flags.StringSlice("launchers", resolve.DefaultLaunchers, "interpreted launchers named by their arguments")
	flags.Bool("no-color", false, "disable colored output")
	flags.BoolP("verbose", "v", false, "log skipped processes to stderr")
	flags.String("config", "", "optional YAML config file")
}

// newViper layers defaults, APPMEM_* environment variables, an optional
// config file and flags, in increasing priority.
func newViper(flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	v.SetDefault("limit", strconv.Itoa(types.DefaultLimit))
	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("binding flags: %w", err)
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w: reading config %s: %w", types.ErrConfig, path, err)
		}
	}
	return v, nil
}

// loadConfig validates every option before any process is read.
func loadConfig(v *viper.Viper, args []string) (runConfig, error) {
	if len(args) > 1 {
		return runConfig{}, fmt.Errorf("%w: expected at most one limit argument, got %d", types.ErrConfig, len(args))
	}
	if len(args) == 1 {
		v.Set("limit", args[0])
	}

	limit, err := parseLimit(v.GetString("limit"))
	if err != nil {
		return runConfig{}, err
	}
	javaBy, err := types.ParseJavaMode(v.GetString("java-by"))
	if err != nil {
		return runConfig{}, err
	}
	format, err := ui.ParseFormat(v.GetString("output"))
	if err != nil {
		return runConfig{}, err
	}
	source, err := parseSource(v.GetString("source"))
	if err != nil {
		return runConfig{}, err
	}

	return runConfig{
		limit:     limit,
		javaBy:    javaBy,
		launchers: splitList(v.GetStringSlice("launchers")),
		source:    source,
		procRoot:  v.GetString("proc-root"),
		format:    format,
		noColor:   v.GetBool("no-color"),
		verbose:   v.GetBool("verbose"),
	}, nil
}

// parseLimit accepts a non-negative row count; zero means no cap.
func parseLimit(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return types.DefaultLimit, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: limit must be a non-negative integer, got %q", types.ErrConfig, s)
	}
	return n, nil
}

func parseSource(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return defaultSource(), nil
	case sourceProcfs, "proc":
		return sourceProcfs, nil
	case sourcePsutil:
		return sourcePsutil, nil
	}
	return "", fmt.Errorf("%w: unknown source %q (want procfs or psutil)", types.ErrConfig, s)
}

// splitList flattens comma separated entries, which is how lists arrive from
// the environment.
func splitList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
