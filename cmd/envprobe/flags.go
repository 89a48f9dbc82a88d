package main

import "flag"

// cliOptions holds the parsed command-line surface. Flags override the
// corresponding config file values.
type cliOptions struct {
	TargetsFile string
	ConfigFile  string
	Mode        string
	JSMode      string
	Concurrency int
	OutputFile  string
}

// parseFlags defines and parses the CLI flags, consolidating aliases.
func parseFlags() cliOptions {
	targetsFile := flag.String("targets", "", "Path to a text file containing target hosts, one per line.")
	targetsFileAlias := flag.String("t", "", "Alias for -targets")

	configFile := flag.String("config", "", "Path to the YAML/JSON configuration file. If not set, searches default locations.")
	configFileAlias := flag.String("c", "", "Alias for -config")

	mode := flag.String("mode", "", "Output verbosity mode: debug, verbose, discovery or quiet (overrides config file)")
	modeAlias := flag.String("m", "", "Alias for -mode")

	jsMode := flag.String("jsmode", "", "JS extraction mode: pattern or eval (overrides config file)")
	concurrency := flag.Int("concurrency", 0, "Global concurrency bound (overrides config file)")
	outputFile := flag.String("output", "", "Output file path (overrides config file)")

	flag.Parse()

	if *targetsFile == "" && *targetsFileAlias != "" {
		*targetsFile = *targetsFileAlias
	}
	if *configFile == "" && *configFileAlias != "" {
		*configFile = *configFileAlias
	}
	if *mode == "" && *modeAlias != "" {
		*mode = *modeAlias
	}

	return cliOptions{
		TargetsFile: *targetsFile,
		ConfigFile:  *configFile,
		Mode:        *mode,
		JSMode:      *jsMode,
		Concurrency: *concurrency,
		OutputFile:  *outputFile,
	}
}
