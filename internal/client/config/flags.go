package config

import (
	"flag"
	"io"
	"time"
)

type flagValues struct {
	configFile string
	server     string
	tokenFile  string
	timeout    int
	set        map[string]bool
	rest       []string
}

// parseFlags reads the global flags in front of the command.
//
// Supported flags:
//
//	-c, -config string   JSON config file
//	-s string            server base URL
//	-f string            token file
//	-t int               request timeout in seconds
func parseFlags(args []string) (*flagValues, error) {
	v := &flagValues{set: map[string]bool{}}

	fs := flag.NewFlagSet("gophnotes-cli", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&v.configFile, "config", "", "path to JSON config file")
	fs.StringVar(&v.configFile, "c", "", "path to JSON config file (short)")
	fs.StringVar(&v.server, "s", "", "server base URL")
	fs.StringVar(&v.tokenFile, "f", "", "token file")
	fs.IntVar(&v.timeout, "t", 0, "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) { v.set[f.Name] = true })
	v.rest = fs.Args()

	return v, nil
}

func (v *flagValues) apply(cfg *Config) {
	if v.set["s"] {
		cfg.ServerURL = v.server
	}
	if v.set["f"] {
		cfg.TokenFile = v.tokenFile
	}
	if v.set["t"] {
		cfg.RequestTimeout = time.Duration(v.timeout) * time.Second
	}
}
