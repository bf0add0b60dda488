package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	cfgpkg "github.com/taoyao-code/midi-parser/internal/config"
	"github.com/taoyao-code/midi-parser/internal/logging"
	"github.com/taoyao-code/midi-parser/internal/protocol/midi"
	"github.com/taoyao-code/midi-parser/internal/protocol/midi/event"
	"github.com/taoyao-code/midi-parser/internal/session"
)

func main() {
	format := flag.String("format", "text", "output format: text, json or yaml")
	level := flag.String("log-level", "warn", "log level written to stderr")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: midiparse [-format text|json|yaml] [hex ...]\n")
		fmt.Fprintf(flag.CommandLine.Output(), "without arguments, hex lines are read from stdin\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	logger, err := logging.InitLogger(cfgpkg.LoggingConfig{Level: *level, Format: "console"})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	p, err := newPrinter(os.Stdout, *format)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	s := session.New(midi.WithLogger(logger))
	err = run(s, flag.Args(), os.Stdin, p)
	if cerr := p.close(); err == nil {
		err = cerr
	}
	if err != nil {
		logger.Error("midiparse failed", zap.Error(err))
		os.Exit(1)
	}
	if rest := s.BufferString(); rest != "" {
		fmt.Fprintf(os.Stderr, "pending: %s\n", rest)
	}
}

// run 参数逐个输入；无参数时逐行读取 stdin，消息可以跨行
func run(s *session.Session, args []string, in io.Reader, p printer) error {
	if len(args) > 0 {
		for _, a := range args {
			if err := p.print(s.Parse(a)); err != nil {
				return err
			}
		}
		return nil
	}
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 16<<20)
	for sc.Scan() {
		if err := p.print(s.Parse(sc.Text())); err != nil {
			return err
		}
	}
	return sc.Err()
}

type printer struct {
	w      io.Writer
	format string
	json   *json.Encoder
	yaml   *yaml.Encoder
}

func newPrinter(w io.Writer, format string) (printer, error) {
	p := printer{w: w, format: format}
	switch format {
	case "text":
	case "json":
		p.json = json.NewEncoder(w)
	case "yaml":
		p.yaml = yaml.NewEncoder(w)
	default:
		return p, fmt.Errorf("unknown format %q", format)
	}
	return p, nil
}

func (p printer) print(msgs []midi.Message) error {
	for _, m := range msgs {
		v := event.Describe(m)
		var err error
		switch p.format {
		case "json":
			err = p.json.Encode(v)
		case "yaml":
			err = p.yaml.Encode(v)
		default:
			_, err = fmt.Fprintln(p.w, v.Text())
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (p printer) close() error {
	if p.yaml != nil {
		return p.yaml.Close()
	}
	return nil
}
