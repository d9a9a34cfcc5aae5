package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/atiedebee/huff/huffman"
	"github.com/atiedebee/huff/internal/source"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/cespare/xxhash/v2"
	"github.com/op/go-logging"
)

const progName = "huff"

var log = logging.MustGetLogger(progName)

type Mode uint8

const (
	CompressMode Mode = iota
	DecompressMode
)

const suffix = ".huf"

const usageMessage = `usage: huff [-c | -d] [-p] [-v] [-unpack] [-debug] [-o OUTPUT] [INPUT [OUTPUT]]

INPUT defaults to stdin and OUTPUT to stdout. An INPUT containing glob
characters (*, ?, [, {) is expanded with ** support and each match is
processed on its own: FILE compresses to FILE.huf, FILE.huf decompresses to
FILE, and -o names the directory they are written to.

  -c      compress (default)
  -d      decompress
  -o      output path
  -p      print the Huffman tree to stderr
  -v      after compressing, decode the output and compare digests
  -unpack unpack gzip, xz or zstd inputs before compressing; a batch
          output is then named after the unpacked file
  -debug  verbose logging
`

type config struct {
	mode      Mode
	input     string
	output    string
	printTree bool
	verify    bool
	unpack    bool
	debug     bool
}

func parseArgs(args []string) (*config, error) {
	fs := flag.NewFlagSet(progName, flag.ContinueOnError)
	fs.Usage = func() {}
	fs.SetOutput(io.Discard)

	var cfg config
	var compress, decompress bool
	fs.BoolVar(&compress, "c", false, "")
	fs.BoolVar(&decompress, "d", false, "")
	fs.StringVar(&cfg.output, "o", "", "")
	fs.BoolVar(&cfg.printTree, "p", false, "")
	fs.BoolVar(&cfg.verify, "v", false, "")
	fs.BoolVar(&cfg.unpack, "unpack", false, "")
	fs.BoolVar(&cfg.debug, "debug", false, "")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	switch {
	case compress && decompress:
		return nil, errors.New("-c and -d are mutually exclusive")
	case decompress:
		cfg.mode = DecompressMode
	}

	rest := fs.Args()
	if len(rest) > 2 {
		return nil, fmt.Errorf("too many arguments: %q", rest[2:])
	}
	if len(rest) > 0 {
		cfg.input = rest[0]
	}
	if len(rest) > 1 {
		if cfg.output != "" && cfg.output != rest[1] {
			return nil, errors.New("output given both with -o and as an argument")
		}
		cfg.output = rest[1]
	}

	if cfg.verify && cfg.mode == DecompressMode {
		return nil, errors.New("-v only applies to compression")
	}
	return &cfg, nil
}

func isStdio(name string) bool {
	return name == "" || name == "-"
}

func isGlob(name string) bool {
	return strings.ContainsAny(name, "*?[{")
}

func run(cfg *config) error {
	if isGlob(cfg.input) {
		return runBatch(cfg)
	}
	return runOne(cfg, cfg.input, cfg.output)
}

// batchOutput names the file a batch match is written to.
func batchOutput(name string, mode Mode, dir string) string {
	out := name + suffix
	if mode == DecompressMode {
		if strings.HasSuffix(name, suffix) {
			out = strings.TrimSuffix(name, suffix)
		} else {
			out = name + ".out"
		}
	}
	if dir != "" {
		out = filepath.Join(dir, filepath.Base(out))
	}
	return out
}

func runBatch(cfg *config) error {
	matches, err := doublestar.FilepathGlob(cfg.input, doublestar.WithFilesOnly())
	if err != nil {
		return fmt.Errorf("%s: %w", cfg.input, err)
	}
	if len(matches) == 0 {
		return fmt.Errorf("%s: no files match", cfg.input)
	}

	failed := 0
	for _, name := range matches {
		if cfg.mode == CompressMode && strings.HasSuffix(name, suffix) {
			log.Infof("%s: already compressed, skipping", name)
			continue
		}
		out := name
		if cfg.unpack && cfg.mode == CompressMode {
			out = unpackedName(name)
		}
		if err := runOne(cfg, name, batchOutput(out, cfg.mode, cfg.output)); err != nil {
			log.Errorf("%s: %v", name, err)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(matches))
	}
	return nil
}

func runOne(cfg *config, in, out string) (err error) {
	var w io.Writer = os.Stdout
	if !isStdio(out) {
		f, cerr := os.Create(out)
		if cerr != nil {
			return cerr
		}
		defer func() {
			if cerr := f.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				os.Remove(out)
			}
		}()
		w = f
	}

	var sum *huffman.Summary
	switch cfg.mode {
	case CompressMode:
		var src huffman.Source
		src, err = openSource(in, cfg.unpack)
		if err != nil {
			return err
		}
		sum, err = huffman.Encode(w, src)
		if err != nil {
			return err
		}
		log.Infof("%s: %d -> %d bytes, %d symbols, %d bits",
			displayName(in), sum.InputBytes, sum.OutputBytes, sum.Symbols, sum.TotalBits)

		if cfg.verify {
			if isStdio(out) {
				log.Warning("cannot verify output written to stdout")
			} else if err = verify(src, out); err != nil {
				return err
			}
		}

	case DecompressMode:
		var r io.Reader = os.Stdin
		if !isStdio(in) {
			f, err := os.Open(in)
			if err != nil {
				return err
			}
			defer f.Close()
			r = f
		}
		sum, err = huffman.Decode(w, bufio.NewReader(r))
		if err != nil {
			return fmt.Errorf("%s: %w", displayName(in), err)
		}
		log.Infof("%s: %d -> %d bytes", displayName(in), sum.InputBytes, sum.OutputBytes)
	}

	if cfg.printTree {
		sum.Tree.Print(os.Stderr)
	}
	return nil
}

func displayName(name string) string {
	if isStdio(name) {
		return "<stdin>"
	}
	return name
}

// openSource returns the input to compress. Packed inputs are read as they
// are unless unpack is set.
func openSource(name string, unpack bool) (huffman.Source, error) {
	if isStdio(name) {
		return source.Buffer(os.Stdin, unpack)
	}
	if !unpack {
		return &source.File{Path: name}, nil
	}

	f, err := source.Probe(name)
	if err != nil {
		return nil, err
	}
	if f.Format != source.Plain {
		log.Infof("%s: unpacking %v input", name, f.Format)
	}
	return f, nil
}

func unpackedName(name string) string {
	f, err := source.Probe(name)
	if err != nil {
		return name
	}
	return source.UnpackedName(name, f.Format)
}

// verify decodes the compressed file at path and checks that it reproduces
// src exactly.
func verify(src huffman.Source, path string) error {
	r, err := src.Open()
	if err != nil {
		return err
	}
	want := xxhash.New()
	_, err = io.Copy(want, r)
	r.Close()
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	got := xxhash.New()
	if _, err := huffman.Decode(got, f); err != nil {
		return fmt.Errorf("verifying %s: %w", path, err)
	}
	if got.Sum64() != want.Sum64() {
		return fmt.Errorf("verifying %s: digest %016x, want %016x", path, got.Sum64(), want.Sum64())
	}
	log.Debugf("%s: verified, digest %016x", path, got.Sum64())
	return nil
}

var leveledLogBackend logging.LeveledBackend

func startLogging() {
	backend := logging.NewLogBackend(os.Stderr, progName+": ", 0)
	formatter := logging.MustStringFormatter("%{level:.4s} %{module} | %{message}")
	leveled := logging.AddModuleLevel(logging.NewBackendFormatter(backend, formatter))
	leveled.SetLevel(logging.INFO, "")
	logging.SetBackend(leveled)
	leveledLogBackend = leveled
}

func main() {
	startLogging()

	cfg, err := parseArgs(os.Args[1:])
	if err == flag.ErrHelp {
		io.WriteString(os.Stdout, usageMessage)
		os.Exit(0)
	} else if err != nil {
		log.Error(err)
		io.WriteString(os.Stderr, usageMessage)
		os.Exit(2)
	}

	if cfg.debug {
		leveledLogBackend.SetLevel(logging.DEBUG, "")
	}

	if err := run(cfg); err != nil {
		log.Fatal(err)
	}
}
