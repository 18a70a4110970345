package main

import (
	"errors"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/tomlworks/toml-go"
)

// convert reads the specified input file and re-writes the contents in the
// specified format.
func convert(args []string) error {
	c, err := newConverter(args)
	if err != nil {
		return err
	}
	return c.run()
}

type converter struct {
	inf  string
	outf string

	format toml.Format
	indent int
}

func newConverter(args []string) (*converter, error) {
	ret := &converter{format: toml.FormatTOML, indent: 2}

	i := 0
	for ; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			break
		}
		if arg == "-" || arg == "--" {
			i++
			break
		}

		switch arg {
		case "-o", "--output":
			i++
			if i >= len(args) {
				return nil, errors.New("no output file specified")
			}
			ret.outf = args[i]

		case "-f", "--output-format":
			i++
			if i >= len(args) {
				return nil, errors.New("no output format specified")
			}
			switch args[i] {
			case "toml":
				ret.format = toml.FormatTOML
			case "json":
				ret.format = toml.FormatJSON
			case "yaml":
				ret.format = toml.FormatYAML
			default:
				return nil, errors.New("unrecognized output format \"" + args[i] + "\"")
			}

		case "-i", "--indent":
			i++
			if i >= len(args) {
				return nil, errors.New("no indent width specified")
			}
			n, err := strconv.Atoi(args[i])
			if err != nil || n < 0 {
				return nil, errors.New("invalid indent width \"" + args[i] + "\"")
			}
			ret.indent = n

		default:
			return nil, errors.New("unrecognized option \"" + arg + "\"")
		}
	}

	switch len(args) - i {
	case 0:
		// Read from stdin.
	case 1:
		ret.inf = args[i]
	default:
		return nil, errors.New("too many input files")
	}

	return ret, nil
}

func (c *converter) run() (deferredErr error) {
	in, err := openInput(c.inf)
	if err != nil {
		return err
	}
	defer in.Close()

	data, err := io.ReadAll(in)
	if err != nil {
		return err
	}

	doc, err := toml.Parse(string(data))
	if err != nil {
		return err
	}

	out, err := openOutput(c.outf)
	if err != nil {
		return err
	}
	defer func() {
		closeErr := out.Close()
		if deferredErr == nil {
			deferredErr = closeErr
		}
	}()

	enc := toml.NewEncoder(out, c.format, c.indent)
	return enc.Encode(doc)
}

// openInput opens the input stream.
func openInput(inf string) (io.ReadCloser, error) {
	if inf == "" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(inf)
}

type uncloseable struct {
	w io.Writer
}

func (u uncloseable) Write(bs []byte) (int, error) {
	return u.w.Write(bs)
}

func (u uncloseable) Close() error {
	return nil
}

// openOutput opens the output stream.
func openOutput(outf string) (io.WriteCloser, error) {
	if outf == "" {
		return uncloseable{os.Stdout}, nil
	}
	return os.OpenFile(outf, os.O_RDWR|os.O_TRUNC|os.O_CREATE, 0644)
}
