package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mixcode/pngchunk"
	"github.com/mixcode/pngchunk/source"
)

var (
	typeColor = color.New(color.FgCyan, color.Bold)
	dimColor  = color.New(color.FgHiBlack)
	okColor   = color.New(color.FgGreen)
)

// shared state of a command invocation
type app struct {
	cfg     source.Config
	fetcher source.Fetcher // nil: built from cfg on first use
	now     func() time.Time
}

func newApp() *app {
	return &app{cfg: source.ConfigFromEnv(), now: time.Now}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:          "edmipng",
		Short:        "EDMIPNG - Encode and Decode Messages In PNG",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&a.cfg.Dir, "dir", a.cfg.Dir,
		"directory for files derived from URL sources (default $"+source.DirEnvKey+")")
	root.PersistentFlags().DurationVar(&a.cfg.Timeout, "timeout", a.cfg.Timeout, "timeout of URL fetches")

	root.AddCommand(
		&cobra.Command{
			Use:   "encode SOURCE CHUNK_TYPE MESSAGE [OUTPUT]",
			Short: "Encode new message into png chunk",
			Args:  cobra.RangeArgs(3, 4),
			RunE:  a.encode,
		},
		&cobra.Command{
			Use:   "decode SOURCE CHUNK_TYPE",
			Short: "Decode message from png chunk",
			Args:  cobra.ExactArgs(2),
			RunE:  a.decode,
		},
		&cobra.Command{
			Use:   "remove SOURCE CHUNK_TYPE [OUTPUT]",
			Short: "Remove chunk with message from png",
			Args:  cobra.RangeArgs(2, 3),
			RunE:  a.remove,
		},
		&cobra.Command{
			Use:   "print SOURCE",
			Short: "Print all chunks with encoded messages",
			Args:  cobra.ExactArgs(1),
			RunE:  a.print,
		},
		&cobra.Command{
			Use:   "chunks SOURCE",
			Short: "List every chunk of the png",
			Args:  cobra.ExactArgs(1),
			RunE:  a.chunks,
		},
	)
	return root
}

// load and parse the source
func (a *app) open(s string) (*source.Source, *pngchunk.PNG, error) {
	src, err := source.Parse(s)
	if err != nil {
		return nil, nil, err
	}
	if a.fetcher == nil {
		a.fetcher = source.NewFetcher(a.cfg)
	}
	b, err := src.Load(a.fetcher)
	if err != nil {
		return nil, nil, err
	}
	p, err := pngchunk.ParsePNG(b)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "parse %s", src)
	}
	return src, p, nil
}

// write p to the explicit output, or to the path derived from src
func (a *app) save(src *source.Source, p *pngchunk.PNG, args []string, outIdx int) (string, error) {
	var out string
	if len(args) > outIdx {
		out = args[outIdx]
	} else {
		var err error
		if out, err = src.OutputPath(a.cfg, a.now()); err != nil {
			return "", err
		}
	}
	if err := os.WriteFile(out, p.Bytes(), 0644); err != nil {
		return "", errors.Wrap(err, "write png file")
	}
	return out, nil
}

func (a *app) encode(cmd *cobra.Command, args []string) error {
	ct, err := pngchunk.ParseChunkType(args[1])
	if err != nil {
		return errors.Wrap(err, "couldn't parse chunk type")
	}
	if !ct.IsValid() {
		log.Printf("warning: chunk type %s has the reserved bit set", ct)
	}
	if !ct.IsSpecial() {
		log.Printf("warning: chunk type %s is not ancillary and private; it will not be listed by print", ct)
	}

	src, p, err := a.open(args[0])
	if err != nil {
		return err
	}
	p.AppendChunk(pngchunk.NewChunk(ct, []byte(args[2])))

	out, err := a.save(src, p, args, 3)
	if err != nil {
		return err
	}
	okColor.Fprintf(cmd.OutOrStdout(), "message encoded in %s chunk, written to %s\n", ct, out)
	return nil
}

func (a *app) decode(cmd *cobra.Command, args []string) error {
	ct, err := pngchunk.ParseChunkType(args[1])
	if err != nil {
		return errors.Wrap(err, "couldn't parse chunk type")
	}
	_, p, err := a.open(args[0])
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	ch := p.ChunkByType(ct)
	if ch == nil {
		fmt.Fprintf(w, "Chunk with given type (%s) doesn't exist\n", ct)
		return nil
	}
	s, err := ch.DataAsString()
	if err != nil {
		log.Printf("warning: %s chunk does not hold text", ct)
		dimColor.Fprintf(w, "<binary, %d bytes>\n", ch.Length())
		return nil
	}
	fmt.Fprintln(w, s)
	return nil
}

func (a *app) remove(cmd *cobra.Command, args []string) error {
	ct, err := pngchunk.ParseChunkType(args[1])
	if err != nil {
		return errors.Wrap(err, "couldn't parse chunk type")
	}
	src, p, err := a.open(args[0])
	if err != nil {
		return err
	}
	if _, err = p.RemoveChunk(ct); err != nil {
		return errors.Wrap(err, "couldn't remove chunk")
	}

	out, err := a.save(src, p, args, 2)
	if err != nil {
		return err
	}
	okColor.Fprintf(cmd.OutOrStdout(), "%s chunk removed, written to %s\n", ct, out)
	return nil
}

func (a *app) print(cmd *cobra.Command, args []string) error {
	_, p, err := a.open(args[0])
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "Special chunk types inside file (private + ancillary):")
	for _, e := range p.SpecialChunks() {
		typeColor.Fprint(w, e.Type.String())
		if e.Decoded {
			fmt.Fprintf(w, ": %s\n", e.Text)
		} else {
			dimColor.Fprintf(w, ": <binary, %d bytes>\n", e.Length)
		}
	}
	return nil
}

func (a *app) chunks(cmd *cobra.Command, args []string) error {
	_, p, err := a.open(args[0])
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	for i, ch := range p.Chunks() {
		fmt.Fprintf(w, "%3d ", i)
		typeColor.Fprint(w, ch.Type().String())
		fmt.Fprintf(w, " %8d %08x %s", ch.Length(), ch.CRC(), flags(ch.Type()))
		if preview := textPreview(ch); preview != "" {
			dimColor.Fprintf(w, " %q", preview)
		}
		fmt.Fprintln(w)
	}
	return nil
}

// four letters in the order of the type bytes:
// critical/ancillary, public/private, reserved, unsafe/safe to copy
func flags(t pngchunk.ChunkType) string {
	f := []byte("apRs")
	if t.IsCritical() {
		f[0] = 'C'
	}
	if t.IsPublic() {
		f[1] = 'P'
	}
	if !t.IsReservedBitValid() {
		f[2] = 'r'
	}
	if !t.IsSafeToCopy() {
		f[3] = 'U'
	}
	return string(f)
}

const previewLen = 32

// short text of textual chunks; empty for everything else
func textPreview(ch *pngchunk.Chunk) string {
	var s string
	switch {
	case ch.Type().IsSpecial():
		var err error
		if s, err = ch.DataAsString(); err != nil {
			return ""
		}
	case ch.Type().String() == "tEXt":
		var err error
		if s, err = ch.DataAsLatin1(); err != nil {
			return ""
		}
	default:
		return ""
	}
	r := []rune(s)
	if len(r) > previewLen {
		s = string(r[:previewLen]) + "..."
	}
	return s
}
