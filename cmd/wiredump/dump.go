package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/oy3o/wire"
	"github.com/oy3o/wire/envelope"
	"github.com/oy3o/wire/internal/log"
)

type dumpOptions struct {
	Raw      bool   // payloads are raw envelopes
	Hex      bool   // input is one hex encoded envelope, not a frame stream
	LogLevel string // zap level for diagnostics on stderr
}

func newRootCmd() *cobra.Command {
	opts := &dumpOptions{LogLevel: "warn"}

	cmd := &cobra.Command{
		Use:           "wiredump [file]",
		Short:         "Print the envelopes in a length-prefixed capture.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			l, err := log.Config{Level: opts.LogLevel, Development: true}.Build()
			if err != nil {
				return err
			}
			log.ReplaceGlobals(l)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return errors.Wrapf(err, "open %s", args[0])
				}
				defer f.Close()
				in = f
			}
			if opts.Hex {
				return dumpHex(cmd.OutOrStdout(), in, opts.Raw)
			}
			return dumpFrames(cmd.OutOrStdout(), in, opts.Raw)
		},
	}

	cmd.Flags().BoolVar(&opts.Raw, "raw", opts.Raw, "decode payloads as raw envelopes")
	cmd.Flags().BoolVar(&opts.Hex, "hex", opts.Hex, "read a single hex encoded envelope instead of frames")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", opts.LogLevel, "diagnostic log level")
	return cmd
}

func dumpFrames(w io.Writer, r io.Reader, raw bool) error {
	fr, err := wire.NewFrameReader(r)
	if err != nil {
		return err
	}
	var b wire.Buffer
	for n := 0; ; n++ {
		if err := fr.ReadFrame(&b); err != nil {
			if err == io.EOF {
				return nil
			}
			return errors.Wrapf(err, "frame %d", n)
		}
		if err := describe(w, b.Bytes(), raw); err != nil {
			log.L().Warn("undecodable frame", zap.Int("frame", n), zap.Error(err))
			fmt.Fprintf(w, "frame %d: %v\n", n, err)
		}
	}
}

func dumpHex(w io.Writer, r io.Reader, raw bool) error {
	text, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	data, err := hex.DecodeString(strings.TrimSpace(string(text)))
	if err != nil {
		return errors.Wrap(err, "decode hex")
	}
	return describe(w, data, raw)
}

// describe prints one envelope. Without the application's type catalog the
// typed body cannot be decoded, so it is shown as bytes next to its tag.
func describe(w io.Writer, data []byte, raw bool) error {
	b := wire.Wrap(data)
	h, err := envelope.ReadHeader(b)
	if err != nil {
		return err
	}
	if raw {
		p, err := b.ReadBytes()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s -> %s flags=%s raw len=%d %x\n", h.SenderID, h.TargetID, h.Flags, len(p), p)
	} else {
		tag, err := b.ReadUint32()
		if err != nil {
			return err
		}
		p, err := b.ReadBytes()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s -> %s flags=%s tag=%d len=%d %x\n", h.SenderID, h.TargetID, h.Flags, tag, len(p), p)
	}
	if n := b.Remaining(); n > 0 {
		return errors.Wrapf(wire.ErrTrailingData, "%d bytes", n)
	}
	return nil
}
