// framectl: inspect and build MTProto transport frames from hex dumps.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"dev.c0redev.mtpwire/internal/bytebuf"
	"dev.c0redev.mtpwire/internal/crypto"
	"dev.c0redev.mtpwire/internal/transport"
)

var version = "0.1.0"

var logger = zerolog.Nop()

func main() {
	logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()

	root := &cobra.Command{
		Use:           "framectl",
		Short:         "Inspect and build MTProto transport frames",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(decodeCmd(), packCmd(), keyidCmd(), versionCmd())
	if err := root.Execute(); err != nil {
		logger.Error().Err(err).Msg("framectl")
		os.Exit(1)
	}
}

func newTransport(name string) (transport.Transport, error) {
	switch name {
	case "abridged":
		return transport.NewAbridged(), nil
	case "intermediate":
		return transport.NewIntermediate(), nil
	case "full":
		return transport.NewFull(), nil
	}
	return nil, fmt.Errorf("unknown transport %q (want abridged, intermediate or full)", name)
}

func readHexInput(path string, args []string) ([]byte, error) {
	if len(args) > 0 {
		return crypto.FromHex(args[0])
	}
	var (
		raw []byte
		err error
	)
	if path == "" || path == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	return crypto.FromHex(string(raw))
}

func decodeCmd() *cobra.Command {
	var transportName, inPath string
	cmd := &cobra.Command{
		Use:   "decode [hex]",
		Short: "Split a hex-encoded receive stream into messages",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := newTransport(transportName)
			if err != nil {
				return err
			}
			stream, err := readHexInput(inPath, args)
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			for n := 0; ; n++ {
				off, err := tr.Unpack(stream)
				if errors.Is(err, transport.ErrShortRead) {
					if len(stream) > 0 {
						logger.Warn().Int("pending", len(stream)).Msg("trailing partial frame")
					}
					logger.Info().Int("messages", n).Msg("stream decoded")
					return nil
				}
				if err != nil {
					return fmt.Errorf("frame %d: %w", n, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), crypto.ToHex(stream[off.DataStart:off.DataEnd]))
				stream = stream[off.NextOffset:]
			}
		},
	}
	cmd.Flags().StringVarP(&transportName, "transport", "t", "intermediate", "framing scheme")
	cmd.Flags().StringVarP(&inPath, "in", "i", "-", "hex input file (- for stdin)")
	return cmd
}

func packCmd() *cobra.Command {
	var transportName string
	cmd := &cobra.Command{
		Use:   "pack <hex> [hex...]",
		Short: "Frame hex payloads as one outgoing stream",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := newTransport(transportName)
			if err != nil {
				return err
			}
			var stream []byte
			for i, arg := range args {
				payload, err := crypto.FromHex(arg)
				if err != nil {
					return fmt.Errorf("payload %d: %w", i, err)
				}
				if len(payload)%4 != 0 {
					return fmt.Errorf("payload %d: length %d not padded to 4 bytes", i, len(payload))
				}
				b := bytebuf.New(len(payload) + 16)
				b.Extend(payload)
				tr.Pack(b)
				stream = append(stream, b.Bytes()...)
			}
			fmt.Fprintln(cmd.OutOrStdout(), crypto.ToHex(stream))
			return nil
		},
	}
	cmd.Flags().StringVarP(&transportName, "transport", "t", "intermediate", "framing scheme")
	return cmd
}

func keyidCmd() *cobra.Command {
	var inPath string
	cmd := &cobra.Command{
		Use:   "keyid [hex]",
		Short: "Print the id and aux hash of a 256-byte authorization key",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readHexInput(inPath, args)
			if err != nil {
				return fmt.Errorf("read key: %w", err)
			}
			if len(raw) != crypto.AuthKeySize {
				return fmt.Errorf("key must be %d bytes, got %d", crypto.AuthKeySize, len(raw))
			}
			var data [crypto.AuthKeySize]byte
			copy(data[:], raw)
			key := crypto.AuthKeyFromBytes(data)
			id, aux := key.ID(), key.AuxHash()
			fmt.Fprintf(cmd.OutOrStdout(), "id:       %s\n", crypto.ToHex(id[:]))
			fmt.Fprintf(cmd.OutOrStdout(), "aux_hash: %s\n", crypto.ToHex(aux[:]))
			return nil
		},
	}
	cmd.Flags().StringVarP(&inPath, "in", "i", "-", "hex input file (- for stdin)")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show framectl version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "framectl version %s\n", version)
		},
	}
}
