// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"text/tabwriter"

	"github.com/gx-org/gumath"
	"github.com/gx-org/gumath/array"
	"github.com/gx-org/gumath/dispatch"
	"github.com/gx-org/gumath/encoding/yamldoc"
	"github.com/gx-org/gumath/fmt/fmtview"
	"github.com/gx-org/gumath/metrics"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
)

type globalFlags struct {
	verbose  bool
	maxBytes int
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:          "gumath",
		Short:        "Run math kernels on arrays",
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "log kernel resolution")
	root.PersistentFlags().IntVar(&flags.maxBytes, "max-bytes", 0, "maximum number of bytes of an output (0 for no limit)")
	root.AddCommand(newKernelsCmd(flags), newRunCmd(flags))
	return root
}

func (f *globalFlags) registry(cmd *cobra.Command, opts ...dispatch.Option) (*dispatch.Registry, error) {
	level := slog.LevelInfo
	if f.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	var allocOpts []array.AllocOption
	if f.maxBytes > 0 {
		allocOpts = append(allocOpts, array.WithMaxBytes(f.maxBytes))
	}
	opts = append([]dispatch.Option{
		dispatch.WithLogger(logger),
		dispatch.WithAllocator(array.NewGoAllocator(allocOpts...)),
	}, opts...)
	return gumath.New(opts...)
}

func newKernelsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "kernels [op...]",
		Short: "List the registered kernels",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := flags.registry(cmd)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "OP\tKERNEL\tSIGNATURE")
			for _, k := range r.Kernels() {
				if len(args) > 0 && !slices.Contains(args, k.Op) {
					continue
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", k.Op, k.Name, k.Sig)
			}
			return w.Flush()
		},
	}
}

func newRunCmd(flags *globalFlags) *cobra.Command {
	var (
		file        string
		format      string
		showMetrics bool
	)
	cmd := &cobra.Command{
		Use:   "run <op>",
		Short: "Call an operation on the arguments of a YAML document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "yaml" && format != "text" {
				return errors.Errorf("unknown output format %q: want yaml or text", format)
			}
			in := cmd.InOrStdin()
			if file != "-" {
				f, err := os.Open(file)
				if err != nil {
					return errors.Wrapf(err, "cannot open arguments")
				}
				defer f.Close()
				in = f
			}
			views, err := yamldoc.Decode(in)
			if err != nil {
				return err
			}
			reg := prometheus.NewRegistry()
			r, err := flags.registry(cmd, dispatch.WithObserver(metrics.NewObserver(reg)))
			if err != nil {
				return err
			}
			out, callErr := r.Call(args[0], views...)
			if showMetrics {
				if err := writeMetrics(cmd.ErrOrStderr(), reg); err != nil {
					return err
				}
			}
			if callErr != nil {
				return callErr
			}
			if format == "text" {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), fmtview.Sprint(out))
				return err
			}
			return yamldoc.Encode(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", "YAML document with the arguments (- for standard input)")
	cmd.Flags().StringVarP(&format, "output", "o", "yaml", "output format: yaml or text")
	cmd.Flags().BoolVar(&showMetrics, "metrics", false, "print the dispatch metrics on standard error")
	return cmd
}

func writeMetrics(w io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return errors.Wrap(err, "cannot gather metrics")
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
