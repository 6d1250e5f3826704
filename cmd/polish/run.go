// Copyright 2026 The Seqpolish Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"github.com/seqpolish/polish/polisher"
)

// runFlags declares run's options with the standard flag package, in the
// same style cmd/bio-pileup/main.go declares its own — cobra only dispatches
// to the subcommand here, it does not parse these flags itself.
var (
	runFlags = flag.NewFlagSet("run", flag.ContinueOnError)

	outPath        = runFlags.String("out", "polished.fasta", "Output FASTA path")
	kind           = runFlags.String("type", "consensus", `Overlap type: "consensus" (kC, dedup to the longest overlap per query) or "fragment" (kF, keep every overlap)`)
	windowLength   = runFlags.Int("window-length", polisher.DefaultConfig.WindowLength, "Window length in bases")
	overlapPercent = runFlags.Float64("overlap-percentage", polisher.DefaultConfig.OverlapPercentage, "Fraction of window-length each non-first window's margin overlaps its neighbor, in [0, 0.5)")
	qualThreshold  = runFlags.Float64("quality-threshold", polisher.DefaultConfig.QualityThreshold, "Minimum mean Phred quality a layer's query span must have to be kept")
	errThreshold   = runFlags.Float64("error-threshold", polisher.DefaultConfig.ErrorThreshold, "Maximum overlap error rate to retain")
	match          = runFlags.Int("match", polisher.DefaultConfig.Match, "Alignment match score")
	mismatch       = runFlags.Int("mismatch", polisher.DefaultConfig.Mismatch, "Alignment mismatch score")
	gap            = runFlags.Int("gap", polisher.DefaultConfig.Gap, "Alignment gap score")
	trim           = runFlags.Bool("trim", polisher.DefaultConfig.Trim, "Trim leading/trailing unpolished backbone from each window")
	numThreads     = runFlags.Int("threads", polisher.DefaultConfig.NumThreads, "Number of worker goroutines")
	dropUnpolished = runFlags.Bool("drop-unpolished", polisher.DefaultConfig.DropUnpolishedSequences, "Omit a target entirely if none of its windows were polished")
	verbose        = runFlags.Bool("verbose", false, "Report progress on stderr")
)

func runUsage() {
	fmt.Fprintf(os.Stderr, "Usage: polish run [OPTIONS] <targets> <queries> <overlaps>\n")
	fmt.Fprintf(os.Stderr, "Other options:\n")
	runFlags.PrintDefaults()
}

// runCmd hands its raw argument slice to runFlags instead of letting cobra
// parse it, so the teacher's flag-declaration idiom survives under cobra's
// subcommand dispatch.
var runCmd = &cobra.Command{
	Use:                "run",
	Short:              "Polish targets against queries and a precomputed overlap set",
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		runFlags.Usage = runUsage
		if err := runFlags.Parse(args); err != nil {
			return err
		}
		positional := runFlags.Args()
		if len(positional) != 3 {
			runUsage()
			return errors.Errorf("run: expected <targets> <queries> <overlaps>, got %d positional arguments", len(positional))
		}
		return runPolish(positional[0], positional[1], positional[2])
	},
}

func parseType(s string) (polisher.Type, error) {
	switch s {
	case "consensus", "kC":
		return polisher.TypeConsensus, nil
	case "fragment", "kF":
		return polisher.TypeFragment, nil
	default:
		return 0, errors.Errorf(`run: -type must be "consensus" or "fragment", got %q`, s)
	}
}

func runPolish(targetPath, queryPath, overlapPath string) (err error) {
	shutdown := grail.Init()
	defer shutdown()

	cfgType, err := parseType(*kind)
	if err != nil {
		return err
	}
	cfg := polisher.Config{
		Type:                    cfgType,
		WindowLength:            *windowLength,
		OverlapPercentage:       *overlapPercent,
		QualityThreshold:        *qualThreshold,
		ErrorThreshold:          *errThreshold,
		Match:                   *match,
		Mismatch:                *mismatch,
		Gap:                     *gap,
		Trim:                    *trim,
		NumThreads:              *numThreads,
		DropUnpolishedSequences: *dropUnpolished,
	}

	ctx := vcontext.Background()
	p := polisher.New(cfg)
	if err := p.Initialize(ctx, targetPath, queryPath, overlapPath); err != nil {
		return errors.Wrap(err, "run: initialize")
	}
	log.Debug.Printf("run: target coverage %v", p.Stats())

	var bar *mpb.Bar
	var pbs *mpb.Progress
	if *verbose {
		pbs = mpb.New(mpb.WithWidth(40), mpb.WithOutput(os.Stderr))
		bar = pbs.AddBar(int64(p.WindowCount()),
			mpb.PrependDecorators(
				decor.Name("polishing windows: ", decor.WC{W: len("polishing windows: "), C: decor.DindentRight}),
				decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
			),
			mpb.AppendDecorators(
				decor.Name("ETA: ", decor.WC{W: len("ETA: ")}),
				decor.EwmaETA(decor.ET_STYLE_GO, 3),
				decor.OnComplete(decor.Name(""), ". done"),
			),
		)
	}
	var onWindowDone func()
	if bar != nil {
		onWindowDone = func() { bar.Increment() }
	}

	out, err := p.Polish(*dropUnpolished, onWindowDone)
	if err != nil {
		return errors.Wrap(err, "run: polish")
	}
	if pbs != nil {
		pbs.Wait()
	}

	f, err := file.Create(ctx, *outPath)
	if err != nil {
		return errors.Wrapf(err, "run: creating %s", *outPath)
	}
	defer file.CloseAndReport(ctx, f, &err)
	w := f.Writer(ctx)
	for _, rec := range out {
		if _, err := fmt.Fprintf(w, ">%s\n%s\n", rec.Name, rec.Data); err != nil {
			return errors.Wrapf(err, "run: writing %s", *outPath)
		}
	}
	log.Printf("run: wrote %d polished target(s) to %s", len(out), *outPath)
	return nil
}
