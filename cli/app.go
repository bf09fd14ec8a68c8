// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package cli defines the command-line surface of the aoe-rec-tools binary:
// flag parsing, file I/O, logger wiring, and exit codes. The codec and
// anonymization packages never touch any of these concerns.
package cli

import (
	"os"
	"time"

	"github.com/DJSchaffner/aoe-rec-tools/anonymize"
	"github.com/DJSchaffner/aoe-rec-tools/rec"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
)

var (
	input  = flag.StringP("input", "i", "", "Input rec file name (required).")
	output = flag.StringP("output", "o", "out.aoe2record", "Output file name.")

	keepPlayerChat = flag.Bool("keep-player-chat", false,
		"Keep chat typed by players, with names rewritten. Some character sets may not survive the rewrite.")
	keepSystemChat = flag.Bool("keep-system-chat", false,
		"Keep system-generated chat, with names rewritten.")

	verbose = flag.BoolP("verbose", "v", false, "Enable debug logging.")
)

// Main is the main entry point.
func Main() {
	flag.Parse()

	log := logrus.StandardLogger()
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	if err := run(log); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}

func run(log *logrus.Logger) error {
	if *input == "" {
		flag.Usage()
		return errors.New("missing required flag: --input")
	}

	started := time.Now()

	data, err := os.ReadFile(*input)
	if err != nil {
		return errors.Wrap(err, "reading input file")
	}

	c, err := rec.ParseContainer(data)
	if err != nil {
		return errors.Wrapf(err, "parsing %q", *input)
	}
	if meta, err := rec.ParseMeta(c.Meta); err == nil {
		log.Debugf("meta: multiplayer=%v owner=%d chapters=%d",
			meta.Multiplayer, meta.RecOwner, meta.NumberOfChapters)
	}

	opts := anonymize.Options{
		Chat: anonymize.ChatPolicy{
			KeepPlayer: *keepPlayerChat,
			KeepSystem: *keepSystemChat,
		},
		Logger: log,
	}
	if err := anonymize.Apply(c, opts); err != nil {
		return errors.Wrap(err, "anonymizing")
	}

	out, err := c.Bytes()
	if err != nil {
		return errors.Wrap(err, "serializing container")
	}
	if err := os.WriteFile(*output, out, 0644); err != nil {
		return errors.Wrap(err, "writing output file")
	}

	log.Infof("wrote %s", *output)
	log.Debugf("finished in %s", time.Since(started))
	return nil
}
