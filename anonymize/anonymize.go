// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package anonymize

import (
	"github.com/DJSchaffner/aoe-rec-tools/rec"
	"github.com/DJSchaffner/aoe-rec-tools/support/logging"

	"github.com/pkg/errors"
)

// ChatPolicy selects which chat record categories survive the chat pass.
// The zero value drops everything.
type ChatPolicy struct {
	// KeepPlayer retains chat typed by players (names rewritten).
	KeepPlayer bool

	// KeepSystem retains system-generated chat (names rewritten).
	KeepSystem bool
}

func (p ChatPolicy) dropAll() bool { return !p.KeepPlayer && !p.KeepSystem }

// Options configures an anonymization pass.
type Options struct {
	// Chat is the chat retention policy.
	Chat ChatPolicy

	// Logger receives informational and warning events. May be nil.
	Logger logging.L
}

// Apply runs the full anonymization pass on c: player names and profile ids
// in the header payload, chat records and leaderboard ratings in the
// operations stream.
//
// Passes run strictly in sequence; a structural failure in any pass aborts
// the remaining ones and leaves c unmodified except for passes that already
// completed. Apply never terminates the process; the caller decides how to
// react.
func Apply(c *rec.Container, opts Options) error {
	log := logging.Must(opts.Logger)

	count, err := PlayerCount(c.Header.Payload)
	if err != nil {
		return err
	}
	log.Debugf("container holds %d players", count)

	payload, err := AnonymizePlayers(c.Header.Payload, count, log)
	if err != nil {
		return err
	}
	c.Header.SetPayload(payload)

	ops, err := RewriteChat(c.Operations, opts.Chat, log)
	if err != nil {
		return err
	}
	if ops, err = PatchRatings(ops, count, log); err != nil {
		return errors.Wrap(err, "patching ratings")
	}
	c.Operations = ops
	return nil
}
