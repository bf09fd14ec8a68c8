// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package anonymize rewrites personally-identifying fields inside a parsed
// recorded-game container.
//
// Three passes run strictly in sequence, each owning the buffer it mutates
// for the duration of its pass:
//
//   - the player pass replaces each player's lobby name and profile id in
//     the decompressed header payload (and the name's duplicate in the
//     attributes sub-region);
//   - the chat pass rewrites or drops chat records in the operations
//     stream, per policy;
//   - the rating pass overwrites every player's rating in the post-game
//     leaderboard block.
//
// None of the edited regions has a full schema. Records are located by
// anchored byte signatures, declared as named constants with explicit match
// windows, and every cursor is recomputed against the post-edit buffer
// because record sizes change as names are rewritten.
package anonymize
